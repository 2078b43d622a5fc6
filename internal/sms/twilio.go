package sms

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioGateway is an alternative transport for deployments where the Celtiis
// API is not available.
type TwilioGateway struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioGateway(accountSID, authToken, fromNumber string) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{client: client, fromNumber: fromNumber}
}

func (g *TwilioGateway) Send(to, message string) (*Result, error) {
	message, err := prepare(to, message)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.fromNumber)
	params.SetBody(message)

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, fmt.Errorf("twilio send failed: %w", err)
	}

	result := &Result{Success: true}
	if resp.Sid != nil {
		result.MessageID = *resp.Sid
	}
	return result, nil
}
