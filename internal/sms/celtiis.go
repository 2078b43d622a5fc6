package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CeltiisGateway speaks the Celtiis SMS REST API (Benin network operator).
type CeltiisGateway struct {
	baseURL    string
	apiKey     string
	senderName string
	client     *http.Client
}

func NewCeltiisGateway(baseURL, apiKey, senderName string) *CeltiisGateway {
	return &CeltiisGateway{
		baseURL:    baseURL,
		apiKey:     apiKey,
		senderName: senderName,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type celtiisRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type celtiisResponse struct {
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

func (g *CeltiisGateway) Send(to, message string) (*Result, error) {
	message, err := prepare(to, message)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}

	body, err := json.Marshal(celtiisRequest{
		Sender:    g.senderName,
		Recipient: to,
		Message:   message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/sms/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return &Result{Success: false, Error: "celtiis unreachable"}, fmt.Errorf("celtiis request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed celtiisResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("failed to decode celtiis response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = resp.Status
		}
		return &Result{Success: false, Error: msg}, fmt.Errorf("celtiis rejected message: %s", msg)
	}

	return &Result{Success: true, MessageID: parsed.MessageID}, nil
}
