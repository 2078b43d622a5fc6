// Package sms dispatches text messages to patients through a pluggable gateway.
package sms

import (
	"errors"
	"log/slog"

	"github.com/lokita-bj/lokita-backend/internal/config"
	"github.com/lokita-bj/lokita-backend/internal/phone"
)

// maxLength is the single-SMS limit; longer messages are truncated to 157+"...".
const maxLength = 160

var ErrInvalidRecipient = errors.New("invalid Benin recipient number")

type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Gateway sends a single SMS. Implementations are best-effort: callers log
// failures and never roll back domain state because of them.
type Gateway interface {
	Send(to, message string) (*Result, error)
}

// NewGateway selects the gateway implementation from SMS_PROVIDER.
func NewGateway(cfg *config.Config) Gateway {
	switch cfg.SMSProvider {
	case "celtiis":
		return NewCeltiisGateway(cfg.CeltiisAPIURL, cfg.CeltiisAPIKey, cfg.CeltiisSenderName)
	case "twilio":
		return NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	default:
		return &LogGateway{}
	}
}

// prepare validates the recipient and enforces the single-SMS length limit.
// The limit counts characters, not bytes: the French copy is full of accents.
func prepare(to, message string) (string, error) {
	if !phone.IsValid(to) {
		return "", ErrInvalidRecipient
	}
	if runes := []rune(message); len(runes) > maxLength {
		slog.Warn("sms message truncated", "to", phone.Mask(to), "length", len(runes))
		message = string(runes[:maxLength-3]) + "..."
	}
	return message, nil
}
