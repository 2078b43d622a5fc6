package sms

import "log/slog"

// LogGateway writes messages to the log instead of sending them. Used in
// development so OTP codes stay readable without a provider account.
type LogGateway struct{}

func (g *LogGateway) Send(to, message string) (*Result, error) {
	message, err := prepare(to, message)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, err
	}
	slog.Info("sms dispatched (log gateway)", "to", to, "message", message)
	return &Result{Success: true, MessageID: "log"}, nil
}
