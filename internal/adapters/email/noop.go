package email

import (
	"context"
	"log/slog"
	"time"
)

// NoopSender logs sends but does not deliver them. Used when no transport is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message but does not deliver it.
// PRE: msg is populated
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, msg Message) (SendResult, error) {
	slog.Info("noop_email_send", "to", msg.To, "subject", msg.Subject, "reference", msg.Reference)
	return SendResult{
		MessageID: "noop-" + msg.Reference,
		SentAt:    time.Now(),
	}, nil
}
