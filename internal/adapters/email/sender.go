package email

import (
	"context"
	"time"
)

// Message contains the data needed to deliver one notification.
type Message struct {
	From    string   // Sender address; empty means the sender's default
	To      []string // Recipient addresses
	Subject string
	Text    string // Plain-text body
	HTML    string // Optional HTML alternative
	ReplyTo string
	// Reference identifies the submission in logs and in the Message-ID header.
	Reference string
}

// SendResult contains the response from the transport.
type SendResult struct {
	MessageID string    // Transport's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers a message with a single attempt. Implementations must not retry.
type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}
