package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	emailAdapter "bookingrelay/internal/adapters/email"
	"bookingrelay/internal/domain/booking"
)

// ErrTransport wraps any failure reported by the mail transport.
var ErrTransport = errors.New("failed to send email")

// replyAddresser is implemented by forms that carry a visitor address.
type replyAddresser interface {
	ReplyAddress() string
}

// RelayDeps holds dependencies for Relay.
type RelayDeps struct {
	Sender     emailAdapter.Sender
	From       string
	To         string
	GenerateID func() string
}

// RelayResult describes one delivered notification.
type RelayResult struct {
	Reference string
	MessageID string
}

// ExecuteRelay validates form, composes its notification and hands it to the transport once.
// PRE: deps.Sender is non-nil
// POST: on a validation error no send is attempted; on a transport error the error wraps ErrTransport
func ExecuteRelay(ctx context.Context, form booking.Form, deps RelayDeps) (RelayResult, error) {
	if err := form.Validate(); err != nil {
		slog.Info("relay_rejected", "kind", form.Kind(), "reason", err.Error())
		return RelayResult{}, err
	}

	note := form.Compose(deps.From, deps.To)
	ref := deps.GenerateID()
	msg := emailAdapter.Message{
		From:      note.From,
		To:        []string{note.To},
		Subject:   note.Subject,
		Text:      note.Text,
		HTML:      emailAdapter.RenderHTML(note.Text),
		Reference: ref,
	}
	// A malformed visitor address must not turn into a transport failure.
	if ra, ok := form.(replyAddresser); ok {
		if addr, err := mail.ParseAddress(ra.ReplyAddress()); err == nil {
			msg.ReplyTo = addr.Address
		}
	}

	res, err := deps.Sender.Send(ctx, msg)
	if err != nil {
		slog.Error("booking_send_failed", "kind", form.Kind(), "reference", ref, "error", err)
		return RelayResult{Reference: ref}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	slog.Info("booking_relayed", "kind", form.Kind(), "reference", ref, "message_id", res.MessageID)
	return RelayResult{Reference: ref, MessageID: res.MessageID}, nil
}
