package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// DefaultSMTPPort is the submission port used when none is configured.
const DefaultSMTPPort = 587

// SMTPConfig holds relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPSender delivers mail through an SMTP relay. It dials once per message so
// concurrent sends share no connection state.
type SMTPSender struct {
	cfg  SMTPConfig
	from string
}

// NewSMTPSender creates a sender for the given relay and default from address.
// PRE: cfg.Host is non-empty
// POST: Returns a sender; no connection is opened until Send
func NewSMTPSender(cfg SMTPConfig, from string) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPSender{cfg: cfg, from: from}
}

// Send delivers msg with one dial-and-send attempt.
// PRE: msg has at least one recipient
// POST: Message accepted by the relay, or an error describing why not
func (s *SMTPSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	m, messageID, err := s.buildMsg(msg)
	if err != nil {
		return SendResult{}, err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return SendResult{}, fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		slog.Error("smtp_send_failed", "error", err, "host", s.cfg.Host, "to", msg.To, "reference", msg.Reference)
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	slog.Info("smtp_sent", "message_id", messageID, "to", msg.To, "reference", msg.Reference)
	return SendResult{MessageID: messageID, SentAt: time.Now()}, nil
}

// clientOptions translates the config. Port 587 without implicit TLS matches a
// STARTTLS submission relay; auth is only attempted when a username is set.
func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// buildMsg assembles the MIME message: plain text body with an optional HTML alternative.
func (s *SMTPSender) buildMsg(msg Message) (*mail.Msg, string, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, "", fmt.Errorf("invalid from address %q: %w", from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, "", fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, "", fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()

	ref := msg.Reference
	if ref == "" {
		ref = uuid.New().String()
	}
	messageID := ref + "@" + s.cfg.Host
	m.SetMessageIDWithValue(messageID)

	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, messageID, nil
}
