package email

import (
	"context"
	"log/slog"
	"time"

	"bookingrelay/internal/adapters/http/perf"
)

// TimedSender decorates a Sender with duration logging and perf collection.
type TimedSender struct {
	next      Sender
	name      string
	collector *perf.Collector
}

// NewTimedSender wraps next. name identifies the transport in perf entries ("smtp", "resend").
// PRE: next is non-nil; collector may be nil
// POST: Returns a Sender that delegates to next
func NewTimedSender(next Sender, name string, collector *perf.Collector) *TimedSender {
	return &TimedSender{next: next, name: name, collector: collector}
}

// Send delegates to the wrapped sender and records how long the attempt took.
func (t *TimedSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	start := time.Now()
	res, err := t.next.Send(ctx, msg)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	status := 0
	if err != nil {
		status = 1
	}
	slog.Debug("email_send_timed", "transport", t.name, "duration_ms", durationMs, "failed", err != nil)
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindSend,
			Path:       "email." + t.name,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	return res, err
}
