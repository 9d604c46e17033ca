package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bookingrelay/internal/domain/booking"
)

// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// HTTPSubmitter posts booking requests as JSON. Under js/wasm net/http is backed by the
// browser's fetch, so the same code runs in the page and in tests.
type HTTPSubmitter struct {
	Endpoint string
	// Client defaults to http.DefaultClient, which has no timeout of its own.
	Client *http.Client
}

// Submit posts req to the endpoint once.
// PRE: s.Endpoint is an absolute or page-relative URL
// POST: returns nil only for a 2xx response
func (s HTTPSubmitter) Submit(ctx context.Context, req booking.Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode booking: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post booking: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
