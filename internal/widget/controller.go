package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bookingrelay/internal/domain/booking"
)

// DefaultResetDelay is how long a terminal label stays visible before the button resets.
const DefaultResetDelay = 3 * time.Second

// Renderer projects a state onto the submit control.
type Renderer interface {
	Render(label string, disabled bool)
}

// Submitter delivers one booking request to the endpoint.
// A nil error means the endpoint answered with a success status.
type Submitter interface {
	Submit(ctx context.Context, req booking.Request) error
}

// Controller runs the Idle -> Submitting -> Succeeded|Failed -> Idle machine for one button.
// INVARIANT: at most one submission is in flight; the control is disabled whenever state != Idle.
type Controller struct {
	mu        sync.Mutex
	state     State
	labels    Labels
	renderer  Renderer
	submitter Submitter
	delay     time.Duration
	afterFunc func(time.Duration, func())
}

// Option customises a Controller.
type Option func(*Controller)

// WithLabels overrides the default button text.
func WithLabels(l Labels) Option {
	return func(c *Controller) { c.labels = l }
}

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithAfterFunc replaces the timer used for the reset delay. Tests use it to fire resets by hand.
func WithAfterFunc(f func(time.Duration, func())) Option {
	return func(c *Controller) { c.afterFunc = f }
}

// NewController creates a controller in Idle and renders the initial label.
// PRE: r and s are non-nil
// POST: r has received the Idle projection
func NewController(r Renderer, s Submitter, opts ...Option) *Controller {
	c := &Controller{
		state:     Idle,
		labels:    DefaultLabels(),
		renderer:  r,
		submitter: s,
		delay:     DefaultResetDelay,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.renderer.Render(c.labels.For(Idle), false)
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Click starts a submission if the control is Idle. It returns false, and does nothing,
// when a submission is already in progress or its outcome is still on display.
// The request is dispatched on its own goroutine; Click never blocks on the network.
func (c *Controller) Click(ctx context.Context, req booking.Request) bool {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		slog.Debug("booking_click_ignored", "state", c.state.String())
		return false
	}
	c.transitionLocked(Submitting)
	c.mu.Unlock()

	go c.submit(ctx, req)
	return true
}

func (c *Controller) submit(ctx context.Context, req booking.Request) {
	next := Succeeded
	if err := c.submitter.Submit(ctx, req); err != nil {
		slog.Warn("booking_submit_failed", "error", err)
		next = Failed
	}

	c.mu.Lock()
	c.transitionLocked(next)
	c.mu.Unlock()

	c.afterFunc(c.delay, c.reset)
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Terminal() {
		return
	}
	c.transitionLocked(Idle)
}

// transitionLocked must be called with c.mu held so renders are observed in transition order.
func (c *Controller) transitionLocked(next State) {
	c.state = next
	c.renderer.Render(c.labels.For(next), next.Disabled())
}
