// Package checker drives a real browser through the booking form of a deployed
// site and reports whether the submit button reached the success label.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"bookingrelay/internal/widget"
)

// Default timeouts and artifact paths.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
	DefaultLabelTimeout      = 10 * time.Second
	DefaultTypeDelay         = 50 * time.Millisecond
	DefaultPollInterval      = 100 * time.Millisecond

	FailureScreenshot = "test-booking-failure.png"
	ErrorScreenshot   = "test-booking-error.png"
)

// Form selectors. The landing page and the widget render these IDs.
const (
	selName    = "#name"
	selNumber  = "#number"
	selButton  = "#button"
	selSection = "book"
)

// ErrAutomation wraps every browser-side failure: navigation, missing selectors, timeouts.
var ErrAutomation = errors.New("browser automation failed")

// Page is the subset of a browser tab the checker drives.
type Page interface {
	Goto(url string, timeout time.Duration) error
	WaitVisible(selector string, timeout time.Duration) error
	ScrollIntoView(id string) error
	Type(selector, text string, delay time.Duration) error
	Click(selector string) error
	Text(selector string) (string, error)
	Screenshot(path string) error
	Close() error
}

// Browser opens pages. Close releases the browser and everything it owns.
type Browser interface {
	NewPage(width, height int) (Page, error)
	Close() error
}

// Config controls one run. Zero durations take the defaults above.
type Config struct {
	URL               string
	Identity          Identity
	Labels            widget.Labels
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	LabelTimeout      time.Duration
	TypeDelay         time.Duration
	PollInterval      time.Duration
	// ArtifactDir is prepended to the screenshot file names; empty means the working directory.
	ArtifactDir string
}

func (c *Config) defaults() {
	if c.Labels == (widget.Labels{}) {
		c.Labels = widget.DefaultLabels()
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = DefaultSelectorTimeout
	}
	if c.LabelTimeout <= 0 {
		c.LabelTimeout = DefaultLabelTimeout
	}
	if c.TypeDelay < 0 {
		c.TypeDelay = 0
	} else if c.TypeDelay == 0 {
		c.TypeDelay = DefaultTypeDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Result describes the outcome of a run.
type Result struct {
	Passed bool
	// Label is the last button text observed.
	Label string
	// Screenshot is the artifact written on failure, empty on pass or when capture failed.
	Screenshot string
}

// Run submits the form once and classifies the run.
// The button must leave the idle label within LabelTimeout of the click. The in-progress
// label counts as the widget reacting; the run passes once the success label shows before
// the same deadline. A request still in flight at the deadline fails the run.
// PRE: cfg.URL is non-empty
// POST: the page and browser are closed on every path; on failure a full-page screenshot is attempted
func Run(ctx context.Context, b Browser, cfg Config) (res Result, err error) {
	cfg.defaults()
	defer func() {
		if cerr := b.Close(); cerr != nil {
			slog.Warn("checker_browser_close_failed", "error", cerr)
		}
	}()

	page, err := b.NewPage(1280, 720)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open page: %w", ErrAutomation, err)
	}
	defer page.Close()

	res, err = drive(ctx, page, cfg)
	if err != nil {
		slog.Error("checker_automation_failed", "url", cfg.URL, "error", err)
		res.Screenshot = capture(page, cfg.ArtifactDir, ErrorScreenshot)
		return res, err
	}
	if !res.Passed {
		slog.Error("checker_failed", "url", cfg.URL, "label", res.Label)
		res.Screenshot = capture(page, cfg.ArtifactDir, FailureScreenshot)
		return res, nil
	}
	slog.Info("checker_passed", "url", cfg.URL, "label", res.Label, "name", cfg.Identity.Name)
	return res, nil
}

func drive(ctx context.Context, page Page, cfg Config) (Result, error) {
	slog.Info("checker_navigating", "url", cfg.URL, "name", cfg.Identity.Name, "number", cfg.Identity.Number)
	if err := page.Goto(cfg.URL, cfg.NavigationTimeout); err != nil {
		return Result{}, fmt.Errorf("%w: navigate to %s: %w", ErrAutomation, cfg.URL, err)
	}
	for _, sel := range []string{selName, selNumber, selButton} {
		if err := page.WaitVisible(sel, cfg.SelectorTimeout); err != nil {
			return Result{}, fmt.Errorf("%w: wait for %s: %w", ErrAutomation, sel, err)
		}
	}
	if err := page.ScrollIntoView(selSection); err != nil {
		return Result{}, fmt.Errorf("%w: scroll to #%s: %w", ErrAutomation, selSection, err)
	}
	if err := page.Type(selName, cfg.Identity.Name, cfg.TypeDelay); err != nil {
		return Result{}, fmt.Errorf("%w: type name: %w", ErrAutomation, err)
	}
	if err := page.Type(selNumber, cfg.Identity.Number, cfg.TypeDelay); err != nil {
		return Result{}, fmt.Errorf("%w: type number: %w", ErrAutomation, err)
	}
	if err := page.Click(selButton); err != nil {
		return Result{}, fmt.Errorf("%w: click submit: %w", ErrAutomation, err)
	}
	return awaitOutcome(ctx, page, cfg)
}

// awaitOutcome polls the button label until it settles or the label deadline passes.
func awaitOutcome(ctx context.Context, page Page, cfg Config) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.LabelTimeout)
	defer cancel()
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	var (
		label   string
		reacted bool
	)
	for {
		text, err := page.Text(selButton)
		if err != nil {
			return Result{Label: label}, fmt.Errorf("%w: read button label: %w", ErrAutomation, err)
		}
		label = strings.TrimSpace(text)

		state, known := cfg.Labels.Parse(label)
		switch {
		case !known:
			return Result{Label: label}, nil
		case state == widget.Succeeded:
			return Result{Passed: true, Label: label}, nil
		case state == widget.Failed:
			return Result{Label: label}, nil
		case state == widget.Submitting && !reacted:
			reacted = true
			slog.Info("checker_submitting", "label", label)
		}

		select {
		case <-ctx.Done():
			if !reacted {
				return Result{Label: label}, fmt.Errorf("%w: button never left %q", ErrAutomation, cfg.Labels.Idle)
			}
			slog.Warn("checker_request_unresolved", "label", label, "waited", cfg.LabelTimeout)
			return Result{Label: label}, nil
		case <-ticker.C:
		}
	}
}

// capture writes a full-page screenshot and returns its path, or "" when that fails too.
func capture(page Page, dir, name string) string {
	path := filepath.Join(dir, name)
	if err := page.Screenshot(path); err != nil {
		slog.Warn("checker_screenshot_failed", "path", path, "error", err)
		return ""
	}
	slog.Info("checker_screenshot_saved", "path", path)
	return path
}
