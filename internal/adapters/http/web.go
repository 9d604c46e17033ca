package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"bookingrelay/internal/adapters/email"
	"bookingrelay/internal/adapters/http/middleware"
	"bookingrelay/internal/adapters/http/perf"
	"bookingrelay/internal/config"
	blackoutDomain "bookingrelay/internal/domain/blackout"
)

// BlackoutLister is the read side of the blackout store used by the availability feed.
type BlackoutLister interface {
	List(ctx context.Context) ([]blackoutDomain.Blackout, error)
}

// Deps holds the runtime collaborators of the HTTP layer.
type Deps struct {
	Sender     email.Sender
	Blackouts  BlackoutLister
	Collector  *perf.Collector
	Pinger     interface{ Ping() error } // optional, reported by /healthz
	Version    string
	Now        func() time.Time
	GenerateID func() string
}

// ErrCSRFKey is returned when CSRF_KEY is malformed or missing in production.
var ErrCSRFKey = errors.New("CSRF_KEY must be 64 hex characters (32 bytes)")

// loadCSRFKey decodes CSRF_KEY. In production the key must be set; in development a random
// key is generated per startup, so tokens on open pages stop working after a restart.
func loadCSRFKey(cfg config.Config) ([]byte, error) {
	if cfg.CSRFKey != "" {
		key, err := hex.DecodeString(cfg.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, ErrCSRFKey
		}
		return key, nil
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("%w: required in production", ErrCSRFKey)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "detail", "set CSRF_KEY so form tokens survive restarts")
	return key, nil
}

// trustedOrigins lets the configured site post the fallback form cross-origin.
func trustedOrigins(allowed string) []string {
	if allowed == "" || allowed == "*" {
		return nil
	}
	u, err := url.Parse(allowed)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

// NewMux wires HTTP handlers for the booking relay.
// PRE: deps.Sender and deps.Blackouts are non-nil
// POST: returns a handler with timing, rate limiting, CORS, CSRF and security headers applied
func NewMux(cfg config.Config, deps Deps) (http.Handler, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = generateID
	}
	csrfKey, err := loadCSRFKey(cfg)
	if err != nil {
		return nil, err
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, deps: deps, pages: pages}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	a.registerRoutes(mux)

	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	limiter := middleware.NewRateLimiter(perMinute, perMinute/6+1)

	// Request order: Timing -> CORS -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	// CORS wraps RateLimit: a 429 carries the CORS headers.
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, cfg.IsProduction(), trustedOrigins(cfg.AllowedOrigin)),
		middleware.RateLimit(limiter),
		middleware.CORS(cfg.AllowedOrigin),
		middleware.Timing(deps.Collector, cfg.SlowRequestThreshold()),
	), nil
}

func (a *app) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", a.handleIndex)
	mux.HandleFunc("/api/availability", a.handleAvailability)
	mux.HandleFunc("/api/book", a.relay(decodeBooking))
	mux.HandleFunc("/api/contact", a.relay(decodeContact))
	mux.HandleFunc("/healthz", a.handleHealth)
}
