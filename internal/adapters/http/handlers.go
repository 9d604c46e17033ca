package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"bookingrelay/internal/adapters/http/middleware"
	"bookingrelay/internal/adapters/http/perf"
	"bookingrelay/internal/application/orchestrators"
	"bookingrelay/internal/application/projections"
	"bookingrelay/internal/config"
	"bookingrelay/internal/domain/availability"
	"bookingrelay/internal/domain/booking"
	"bookingrelay/internal/widget"
)

// maxBodyBytes caps relay request bodies.
const maxBodyBytes = 64 << 10

// Client-facing messages. Internal details are only logged.
const (
	msgUsePost     = "Use POST"
	msgInvalidBody = "invalid request body"
	msgSendFailed  = "failed to send email"
	msgUnavailable = "availability is temporarily unavailable"
	msgRequestSent = "Thanks! Your request has been sent."
)

const (
	healthWindow    = 15 * time.Minute
	healthTopN      = 5
	availabilityTTL = "public, max-age=300"
)

var errInvalidBody = errors.New(msgInvalidBody)

//go:embed templates/*.html
var templateFS embed.FS

// app carries the immutable configuration and collaborators shared by every handler.
type app struct {
	cfg   config.Config
	deps  Deps
	pages *template.Template
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

func parseTemplates() (*template.Template, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tpl, nil
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Landing page ---

// indexPage is the data rendered into index.html.
type indexPage struct {
	CSRFField template.HTML
	Labels    widget.Labels
	Picker    availability.PickerConfig
	Form      booking.Request
	Notice    string
	Failed    bool
}

func (a *app) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	a.renderIndex(w, r, http.StatusOK, indexPage{})
}

// renderIndex renders the landing page. The picker bounds are embedded so the page
// still shows them when the widget has not loaded.
func (a *app) renderIndex(w http.ResponseWriter, r *http.Request, status int, page indexPage) {
	page.CSRFField = csrf.TemplateField(r)
	page.Labels = widget.DefaultLabels()
	if c, err := a.constraint(r.Context()); err == nil {
		page.Picker = c.PickerConfig()
	} else {
		slog.Error("availability_failed", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.pages.ExecuteTemplate(w, "index.html", page); err != nil {
		slog.Error("template_render_failed", "template", "index.html", "error", err)
	}
}

// --- Availability ---

func (a *app) constraint(ctx context.Context) (availability.Constraint, error) {
	return projections.QueryGetDateConstraint(ctx,
		projections.GetDateConstraintQuery{Now: a.deps.Now()},
		projections.GetDateConstraintDeps{BlackoutStore: a.deps.Blackouts, Policy: a.cfg.Policy()},
	)
}

// handleAvailability serves the picker configuration for today.
func (a *app) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "Use GET")
		return
	}
	c, err := a.constraint(r.Context())
	if err != nil {
		slog.Error("availability_failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}
	w.Header().Set("Cache-Control", availabilityTTL)
	writeJSON(w, http.StatusOK, c.PickerConfig())
}

// --- Relay endpoints ---

// formDecoder turns a request body into a relay form.
type formDecoder func(r *http.Request) (booking.Form, error)

// relay serves one relay endpoint: OPTIONS is an empty 200, anything but POST is 405,
// and a POST is decoded, validated and sent exactly once.
// Form-encoded posts come from the no-JS fallback and get the landing page back.
func (a *app) relay(decode formDecoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			writeError(w, http.StatusMethodNotAllowed, msgUsePost)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		html := middleware.IsFormPost(r)

		form, err := decode(r)
		if err != nil {
			slog.Info("relay_bad_body", "path", r.URL.Path, "error", err)
			a.respond(w, r, html, http.StatusBadRequest, msgInvalidBody, form)
			return
		}

		// The send outlives a client that navigates away mid-request.
		ctx := context.WithoutCancel(r.Context())
		_, err = orchestrators.ExecuteRelay(ctx, form, orchestrators.RelayDeps{
			Sender:     a.deps.Sender,
			From:       a.cfg.FromEmail,
			To:         a.cfg.ToEmail,
			GenerateID: a.deps.GenerateID,
		})
		switch {
		case errors.Is(err, booking.ErrValidation):
			a.respond(w, r, html, http.StatusBadRequest, err.Error(), form)
		case err != nil:
			a.respond(w, r, html, http.StatusInternalServerError, msgSendFailed, form)
		default:
			a.respond(w, r, html, http.StatusOK, "", nil)
		}
	}
}

// respond writes the JSON contract, or the landing page with a notice for fallback posts.
// An empty msg means success.
func (a *app) respond(w http.ResponseWriter, r *http.Request, html bool, status int, msg string, form booking.Form) {
	if !html {
		if msg == "" {
			writeJSON(w, status, map[string]bool{"ok": true})
			return
		}
		writeError(w, status, msg)
		return
	}
	page := indexPage{Notice: msg, Failed: msg != ""}
	if msg == "" {
		page.Notice = msgRequestSent
	}
	if req, ok := form.(booking.Request); ok && page.Failed {
		page.Form = req
	}
	a.renderIndex(w, r, status, page)
}

func decodeBooking(r *http.Request) (booking.Form, error) {
	if middleware.IsFormPost(r) {
		if err := parseForm(r); err != nil {
			return nil, err
		}
		return booking.Request{
			Name:    r.PostForm.Get("name"),
			Number:  r.PostForm.Get("number"),
			Email:   r.PostForm.Get("email"),
			Dates:   r.PostForm.Get("dates"),
			Message: r.PostForm.Get("message"),
		}, nil
	}
	var req booking.Request
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeContact(r *http.Request) (booking.Form, error) {
	if middleware.IsFormPost(r) {
		if err := parseForm(r); err != nil {
			return nil, err
		}
		return booking.ContactRequest{
			Subject: r.PostForm.Get("subject"),
			Message: r.PostForm.Get("message"),
		}, nil
	}
	var req booking.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}

// decodeJSON accepts only application/json bodies. Unknown fields are ignored so
// existing clients that send extra keys keep working.
func decodeJSON(r *http.Request, v any) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return fmt.Errorf("%w: content type %q", errInvalidBody, r.Header.Get("Content-Type"))
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

// --- Health ---

// healthResponse reports liveness plus recent latency from the perf collector.
type healthResponse struct {
	Status         string       `json:"status"`
	Version        string       `json:"version"`
	Database       string       `json:"database"`
	Transport      string       `json:"transport"`
	Requests       int64        `json:"requests_total"`
	RequestP50Ms   float64      `json:"request_p50_ms"`
	RequestP95Ms   float64      `json:"request_p95_ms"`
	RequestP99Ms   float64      `json:"request_p99_ms"`
	SlowestPaths   []pathTiming `json:"slowest_paths"`
	SlowestQueries []pathTiming `json:"slowest_queries"`
	Sends          int          `json:"sends_recent"`
	FailedSends    int          `json:"failed_sends_recent"`
}

// pathTiming is one row of a slowest-N list in the health report.
type pathTiming struct {
	Path  string  `json:"path"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
	Count int     `json:"count"`
}

func toPathTimings(stats []perf.PathStat) []pathTiming {
	out := make([]pathTiming, 0, len(stats))
	for _, s := range stats {
		out = append(out, pathTiming{Path: s.Path, AvgMs: s.AvgMs, MaxMs: s.MaxMs, Count: s.Count})
	}
	return out
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Version:   a.deps.Version,
		Database:  "ok",
		Transport: a.cfg.MailTransport,
	}
	if a.deps.Pinger != nil {
		if err := a.deps.Pinger.Ping(); err != nil {
			slog.Error("health_db_ping_failed", "error", err)
			resp.Status, resp.Database = "degraded", "unreachable"
		}
	}
	if c := a.deps.Collector; c != nil {
		snap := c.Snapshot(time.Now().Add(-healthWindow), healthTopN)
		resp.Requests = snap.TotalRequests
		resp.RequestP50Ms = snap.RequestP50Ms
		resp.RequestP95Ms = snap.RequestP95Ms
		resp.RequestP99Ms = snap.RequestP99Ms
		resp.SlowestPaths = toPathTimings(snap.SlowestPaths)
		resp.SlowestQueries = toPathTimings(snap.SlowestQueries)
		for _, s := range snap.Sends {
			resp.Sends += s.Count
		}
		resp.FailedSends = snap.FailedSends
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
