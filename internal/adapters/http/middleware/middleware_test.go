package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestRateLimiter_BurstThenBlock verifies a client is blocked after its burst and others are not.
func TestRateLimiter_BurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	frozen := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return frozen }

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected inside burst", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("4th request allowed; want blocked")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other client blocked")
	}

	frozen = frozen.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("token not refilled after one second at 60/min")
	}
}

// TestRateLimiter_Sweep verifies idle visitors are forgotten.
func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("10.0.0.1")

	now = now.Add(visitorTTL + time.Second)
	rl.sweep()
	rl.mu.Lock()
	n := len(rl.visitors)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("visitors = %d after sweep, want 0", n)
	}
}

// TestRateLimit_OnlyPosts verifies reads pass and throttled posts get a JSON 429.
func TestRateLimit_OnlyPosts(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := RateLimit(rl)(okHandler)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/book", strings.NewReader(`{}`))
		req.RemoteAddr = "192.0.2.7:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}
	if rr := post(); rr.Code != http.StatusOK {
		t.Fatalf("first post = %d", rr.Code)
	}
	rr := post()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second post = %d, want 429", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "too many requests") {
		t.Errorf("body = %q", rr.Body.String())
	}

	get := httptest.NewRequest("GET", "/", nil)
	get.RemoteAddr = "192.0.2.7:5555"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, get)
	if rr.Code != http.StatusOK {
		t.Errorf("GET after throttle = %d, want 200", rr.Code)
	}
}

// TestCORS_APIOnly verifies the three headers on /api/ and none elsewhere.
func TestCORS_APIOnly(t *testing.T) {
	handler := CORS("https://cabin.example")(okHandler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/api/book", nil))
	want := map[string]string{
		"Access-Control-Allow-Origin":  "https://cabin.example",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for k, v := range want {
		if got := rr.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS header set on landing page")
	}
}

// TestSecurityHeaders verifies the CSP admits wasm and the picker CDN.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	csp := rr.Header().Get("Content-Security-Policy")
	for _, want := range []string{"'wasm-unsafe-eval'", "https://cdn.jsdelivr.net", "connect-src 'self'"} {
		if !strings.Contains(csp, want) {
			t.Errorf("CSP missing %s: %s", want, csp)
		}
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("X-Frame-Options not set")
	}
}

// TestCSRF_Exemptions verifies which requests reach the token check.
func TestCSRF_Exemptions(t *testing.T) {
	handler := CSRF(bytes.Repeat([]byte("k"), 32), false, nil)(okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json post bypasses", "POST", "application/json", http.StatusOK},
		{"put without body type reaches handler", "PUT", "", http.StatusOK},
		{"form post without token", "POST", "application/x-www-form-urlencoded", http.StatusForbidden},
		{"get mints token", "GET", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/book", strings.NewReader("name=Jane"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
