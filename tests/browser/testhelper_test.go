package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"bookingrelay/internal/adapters/email"
	web "bookingrelay/internal/adapters/http"
	"bookingrelay/internal/adapters/http/perf"
	"bookingrelay/internal/adapters/storage"
	blackoutStore "bookingrelay/internal/adapters/storage/blackout"
	"bookingrelay/internal/config"
)

// recordingSender captures relayed messages. When hold is non-nil every Send
// blocks until it is closed, which simulates a relay that never answers.
type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
	hold chan struct{}
	err  error
}

// Send records msg, then waits on hold if set.
func (s *recordingSender) Send(ctx context.Context, msg email.Message) (email.SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	hold, err := s.hold, s.err
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}
	if err != nil {
		return email.SendResult{}, err
	}
	return email.SendResult{MessageID: msg.Reference, SentAt: time.Now()}, nil
}

func (s *recordingSender) messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.sent...)
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Sender  *recordingSender
	Root    string
}

// requireWidget skips the test when the wasm widget has not been built (make wasm).
func requireWidget(t *testing.T, root string) {
	t.Helper()
	for _, f := range []string{"widget.wasm", "wasm_exec.js"} {
		if _, err := os.Stat(filepath.Join(root, "static", f)); err != nil {
			t.Skipf("static/%s not built; run make wasm", f)
		}
	}
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T, sender *recordingSender) *testApp {
	t.Helper()

	projectRoot := findProjectRoot(t)
	requireWidget(t, projectRoot)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := sql.Open("sqlite", storage.DSN(dbPath))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	cfg := config.Config{
		Env:                "test",
		StaticDir:          filepath.Join(projectRoot, "static"),
		AllowedOrigin:      baseURL,
		CSRFKey:            strings.Repeat("0f", 32),
		RateLimitPerMinute: 600,
		MailTransport:      config.TransportNoop,
		FromEmail:          "relay@cabin.example",
		ToEmail:            "owner@cabin.example",
		HorizonMonths:      3,
		MinDays:            4,
	}
	mux, err := web.NewMux(cfg, web.Deps{
		Sender:    sender,
		Blackouts: blackoutStore.NewSQLiteStore(db),
		Collector: perf.NewCollector(1000),
		Pinger:    db,
		Version:   "browser-test",
	})
	if err != nil {
		t.Fatalf("failed to build mux: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Sender:  sender,
		Root:    projectRoot,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab) on the landing page.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	if _, err := page.Goto(a.BaseURL + "/"); err != nil {
		t.Fatalf("failed to navigate to landing page: %v", err)
	}
	return page
}

// waitForLabel waits until #button shows want.
func waitForLabel(t *testing.T, page playwright.Page, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var got string
	for time.Now().Before(deadline) {
		got, _ = page.Locator("#button").TextContent()
		if strings.TrimSpace(got) == want {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("button label = %q, want %q within %s", got, want, timeout)
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
