package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	_ "modernc.org/sqlite"

	emailPkg "bookingrelay/internal/adapters/email"
	web "bookingrelay/internal/adapters/http"
	"bookingrelay/internal/adapters/http/perf"
	"bookingrelay/internal/adapters/storage"
	blackoutStore "bookingrelay/internal/adapters/storage/blackout"
	"bookingrelay/internal/application/orchestrators"
	"bookingrelay/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal in production; the platform sets the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Initialize database with WAL mode, foreign keys, and busy timeout
	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)
	defer timedDB.Close()
	timedDB.SetMaxOpenConns(4)
	timedDB.SetMaxIdleConns(4)

	if err := timedDB.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(timedDB.RawDB(), cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	blackouts := blackoutStore.NewSQLiteStore(timedDB)

	seeded, err := orchestrators.ExecuteSeedBlackouts(context.Background(), cfg.BlackoutSeeds(), orchestrators.BlackoutDeps{
		Store:      blackouts,
		GenerateID: func() string { return uuid.New().String() },
	})
	if err != nil {
		log.Fatalf("failed to seed blackout dates: %v", err)
	}
	if seeded > 0 {
		slog.Info("blackouts_seeded", "count", seeded)
	}

	sender := emailPkg.NewTimedSender(newSender(cfg), cfg.MailTransport, collector)

	handler, err := web.NewMux(cfg, web.Deps{
		Sender:    sender,
		Blackouts: blackouts,
		Collector: collector,
		Pinger:    timedDB,
		Version:   version,
	})
	if err != nil {
		log.Fatalf("failed to build HTTP handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Covers one mail relay round trip.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
			"transport", cfg.MailTransport,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
}

// newSender builds the transport named by MAIL_TRANSPORT.
// PRE: cfg.Validate() returned nil
func newSender(cfg config.Config) emailPkg.Sender {
	switch cfg.MailTransport {
	case config.TransportResend:
		return emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.FromEmail)
	case config.TransportNoop:
		if cfg.IsProduction() {
			slog.Warn("email_delivery_disabled", "detail", "MAIL_TRANSPORT=noop in production")
		}
		return emailPkg.NewNoopSender()
	default:
		return emailPkg.NewSMTPSender(emailPkg.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
		}, cfg.FromEmail)
	}
}
