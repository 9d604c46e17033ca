package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"bookingrelay/internal/domain/availability"
)

// Mail transports selectable with MAIL_TRANSPORT.
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
	TransportNoop   = "noop"
)

// Config errors.
var (
	ErrUnknownTransport = errors.New("unknown mail transport")
	ErrMissingSetting   = errors.New("missing required setting")
	ErrWildcardOrigin   = errors.New("ALLOWED_ORIGIN must name a single origin in production")
)

// Config holds every setting the server, the operator CLI and the widget build read.
// It is loaded once at startup and passed by value; nothing reads the environment afterwards.
type Config struct {
	Addr      string `mapstructure:"ADDR"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	DBPath    string `mapstructure:"DB_PATH"`
	StaticDir string `mapstructure:"STATIC_DIR"`

	AllowedOrigin      string `mapstructure:"ALLOWED_ORIGIN"`
	CSRFKey            string `mapstructure:"CSRF_KEY"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	SlowRequestMs      int    `mapstructure:"SLOW_REQUEST_MS"`
	SlowQueryMs        int    `mapstructure:"SLOW_QUERY_MS"`

	// Mail relay.
	MailTransport string `mapstructure:"MAIL_TRANSPORT"`
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUser      string `mapstructure:"SMTP_USER"`
	SMTPPass      string `mapstructure:"SMTP_PASS"`
	FromEmail     string `mapstructure:"FROM_EMAIL"`
	ToEmail       string `mapstructure:"TO_EMAIL"`
	ResendAPIKey  string `mapstructure:"RESEND_API_KEY"`

	// Date picker policy.
	HorizonMonths int    `mapstructure:"BOOKING_HORIZON_MONTHS"`
	MinDays       int    `mapstructure:"BOOKING_MIN_DAYS"`
	MinLeadDays   int    `mapstructure:"BOOKING_MIN_LEAD_DAYS"`
	BlackoutDates string `mapstructure:"BOOKING_BLACKOUT_DATES"`
}

var defaults = map[string]any{
	"ADDR":                   ":8080",
	"ENV":                    "development",
	"LOG_LEVEL":              "info",
	"DB_PATH":                "bookingrelay.db",
	"STATIC_DIR":             "static",
	"ALLOWED_ORIGIN":         "*",
	"CSRF_KEY":               "",
	"RATE_LIMIT_PER_MINUTE":  30,
	"SLOW_REQUEST_MS":        500,
	"SLOW_QUERY_MS":          50,
	"MAIL_TRANSPORT":         TransportSMTP,
	"SMTP_HOST":              "",
	"SMTP_PORT":              587,
	"SMTP_USER":              "",
	"SMTP_PASS":              "",
	"FROM_EMAIL":             "",
	"TO_EMAIL":               "",
	"RESEND_API_KEY":         "",
	"BOOKING_HORIZON_MONTHS": 3,
	"BOOKING_MIN_DAYS":       4,
	"BOOKING_MIN_LEAD_DAYS":  0,
	"BOOKING_BLACKOUT_DATES": "",
}

// Load reads config.yaml from the working directory or ./config when present,
// then overlays environment variables.
// PRE: any .env file has already been loaded into the process environment
// POST: returns a Config with every key defaulted
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		slog.Debug("config_file_absent", "detail", "using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.MailTransport = strings.ToLower(strings.TrimSpace(cfg.MailTransport))
	return cfg, nil
}

// Validate checks that the selected mail transport has what it needs and that
// production names the one origin allowed to call the API cross-origin.
// The server refuses to start on error; a misconfigured relay would only fail per request.
func (c Config) Validate() error {
	if c.IsProduction() {
		if origin := strings.TrimSpace(c.AllowedOrigin); origin == "" || origin == "*" {
			return fmt.Errorf("%w: got %q", ErrWildcardOrigin, c.AllowedOrigin)
		}
	}
	var missing []string
	switch c.MailTransport {
	case TransportSMTP:
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
	case TransportResend:
		if c.ResendAPIKey == "" {
			missing = append(missing, "RESEND_API_KEY")
		}
	case TransportNoop:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.MailTransport)
	}
	if c.FromEmail == "" {
		missing = append(missing, "FROM_EMAIL")
	}
	if c.ToEmail == "" {
		missing = append(missing, "TO_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Policy returns the date picker policy.
func (c Config) Policy() availability.Policy {
	return availability.Policy{
		HorizonMonths: c.HorizonMonths,
		MinLeadDays:   c.MinLeadDays,
		MinRangeDays:  c.MinDays,
	}
}

// BlackoutSeeds splits BOOKING_BLACKOUT_DATES. Each entry is "YYYY-MM-DD" or
// "YYYY-MM-DD..YYYY-MM-DD"; blanks are skipped.
func (c Config) BlackoutSeeds() []string {
	var out []string
	for _, part := range strings.Split(c.BlackoutDates, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SlowRequestThreshold returns SLOW_REQUEST_MS as a duration.
func (c Config) SlowRequestThreshold() time.Duration {
	return time.Duration(c.SlowRequestMs) * time.Millisecond
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
