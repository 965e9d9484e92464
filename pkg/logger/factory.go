package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the stdout handler produced by FromConfig.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// New creates a JSON-formatted info-level logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithLevel(slog.LevelInfo, extractors...)
}

// NewWithLevel creates a JSON-formatted logger writing records at or above level.
func NewWithLevel(level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(os.Stdout, "json", level), extractors...))
}

// FromConfig builds a logger from cfg. When cfg.Sentry.DSN is set, records are
// also forwarded to Sentry.
func FromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	stdout := newHandler(os.Stdout, cfg.Format, ParseLevel(cfg.Level))
	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(stdout, extractors...))
	}
	return newWithSentry(stdout, cfg.Sentry, extractors...)
}

// ParseLevel maps debug, info, warn and error to slog levels.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
