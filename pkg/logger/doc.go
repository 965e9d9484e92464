// Package logger builds slog loggers with context extraction and optional Sentry reporting.
//
// Loggers are JSON by default. Context extractors add request-scoped attributes
// (request ID, user ID) to every record at log time:
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"request_id":"abc-123"}
//
// FromConfig reads level and format from a Config populated from the environment
// (LOG_LEVEL, LOG_FORMAT, SENTRY_DSN, SENTRY_ENVIRONMENT). When a Sentry DSN is set,
// errors create Sentry issues and warnings are stored as logs; without one the
// logger writes to stdout only. Call Flush before exiting to deliver pending events.
//
// NewNope returns a logger that discards everything and is the default for
// components that accept an optional logger.
package logger
