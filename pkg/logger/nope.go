package logger

import (
	"io"
	"log/slog"
)

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewWriter creates a text logger writing to w. Useful in tests.
func NewWriter(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newHandler(w, "text", level), extractors...))
}
