package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/routebind/pkg/binding"
)

// HTTPError represents an HTTP error with all data needed for rendering.
// It implements the error interface and provides structured data for
// error handlers.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Title is an optional title for the error (defaults derived from Code).
	Title string

	// Detail is an optional extended description.
	Detail string

	// ErrorCode is an application-specific error code for client handling.
	ErrorCode string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for the errors route handlers return most.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return build(http.StatusBadRequest, message, opts)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return build(http.StatusForbidden, message, opts)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return build(http.StatusNotFound, message, opts)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return build(http.StatusInternalServerError, message, opts)
}

func build(code int, message string, opts []HTTPErrorOption) *HTTPError {
	e := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Helper functions for error inspection.

// IsHTTPError reports whether err or any error it wraps is an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from an error if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// StatusCode maps an error to an HTTP status.
// HTTPErrors keep their code, failed route lookups become 404 and everything else,
// including binding misconfiguration, is 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsHTTPError(err):
		return AsHTTPError(err).Code
	case errors.Is(err, binding.ErrInvalidConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, binding.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorHandler writes a JSON error body with the status from StatusCode.
// Server errors are logged and their message is not exposed.
func DefaultErrorHandler(c Context, err error) error {
	code := StatusCode(err)

	message := http.StatusText(code)
	if httpErr := AsHTTPError(err); httpErr != nil && httpErr.Message != "" && code < http.StatusInternalServerError {
		message = httpErr.Message
	}

	if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Int("status", code), slog.Any("error", err))
	} else {
		c.LogDebug("request rejected", slog.Int("status", code), slog.Any("error", err))
	}

	return c.JSON(code, map[string]string{"error": message})
}
