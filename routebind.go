package routebind

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/routebind/internal"
	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/health"
	"github.com/dmitrymomot/routebind/pkg/logger"
)

// Type aliases - public API
type (
	// App serves routes whose parameters are resolved through a binding.Resolver.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and the resolved route parameters.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers and route binding.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error carrying an HTTP status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter tracks the status and size of a response.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// Params is an ordered set of route parameters.
	Params = binding.Params
)

// Constructors

// New creates a new application with the given options.
//
// Example:
//
//	resolver := binding.NewResolver(registry)
//	resolver.ImplicitBind(`App\Models`)
//
//	app := routebind.New(
//	    routebind.WithResolver(resolver),
//	    routebind.WithHandlers(handlers.NewPosts()),
//	)
//
//	err := app.Run(":8080", routebind.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithResolver sets the resolver that turns route wildcards into bound values.
func WithResolver(r *binding.Resolver) Option {
	return internal.WithResolver(r)
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithMount attaches a plain http.Handler at pattern.
func WithMount(pattern string, h http.Handler) Option {
	return internal.WithMount(pattern, h)
}

// WithErrorHandler sets a custom error handler. Defaults to DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	routebind.WithHealthChecks(
//	    routebind.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a JSON logger with a component name and optional extractors.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Health options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessTimeout sets the deadline shared by all readiness checks.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return internal.WithReadinessTimeout(d)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Listener serves on ln instead of listening on the address given to Run.
func Listener(ln net.Listener) RunOption {
	return internal.Listener(ln)
}

// Logger sets the server logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before the server starts listening.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	routebind.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context. Cancelling it shuts the server down.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// DefaultErrorHandler writes a JSON error body with the status from StatusCode.
func DefaultErrorHandler(c Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}

// StatusCode maps an error to an HTTP status.
// Failed route bindings (binding.ErrEntityNotFound) become 404.
func StatusCode(err error) int {
	return internal.StatusCode(err)
}

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrForbidden creates a 403 HTTPError.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrInternal creates a 500 HTTPError.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// AsHTTPError extracts the HTTPError from an error if present.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Context helpers

// Bound returns the resolved route parameter as T.
//
// Example:
//
//	func (h *Posts) show(c routebind.Context) error {
//	    post, ok := routebind.Bound[db.Row](c, "post")
//	    if !ok {
//	        return routebind.ErrNotFound("post not found")
//	    }
//	    return c.JSON(http.StatusOK, post)
//	}
func Bound[T any](c Context, name string) (T, bool) {
	return internal.Bound[T](c, name)
}

// Param returns the raw URL parameter converted to T.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns the query parameter converted to T.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns the query parameter converted to T, or defaultValue.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}
