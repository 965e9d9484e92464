package internal

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithResolver sets the resolver that turns route wildcards into bound values.
// Without a resolver, handlers see the raw parameter strings.
//
// Example:
//
//	resolver := binding.NewResolver(registry)
//	resolver.ImplicitBind(`App\Models`)
//
//	routebind.New(
//	    routebind.WithResolver(resolver),
//	)
func WithResolver(r *binding.Resolver) Option {
	return func(a *App) {
		a.resolver = r
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithMount attaches a plain http.Handler at pattern.
//
// Example:
//
//	routebind.WithMount("/metrics", promhttp.Handler())
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) {
		if pattern != "" && h != nil {
			a.mounts = append(a.mounts, mount{handler: h, pattern: pattern})
		}
	}
}

// WithErrorHandler sets a custom error handler.
// It receives handler errors and route binding failures. Defaults to DefaultErrorHandler.
//
// Example:
//
//	routebind.WithErrorHandler(func(c routebind.Context, err error) error {
//	    if errors.Is(err, binding.ErrEntityNotFound) {
//	        return c.String(http.StatusNotFound, "Not found")
//	    }
//	    return routebind.DefaultErrorHandler(c, err)
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	routebind.WithHealthChecks(
//	    routebind.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	    routebind.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a JSON logger with a component name and optional extractors.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	routebind.New(
//	    routebind.WithLogger("api", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
