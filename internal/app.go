package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/health"
	"github.com/dmitrymomot/routebind/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App serves routes whose parameters are resolved through a binding.Resolver.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router                  chi.Router
	resolver                *binding.Resolver
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	middlewares             []Middleware
	handlers                []Handler
	mounts                  []mount
}

type mount struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	app := routebind.New(
//	    routebind.WithResolver(resolver),
//	    routebind.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    routebind.WithHandlers(handlers.NewPosts()),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:       chi.NewRouter(),
		logger:       logger.NewNope(),
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Resolver returns the configured binding resolver, or nil.
func (a *App) Resolver() *binding.Resolver {
	return a.resolver
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until shutdown.
//
// Example:
//
//	err := app.Run(":8080",
//	    routebind.Logger(log),
//	    routebind.ShutdownHook(db.Shutdown(pool)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	log := cfg.logger
	if log == nil {
		log = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		listener:        cfg.listener,
		logger:          log,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware and handlers.
func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(
			a.healthConfig.checks,
			health.WithTimeout(a.healthConfig.timeout),
			health.WithLogger(a.logger),
		))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc without route bindings to an http.HandlerFunc.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.logger)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError hands err to the error handler unless a response was already written.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogWarn("error after response was written", slog.Any("error", err))
		return
	}
	if herr := a.errorHandler(c, err); herr != nil {
		c.LogError("error handler failed", slog.Any("error", herr), slog.Any("cause", err))
		if !c.Written() {
			http.Error(c.Response(), "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	timeout       time.Duration
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessTimeout sets the deadline shared by all readiness checks.
func WithReadinessTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		c.timeout = d
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during the readiness check.
//
// Example:
//
//	routebind.WithReadinessCheck("postgres", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if name == "" || fn == nil {
			return
		}
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
