// Package internal provides the HTTP application shell behind the routebind package.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/routebind" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: chi router, middleware, health endpoints and graceful shutdown
//   - Context: request/response access plus the resolved route parameters
//   - Router: interface handlers use to declare routes
//   - Handler: interface implemented by types that declare routes
//   - HandlerFunc, Middleware, ErrorHandler: the handler pipeline
//
// # Route Binding
//
// When a route with wildcards matches, the dispatcher collects the chi URL
// parameters in route order and passes them to binding.Resolver.ResolveBindings
// before the route middleware and handler run. Routes without parameters skip
// resolution, as do apps configured without a resolver.
//
//	resolver := binding.NewResolver(registry)
//	resolver.ImplicitBind(`App\Models`)
//
//	app := internal.New(
//	    internal.WithResolver(resolver),
//	    internal.WithHandlers(postHandler),
//	)
//
//	func (h *PostHandler) Routes(r internal.Router) {
//	    r.GET("/posts/{post}", h.show)
//	}
//
//	func (h *PostHandler) show(c internal.Context) error {
//	    post, _ := internal.Bound[db.Row](c, "post")
//	    return c.JSON(http.StatusOK, post)
//	}
//
// Param still returns the raw wildcard string; Bound and Params return the
// resolved values.
//
// # Error Handling
//
// Binding failures and handler errors both reach the ErrorHandler. The default
// handler maps binding.ErrEntityNotFound to 404, HTTPError to its own code and
// everything else to 500, and writes a JSON body.
//
// # Server Runtime
//
//	err := app.Run(":8080",
//	    internal.Logger(log),
//	    internal.ShutdownHook(db.Shutdown(pool)),
//	)
//
// Run blocks until SIGINT, SIGTERM or cancellation of the context passed with
// WithContext, then shuts the server down and runs the shutdown hooks in order.
package internal
