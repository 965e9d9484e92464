// Package middlewares provides HTTP middleware for routebind applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. It reuses an upstream
// X-Request-ID or X-Correlation-ID header, or generates a UUIDv4.
// RequestIDExtractor adds the ID to every log record, including the debug and
// warn records the binding resolver writes while resolving route parameters:
//
//	app := routebind.New(
//	    routebind.WithLogger("api", middlewares.RequestIDExtractor()),
//	    routebind.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover catches panics and converts them to a PanicError for the error
// handler. Installed globally it also covers binders, which run before the
// route handler.
//
// # Timeout
//
// Timeout puts a deadline on the request context. Route binding runs under the
// same context, so slow entity lookups are cancelled and reported as a
// TimeoutError, which the default error handler maps to 504:
//
//	routebind.WithErrorHandler(func(c routebind.Context, err error) error {
//	    if middlewares.IsTimeoutError(err) {
//	        return c.String(http.StatusGatewayTimeout, "lookup took too long")
//	    }
//	    return routebind.DefaultErrorHandler(c, err)
//	})
//
// # Recommended Order
//
//	routebind.WithMiddleware(
//	    middlewares.RequestID(),            // ID available to every later log line
//	    middlewares.Recover(),              // catches panics from timeout, binders and handlers
//	    middlewares.Timeout(5*time.Second), // deadline shared by binding and handler
//	)
package middlewares
