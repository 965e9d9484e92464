package internal

// Handler declares routes on a router.
//
// Example:
//
//	type PostHandler struct{}
//
//	func (h *PostHandler) Routes(r routebind.Router) {
//	    r.GET("/posts/{post}", h.show)
//	    r.GET("/posts/{post}/comments/{comment}", h.comment)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Route parameters are already resolved when it runs.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Owner(next routebind.HandlerFunc) routebind.HandlerFunc {
//	    return func(c routebind.Context) error {
//	        post, _ := routebind.Bound[db.Row](c, "post")
//	        if post["author"] != c.Header("X-User") {
//	            return c.Error(http.StatusForbidden, "not your post")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers and from route binding.
type ErrorHandler func(Context, error) error
