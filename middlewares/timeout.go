package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/routebind/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that puts a deadline on the request context.
// Installed globally, the deadline also covers route binding, so slow entity
// lookups are cancelled. A handler or binding that fails because the deadline
// passed yields a TimeoutError, which the default error handler maps to 504.
//
// Cancellation is cooperative: the handler keeps running until it observes ctx.Done().
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			parent := c.Context()
			ctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			c.SetContext(ctx)
			defer c.SetContext(parent)

			err := next(c)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && errors.Is(err, context.DeadlineExceeded) {
				c.LogWarn("request timeout", "timeout", timeout.String())
				return &TimeoutError{Duration: timeout, Err: err}
			}
			return err
		}
	}
}
