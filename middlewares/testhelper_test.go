package middlewares_test

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/routebind/internal"
	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/logger"
)

// testContext is a minimal internal.Context over a recorder.
type testContext struct {
	response http.ResponseWriter
	request  *http.Request
	log      *slog.Logger
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{response: w, request: r, log: logger.NewNope()}
}

func (c *testContext) Request() *http.Request         { return c.request }
func (c *testContext) Response() http.ResponseWriter  { return c.response }
func (c *testContext) Context() context.Context       { return c.request.Context() }
func (c *testContext) Deadline() (time.Time, bool)    { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}          { return c.request.Context().Done() }
func (c *testContext) Err() error                     { return c.request.Context().Err() }
func (c *testContext) Value(key any) any              { return c.request.Context().Value(key) }
func (c *testContext) Param(string) string            { return "" }
func (c *testContext) Bound(string) (any, bool)       { return nil, false }
func (c *testContext) Params() binding.Params         { return nil }
func (c *testContext) Query(name string) string       { return c.request.URL.Query().Get(name) }
func (c *testContext) Header(name string) string      { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string)   { c.response.Header().Set(name, value) }
func (c *testContext) JSON(code int, _ any) error     { c.response.WriteHeader(code); return nil }
func (c *testContext) NoContent(code int) error       { c.response.WriteHeader(code); return nil }
func (c *testContext) Written() bool                  { return false }
func (c *testContext) Logger() *slog.Logger           { return c.log }
func (c *testContext) LogDebug(msg string, a ...any)  { c.log.DebugContext(c, msg, a...) }
func (c *testContext) LogInfo(msg string, a ...any)   { c.log.InfoContext(c, msg, a...) }
func (c *testContext) LogWarn(msg string, a ...any)   { c.log.WarnContext(c, msg, a...) }
func (c *testContext) LogError(msg string, a ...any)  { c.log.ErrorContext(c, msg, a...) }
func (c *testContext) Get(key any) any                { return c.request.Context().Value(key) }
func (c *testContext) SetContext(ctx context.Context) { c.request = c.request.WithContext(ctx) }
func (c *testContext) Redirect(code int, u string) error {
	http.Redirect(c.response, c.request, u, code)
	return nil
}

func (c *testContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *testContext) String(code int, s string) error {
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	err := internal.NewHTTPError(code, message)
	for _, opt := range opts {
		opt(err)
	}
	return err
}

func (c *testContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

var _ internal.Context = (*testContext)(nil)
