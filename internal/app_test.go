package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/routebind/internal"
	"github.com/dmitrymomot/routebind/pkg/binding"
)

const postModel = `App\Models\Post`

// posts is an in-memory binding.Model keyed by slug.
type posts map[string]string

func (posts) RouteKeyName() string { return "slug" }

func (p posts) Where(field, value string) binding.Query {
	return lookup(func(context.Context) (any, error) {
		title, ok := p[value]
		if !ok {
			return nil, binding.NotFound("posts", field, value)
		}
		return map[string]string{"slug": value, "title": title}, nil
	})
}

type lookup func(ctx context.Context) (any, error)

func (l lookup) FirstOrFail(ctx context.Context) (any, error) { return l(ctx) }

func newResolver(t *testing.T) *binding.Resolver {
	t.Helper()

	registry := binding.NewRegistry()
	require.NoError(t, binding.Provide(registry, postModel, func() posts {
		return posts{"hello": "Hello", "hello world": "Hello World"}
	}))

	r := binding.NewResolver(registry)
	r.ImplicitBind(`App\Models`)
	return r
}

// routes adapts a func to internal.Handler.
type routes func(r internal.Router)

func (fn routes) Routes(r internal.Router) { fn(r) }

func showPost(c internal.Context) error {
	post, ok := internal.Bound[map[string]string](c, "post")
	if !ok {
		return c.Error(http.StatusGone, "post unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"title": post["title"], "raw": c.Param("post")})
}

func serve(t *testing.T, app http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

// --- Route binding ---

func TestApp_RouteBinding(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithResolver(newResolver(t)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/posts/{post}", showPost)
			r.GET("/posts/{post}/tabs/{tab}", func(c internal.Context) error {
				return c.JSON(http.StatusOK, c.Params().Map())
			})
			r.GET("/about", func(c internal.Context) error {
				if len(c.Params()) != 0 {
					return errors.New("static route has parameters")
				}
				return c.String(http.StatusOK, "about")
			})
		})),
	)

	t.Run("resolves bound parameter", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, http.MethodGet, "/posts/hello")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, map[string]string{"title": "Hello", "raw": "hello"}, decode(t, rec))
	})

	t.Run("unescapes path values", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, http.MethodGet, "/posts/hello%20world")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Hello World", decode(t, rec)["title"])
	})

	t.Run("unbound parameters keep raw value", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, http.MethodGet, "/posts/hello/tabs/comments")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "comments", body["tab"])
		require.Equal(t, map[string]any{"slug": "hello", "title": "Hello"}, body["post"])
	})

	t.Run("missing entity is 404", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, http.MethodGet, "/posts/ghost")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, map[string]string{"error": "Not Found"}, decode(t, rec))
	})

	t.Run("static route", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, app, http.MethodGet, "/about")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "about", rec.Body.String())
	})
}

func TestApp_WithoutResolver(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/posts/{post}", func(c internal.Context) error {
			v, ok := c.Bound("post")
			require.True(t, ok)
			return c.String(http.StatusOK, v.(string))
		})
	})))

	rec := serve(t, app, http.MethodGet, "/posts/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())
}

func TestApp_ErrorHandlerRecovery(t *testing.T) {
	t.Parallel()

	resolver := newResolver(t)
	resolver.Bind("draft", binding.Name(postModel), binding.WithErrorHandler(func(_ context.Context, err error) (any, error) {
		if errors.Is(err, binding.ErrEntityNotFound) {
			return nil, nil
		}
		return nil, err
	}))

	app := internal.New(
		internal.WithResolver(resolver),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/drafts/{draft}", func(c internal.Context) error {
				v, ok := c.Bound("draft")
				require.True(t, ok)
				if v == nil {
					return c.NoContent(http.StatusNoContent)
				}
				return c.NoContent(http.StatusOK)
			})
		})),
	)

	require.Equal(t, http.StatusOK, serve(t, app, http.MethodGet, "/drafts/hello").Code)
	require.Equal(t, http.StatusNoContent, serve(t, app, http.MethodGet, "/drafts/ghost").Code)
}

func TestApp_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	var seen error
	app := internal.New(
		internal.WithResolver(newResolver(t)),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			seen = err
			return c.String(http.StatusTeapot, "custom")
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/posts/{post}", showPost)
		})),
	)

	rec := serve(t, app, http.MethodGet, "/posts/ghost")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "custom", rec.Body.String())
	require.ErrorIs(t, seen, binding.ErrEntityNotFound)
}

func TestApp_HandlerErrorAfterWrite(t *testing.T) {
	t.Parallel()

	called := false
	app := internal.New(
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			called = true
			return nil
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error {
				_ = c.String(http.StatusAccepted, "partial")
				return errors.New("late failure")
			})
		})),
	)

	rec := serve(t, app, http.MethodGet, "/")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.False(t, called)
}

// --- Middleware ---

func TestApp_Middleware(t *testing.T) {
	t.Parallel()

	trace := func(name string, log *[]string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				_, bound := internal.Bound[map[string]string](c, "post")
				*log = append(*log, name+":"+map[bool]string{true: "bound", false: "raw"}[bound])
				return next(c)
			}
		}
	}

	var log []string
	app := internal.New(
		internal.WithResolver(newResolver(t)),
		internal.WithMiddleware(trace("global", &log)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/posts/{post}", showPost, trace("first", &log), trace("second", &log))
		})),
	)

	rec := serve(t, app, http.MethodGet, "/posts/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"global:raw", "first:bound", "second:bound"}, log)
}

func TestApp_MiddlewareError(t *testing.T) {
	t.Parallel()

	deny := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.Header("Authorization") == "" {
				return internal.ErrForbidden("token required")
			}
			return next(c)
		}
	}

	app := internal.New(
		internal.WithMiddleware(deny),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/", func(c internal.Context) error { return c.NoContent(http.StatusOK) })
		})),
	)

	rec := serve(t, app, http.MethodGet, "/")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, map[string]string{"error": "token required"}, decode(t, rec))
}

// --- Endpoints ---

func TestApp_Endpoints(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithHealthChecks(
			internal.WithReadinessCheck("postgres", func(context.Context) error { return nil }),
			internal.WithReadinessCheck("redis", func(context.Context) error { return errors.New("down") }),
			internal.WithReadinessTimeout(time.Second),
		),
		internal.WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		})),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "nothing here")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "nope")
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/posts", func(c internal.Context) error { return c.NoContent(http.StatusCreated) })
		})),
	)

	require.Equal(t, http.StatusOK, serve(t, app, http.MethodGet, "/health/live").Code)
	require.Equal(t, http.StatusServiceUnavailable, serve(t, app, http.MethodGet, "/health/ready").Code)
	require.Equal(t, "# metrics", serve(t, app, http.MethodGet, "/metrics").Body.String())

	rec := serve(t, app, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "nothing here", rec.Body.String())

	rec = serve(t, app, http.MethodGet, "/posts")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "nope", rec.Body.String())
}

// --- Runtime ---

func TestApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("serves until context is cancelled", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		app := internal.New(internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/ping", func(c internal.Context) error { return c.String(http.StatusOK, "pong") })
		})))

		ctx, cancel := context.WithCancel(context.Background())
		var started, stopped atomic.Bool
		done := make(chan error, 1)
		go func() {
			done <- app.Run("",
				internal.Listener(ln),
				internal.WithContext(ctx),
				internal.ShutdownTimeout(time.Second),
				internal.StartupHook(func(context.Context) error { started.Store(true); return nil }),
				internal.ShutdownHook(func(context.Context) error { stopped.Store(true); return nil }),
			)
		}()

		url := "http://" + ln.Addr().String() + "/ping"
		require.Eventually(t, func() bool {
			resp, err := http.Get(url)
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 2*time.Second, 10*time.Millisecond)
		require.True(t, started.Load())

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("server did not shut down")
		}
		require.True(t, stopped.Load())
	})

	t.Run("failed startup hook runs shutdown hooks", func(t *testing.T) {
		t.Parallel()

		errStartup := errors.New("startup failed")
		errShutdown := errors.New("shutdown failed")
		var stopped atomic.Bool

		err := internal.New().Run("127.0.0.1:0",
			internal.StartupHook(func(context.Context) error { return errStartup }),
			internal.ShutdownHook(func(context.Context) error { stopped.Store(true); return errShutdown }),
		)
		require.ErrorIs(t, err, errStartup)
		require.ErrorIs(t, err, errShutdown)
		require.True(t, stopped.Load())
	})
}

// --- Helpers ---

func TestHelpers(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithResolver(newResolver(t)),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/pages/{page}/posts/{post}", func(c internal.Context) error {
				require.Equal(t, 3, internal.Param[int](c, "page"))
				require.Equal(t, int64(0), internal.Param[int64](c, "post"))
				require.Equal(t, 10, internal.QueryDefault(c, "limit", 10))
				require.True(t, internal.Query[bool](c, "draft"))

				_, ok := internal.Bound[string](c, "post")
				require.False(t, ok, "post is bound to a map, not a string")
				page, ok := internal.Bound[string](c, "page")
				require.True(t, ok)
				require.Equal(t, "3", page)

				c.Set(ctxKey{}, "value")
				require.Equal(t, "value", internal.ContextValue[string](c, ctxKey{}))
				require.Empty(t, internal.ContextValue[string](c, "missing"))
				return c.NoContent(http.StatusOK)
			})
		})),
	)

	rec := serve(t, app, http.MethodGet, "/pages/3/posts/hello?draft=true&limit=abc")
	require.Equal(t, http.StatusOK, rec.Code, strings.TrimSpace(rec.Body.String()))
}

type ctxKey struct{}
