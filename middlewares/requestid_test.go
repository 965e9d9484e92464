package middlewares_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/routebind/internal"
	"github.com/dmitrymomot/routebind/middlewares"
	"github.com/dmitrymomot/routebind/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, mw internal.Middleware, headers map[string]string) (string, *httptest.ResponseRecorder) {
		t.Helper()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()

		var got string
		err := mw(func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		})(newTestContext(rec, req))
		require.NoError(t, err)
		return got, rec
	}

	t.Run("generates uuid", func(t *testing.T) {
		t.Parallel()

		id, rec := run(t, middlewares.RequestID(), nil)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps upstream id", func(t *testing.T) {
		t.Parallel()

		id, _ := run(t, middlewares.RequestID(), map[string]string{"X-Request-ID": "upstream"})
		require.Equal(t, "upstream", id)
	})

	t.Run("header priority", func(t *testing.T) {
		t.Parallel()

		id, _ := run(t, middlewares.RequestID(), map[string]string{
			"X-Correlation-ID": "correlation",
			"X-Request-ID":     "request",
		})
		require.Equal(t, "request", id)

		id, _ = run(t, middlewares.RequestID(), map[string]string{"X-Correlation-ID": "correlation"})
		require.Equal(t, "correlation", id)
	})

	t.Run("custom options", func(t *testing.T) {
		t.Parallel()

		mw := middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDHeaders("X-Trace"),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		)

		id, rec := run(t, mw, map[string]string{"X-Request-ID": "ignored"})
		require.Equal(t, "fixed", id)
		require.Equal(t, "fixed", rec.Header().Get("X-Trace"))
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Empty(t, middlewares.GetRequestID(c))
		require.Empty(t, middlewares.RequestIDFromContext(context.Background()))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(logger.NewLogHandlerDecorator(
		slog.NewJSONHandler(&buf, nil),
		middlewares.RequestIDExtractor(),
	))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")

	err := middlewares.RequestID()(func(c internal.Context) error {
		log.InfoContext(c, "handled")
		return nil
	})(newTestContext(httptest.NewRecorder(), req))
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"request_id":"req-42"`)

	buf.Reset()
	log.InfoContext(context.Background(), "no id")
	require.NotContains(t, buf.String(), "request_id")
}
