package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/routebind"
	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/cache"
	"github.com/dmitrymomot/routebind/pkg/db"
	"github.com/dmitrymomot/routebind/pkg/logger"
	"github.com/dmitrymomot/routebind/pkg/redis"
)

// memTable serves rows keyed by their route key value.
type memTable struct {
	name     string
	routeKey string
	rows     map[string]db.Row
}

func (m *memTable) RouteKeyName() string { return m.routeKey }

func (m *memTable) Where(field, value string) binding.Query {
	return memQuery(func(context.Context) (any, error) {
		row, ok := m.rows[value]
		if !ok {
			return nil, binding.NotFound(m.name, field, value)
		}
		return row, nil
	})
}

type memQuery func(context.Context) (any, error)

func (q memQuery) FirstOrFail(ctx context.Context) (any, error) { return q(ctx) }

type memPosts struct {
	posts    *memTable
	comments map[string]db.Row
}

func (m *memPosts) FindWithComment(ctx context.Context, slug, comment string) ([]any, error) {
	post, err := m.posts.Where("slug", slug).FirstOrFail(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := m.comments[slug+"/"+comment]
	if !ok {
		return nil, binding.NotFound("comments", "id", comment)
	}
	return []any{post, c}, nil
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	users := &memTable{name: "users", routeKey: "username", rows: map[string]db.Row{
		"alice": {"id": 1, "username": "alice"},
	}}
	posts := &memTable{name: "posts", routeKey: "slug", rows: map[string]db.Row{
		"hello-world": {"id": 10, "slug": "hello-world"},
	}}
	comments := map[string]db.Row{
		"hello-world/1": {"id": 1, "body": "Nice post!"},
	}

	registry := binding.NewRegistry()
	require.NoError(t, binding.Provide(registry, userModel, func() *memTable { return users }))
	require.NoError(t, binding.Provide(registry, postModel, func() *memTable { return posts }))
	require.NoError(t, binding.Provide(registry, postRepository, func() *memPosts {
		return &memPosts{posts: posts, comments: comments}
	}))

	cfg, err := loadBindings("")
	require.NoError(t, err)
	resolver, err := newResolver(registry, cfg)
	require.NoError(t, err)

	return routebind.New(
		routebind.WithResolver(resolver),
		routebind.WithHandlers(&blogHandler{}),
	)
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestBlogHandler(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	t.Run("user", func(t *testing.T) {
		t.Parallel()

		code, body := get(t, app, "/users/alice")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "alice", body["username"])

		code, _ = get(t, app, "/users/ghost")
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("author falls back to null", func(t *testing.T) {
		t.Parallel()

		code, body := get(t, app, "/authors/ghost")
		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, "author")
		require.Nil(t, body["author"])

		_, body = get(t, app, "/authors/alice")
		require.Equal(t, map[string]any{"id": float64(1), "username": "alice"}, body["author"])
	})

	t.Run("post", func(t *testing.T) {
		t.Parallel()

		code, body := get(t, app, "/posts/hello-world")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "hello-world", body["slug"])

		code, _ = get(t, app, "/posts/missing")
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("comment of post", func(t *testing.T) {
		t.Parallel()

		code, body := get(t, app, "/posts/hello-world/comments/1")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "Nice post!", body["comment"].(map[string]any)["body"])
		require.Equal(t, "hello-world", body["post"].(map[string]any)["slug"])

		code, _ = get(t, app, "/posts/hello-world/comments/2")
		require.Equal(t, http.StatusNotFound, code)

		code, _ = get(t, app, "/posts/missing/comments/1")
		require.Equal(t, http.StatusNotFound, code)
	})
}

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("built-in bindings", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		require.NoError(t, check(&out, ""))

		s := out.String()
		require.Contains(t, s, "explicit bindings: 1")
		require.Contains(t, s, `author       App\Models\User`)
		require.Contains(t, s, "implicit rules: 1")
		require.Contains(t, s, `[post, comment] App\Repositories\PostRepository@FindWithComment`)
		require.Contains(t, s, `App\Models\Comment`)
	})

	t.Run("unknown entity", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bindings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("explicit:\n  - key: tag\n    binder: App\\Models\\Tag\n"), 0o600))

		var out bytes.Buffer
		err := check(&out, path)
		require.ErrorIs(t, err, binding.ErrInvalidConfiguration)
		require.ErrorContains(t, err, `App\Models\Tag`)
		require.Contains(t, out.String(), "explicit bindings: 1")
	})

	t.Run("unknown error handler", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bindings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("implicit:\n  - namespace: App\\Models\n    error_handler: ignore\n"), 0o600))

		err := check(&bytes.Buffer{}, path)
		require.ErrorIs(t, err, binding.ErrInvalidConfiguration)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		err := check(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestErrorHandlers(t *testing.T) {
	t.Parallel()

	h := errorHandlers()["not_found_as_nil"]
	require.NotNil(t, h)

	v, err := h(context.Background(), binding.NotFound("users", "username", "ghost"))
	require.NoError(t, err)
	require.Nil(t, v)

	boom := errors.New("boom")
	_, err = h(context.Background(), boom)
	require.ErrorIs(t, err, boom)
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	fsys, err := migrations()
	require.NoError(t, err)

	files, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_posts.sql",
		"00003_create_comments.sql",
	}, files)
}

func TestTableSpecs(t *testing.T) {
	t.Parallel()

	specs := tableSpecs(nil, 0)
	require.Len(t, specs, 3)
	require.Equal(t, "users", specs[userModel].Name)
	require.Equal(t, "posts", specs[postModel].Name)
	require.Equal(t, "comments", specs[commentModel].Name)

	users := db.NewTable(nil, specs[userModel].Name, specs[userModel].Options...)
	require.Equal(t, "username", users.RouteKeyName())

	rows := cache.NewMemory[db.Row]()
	t.Cleanup(func() { _ = rows.Close() })

	cached := tableSpecs(rows, time.Minute)
	require.Len(t, cached[postModel].Options, len(specs[postModel].Options)+1)
	require.Len(t, cached[commentModel].Options, 1)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/routebind")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CACHE_TTL", "5m")

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.AutoMigrate)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "postgres://localhost:5432/routebind", cfg.DB.ConnectionString)
	require.False(t, cfg.Redis.Enabled())
}

func TestOpenRowCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := logger.NewNope()

	t.Run("memory without redis url", func(t *testing.T) {
		t.Parallel()

		rc, err := openRowCache(ctx, config{CacheTTL: time.Minute, CacheMaxEntries: 10}, log)
		require.NoError(t, err)
		require.IsType(t, &cache.Memory[db.Row]{}, rc.rows)
		require.Nil(t, rc.ready)
		require.NoError(t, rc.shutdown(ctx))
		require.NoError(t, rc.shutdown(ctx))
	})

	t.Run("redis shutdown closes client", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		cfg := config{CacheTTL: time.Minute, CachePrefix: "test:", Redis: redis.Config{URL: "redis://" + srv.Addr() + "/0", PoolSize: 1}}

		rc, err := openRowCache(ctx, cfg, log)
		require.NoError(t, err)
		require.IsType(t, &cache.Redis[db.Row]{}, rc.rows)
		require.Equal(t, "redis", rc.name)
		require.NoError(t, rc.ready(ctx))

		require.NoError(t, rc.shutdown(ctx))
		require.ErrorIs(t, rc.ready(ctx), redis.ErrHealthcheckFailed)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		t.Parallel()

		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		cfg := config{Redis: redis.Config{URL: "redis://" + addr, RetryAttempts: 1, DialTimeout: 100 * time.Millisecond}}
		_, err := openRowCache(ctx, cfg, log)
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
	})
}
