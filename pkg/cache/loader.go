package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load once it no longer follows any caller's context.
const DefaultLoadTimeout = 30 * time.Second

// Loader reads through a Cache and collapses concurrent misses for the same key
// into a single call.
type Loader[V any] struct {
	cache Cache[V]
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader wraps c. Loaded values are stored with ttl (zero uses the cache default).
func NewLoader[V any](c Cache[V], ttl time.Duration) *Loader[V] {
	return &Loader[V]{cache: c, ttl: ttl}
}

// Get returns the cached value for key, or calls load and caches its result.
// Errors from load are returned and not cached. Cache write failures are ignored.
//
// Concurrent callers share one load. It runs detached from the caller that started
// it, bounded by DefaultLoadTimeout, so one cancelled request does not fail the
// others; each caller still returns as soon as its own ctx is done.
func (l *Loader[V]) Get(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	ch := l.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultLoadTimeout)
		defer cancel()

		val, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		_ = l.cache.Set(loadCtx, key, val, l.ttl)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		r, _ := res.Val.(V)
		return r, nil
	}
}

// Forget removes key from the cache.
func (l *Loader[V]) Forget(ctx context.Context, key string) error {
	l.group.Forget(key)
	return l.cache.Delete(ctx, key)
}
