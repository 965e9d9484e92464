package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache stored in Redis. Values are encoded with a Marshaler (JSON by default).
type Redis[V any] struct {
	client    redis.UniversalClient
	opts      *options
	marshaler Marshaler[V]
}

// NewRedis creates a Redis-backed cache. A nil Marshaler selects JSON.
// The client lifecycle belongs to the caller.
//
// Example:
//
//	rows := cache.NewRedis[map[string]any](client, nil,
//	    cache.WithPrefix("routebind:rows"),
//	    cache.WithDefaultTTL(5*time.Minute),
//	)
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...Option) *Redis[V] {
	if m == nil {
		m = JSON[V]{}
	}
	return &Redis[V]{client: client, opts: newOptions(opts...), marshaler: m}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}
	// Redis treats 0 as no expiration.
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Close is a no-op; close the client with redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
