package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Cache is a generic key-value cache with TTL support.
//
// TTL semantics for Set:
//   - positive: the entry expires after this duration
//   - zero: the cache's default TTL is used
//   - negative: the entry never expires
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Marshaler converts values for byte-oriented backends such as Redis.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Marshaler. Numbers decoded into interface values
// become json.Number, so integers keep their precision.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v V
	if err := dec.Decode(&v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
