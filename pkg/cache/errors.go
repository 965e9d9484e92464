package cache

import "errors"

var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned by writes to a closed cache.
	ErrClosed = errors.New("cache: closed")

	ErrMarshal   = errors.New("cache: failed to marshal value")
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)
