package cache

import "time"

// Option configures a cache backend.
type Option func(*options)

type options struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
	prefix          string
}

func newOptions(opts ...Option) *options {
	o := &options{
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithDefaultTTL sets the TTL used when Set is called with zero.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often the memory cache drops expired entries.
// Zero disables the janitor. Default: 1 minute.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries bounds the memory cache; the least recently used entry is evicted first.
// Zero means unlimited.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		o.maxEntries = n
	}
}

// WithPrefix namespaces Redis keys as "{prefix}:{key}".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}
