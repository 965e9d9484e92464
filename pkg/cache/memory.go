package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process cache with TTL expiration and optional LRU bound.
// The front of the list holds the most recently used entry.
type Memory[V any] struct {
	mu     sync.Mutex
	items  map[string]*list.Element
	lru    *list.List
	opts   *options
	done   chan struct{}
	closed bool
}

// NewMemory creates an in-memory cache. Call Close to stop the janitor.
//
// Example:
//
//	rows := cache.NewMemory[map[string]any](
//	    cache.WithDefaultTTL(time.Minute),
//	    cache.WithMaxEntries(10_000),
//	)
//	defer rows.Close()
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  newOptions(opts...),
		done:  make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.janitor(m.opts.cleanupInterval)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	elem, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}

	e := elem.Value.(*entry[V])
	if e.expired(time.Now()) {
		m.remove(elem)
		return zero, ErrNotFound
	}

	m.lru.MoveToFront(elem)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value, e.expiresAt = value, expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[key] = m.lru.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet collected.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

// Close stops the janitor. It is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.collect()
		}
	}
}

func (m *Memory[V]) collect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).expired(now) {
			m.remove(elem)
		}
		elem = prev
	}
}

// remove must be called with the mutex held.
func (m *Memory[V]) remove(elem *list.Element) {
	m.lru.Remove(elem)
	delete(m.items, elem.Value.(*entry[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
