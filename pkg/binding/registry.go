package binding

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// InstanceFactory constructs entities by identifier.
// The resolver asks for a fresh instance every time a binder needs one.
type InstanceFactory interface {
	// Exists reports whether identifier names a constructible entity.
	Exists(identifier string) bool

	// Create returns a new instance of the entity registered under identifier.
	Create(ctx context.Context, identifier string) (any, error)
}

// Constructor builds a new entity instance.
type Constructor func(ctx context.Context) (any, error)

// Registry is an InstanceFactory backed by an explicit identifier to constructor map.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register associates identifier with a constructor.
// Returns ErrDuplicateEntity if identifier is already registered.
func (r *Registry) Register(identifier string, ctor Constructor) error {
	if identifier == "" {
		return fmt.Errorf("%w: empty entity identifier", ErrInvalidConfiguration)
	}
	if ctor == nil {
		return fmt.Errorf("%w: nil constructor for [%s]", ErrInvalidConfiguration, identifier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ctors[identifier]; exists {
		return fmt.Errorf("%w: [%s]", ErrDuplicateEntity, identifier)
	}
	r.ctors[identifier] = ctor
	return nil
}

// Provide registers a constructor that cannot fail.
//
// Example:
//
//	binding.Provide(registry, `App\Models\User`, func() *db.Table {
//	    return db.NewTable(pool, "users", db.WithRouteKey("username"))
//	})
func Provide[T any](r *Registry, identifier string, fn func() T) error {
	if fn == nil {
		return fmt.Errorf("%w: nil constructor for [%s]", ErrInvalidConfiguration, identifier)
	}
	return r.Register(identifier, func(context.Context) (any, error) {
		return fn(), nil
	})
}

// Exists reports whether identifier is registered.
func (r *Registry) Exists(identifier string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.ctors[identifier]
	return ok
}

// Create calls the constructor registered under identifier.
// Returns ErrEntityNotFound for unknown identifiers.
func (r *Registry) Create(ctx context.Context, identifier string) (any, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[identifier]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: model not found: [%s]", ErrEntityNotFound, identifier)
	}
	return ctor(ctx)
}

// Identifiers returns the registered identifiers sorted alphabetically.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

var _ InstanceFactory = (*Registry)(nil)
