package binding

import (
	"context"
	"fmt"
)

// Model is the capability the default lookup needs from an entity instance.
type Model interface {
	// RouteKeyName returns the field matched against the wildcard value.
	RouteKeyName() string

	// Where returns a query filtered by field == value.
	Where(field, value string) Query
}

// Query fetches a single entity.
type Query interface {
	// FirstOrFail returns the first matching entity.
	// Implementations must return an error wrapping ErrEntityNotFound when nothing matches.
	FirstOrFail(ctx context.Context) (any, error)
}

// NotFound returns an ErrEntityNotFound error describing a failed lookup.
// Query implementations use it to report zero matches.
func NotFound(entity, field, value string) error {
	return fmt.Errorf("%w: no %s with %s = %q", ErrEntityNotFound, entity, field, value)
}

// defaultLookup builds the "where route key = value, first or fail" callable for instance.
// Building the query is part of binder resolution; only FirstOrFail runs under the error handler.
func defaultLookup(identifier string, instance any, value string) (callable, error) {
	m, ok := instance.(Model)
	if !ok {
		return nil, fmt.Errorf("%w: [%s] (%T) does not implement binding.Model", ErrInvalidConfiguration, identifier, instance)
	}

	q := m.Where(m.RouteKeyName(), value)
	if q == nil {
		return nil, fmt.Errorf("%w: [%s] returned a nil query", ErrInvalidConfiguration, identifier)
	}

	return func(ctx context.Context) (any, error) {
		return q.FirstOrFail(ctx)
	}, nil
}
