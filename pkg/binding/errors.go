package binding

import "errors"

var (
	// ErrInvalidConfiguration is returned for malformed registrations and binder values
	// that cannot be turned into a callable.
	ErrInvalidConfiguration = errors.New("binding: invalid configuration")

	// ErrEntityNotFound is returned when an identifier does not resolve to a registered
	// entity, or when the default lookup finds no matching record.
	ErrEntityNotFound = errors.New("binding: entity not found")

	// ErrCompositeShape is returned when a composite binder does not return one value per wildcard.
	ErrCompositeShape = errors.New("binding: composite return value must be an array of the same count as the wildcards")

	// ErrMethodNotFound is returned when a "Class@method" binder names a method the instance does not have.
	ErrMethodNotFound = errors.New("binding: method not found")

	// ErrInvalidInvocation is returned when a method cannot be called with the wildcard values.
	ErrInvalidInvocation = errors.New("binding: invalid invocation")

	// ErrDuplicateEntity is returned when an identifier is registered twice.
	ErrDuplicateEntity = errors.New("binding: entity already registered")
)
