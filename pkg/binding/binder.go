package binding

import (
	"context"
	"strings"
)

// Binder is the configured resolution strategy for a wildcard.
// It is one of Func, CompositeFunc, ByName or ByMethod, and is turned into
// a callable only when a request actually hits it.
type Binder interface {
	binder()
}

// Func resolves a single wildcard value.
//
// Example:
//
//	r.Bind("article", binding.Func(func(ctx context.Context, slug string) (any, error) {
//	    return articles.FindBySlug(ctx, slug)
//	}))
type Func func(ctx context.Context, value string) (any, error)

// CompositeFunc resolves several wildcards at once.
// It receives the values in the order of the registered keys and must return
// one resolved value per key, in the same order.
//
// Example:
//
//	r.CompositeBind([]string{"post", "comment"}, binding.CompositeFunc(
//	    func(ctx context.Context, values ...string) ([]any, error) {
//	        post, err := posts.Find(ctx, values[0])
//	        if err != nil {
//	            return nil, err
//	        }
//	        comment, err := post.Comments().Find(ctx, values[1])
//	        if err != nil {
//	            return nil, err
//	        }
//	        return []any{post, comment}, nil
//	    },
//	))
type CompositeFunc func(ctx context.Context, values ...string) ([]any, error)

// ByName references a registered entity. The wildcard is resolved with the
// default lookup: the entity's route key must equal the wildcard value.
type ByName struct {
	Identifier string
}

// ByMethod references a method on a registered entity.
// The method receives the wildcard value(s) and returns the resolved value.
type ByMethod struct {
	Identifier string
	Method     string
}

func (Func) binder()          {}
func (CompositeFunc) binder() {}
func (ByName) binder()        {}
func (ByMethod) binder()      {}

// Name parses an entity reference. "App\Models\User" yields ByName,
// "App\Repositories\UserRepository@findForRoute" yields ByMethod.
func Name(ref string) Binder {
	identifier, method, ok := strings.Cut(ref, "@")
	if !ok {
		return ByName{Identifier: ref}
	}
	return ByMethod{Identifier: identifier, Method: method}
}

// Method references method on the entity registered under identifier.
func Method(identifier, method string) Binder {
	return ByMethod{Identifier: identifier, Method: method}
}

// String returns the reference in "Class" form.
func (b ByName) String() string {
	return b.Identifier
}

// String returns the reference in "Class@method" form.
func (b ByMethod) String() string {
	return b.Identifier + "@" + b.Method
}

// ErrorHandler recovers from a failed binder call.
// The returned value replaces the wildcard; a returned error propagates unrecovered.
//
// Example:
//
//	binding.WithErrorHandler(func(ctx context.Context, err error) (any, error) {
//	    if errors.Is(err, binding.ErrEntityNotFound) {
//	        return nil, nil
//	    }
//	    return nil, err
//	})
type ErrorHandler func(ctx context.Context, err error) (any, error)

// Option configures a single binding registration.
type Option func(*bindOptions)

type bindOptions struct {
	onError ErrorHandler
	prefix  string
	suffix  string
	method  string
}

func newBindOptions(opts ...Option) bindOptions {
	var o bindOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithErrorHandler sets the handler called when the binder fails.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *bindOptions) {
		o.onError = h
	}
}

// WithPrefix sets the prefix added before the capitalized wildcard name.
// Implicit bindings only.
func WithPrefix(prefix string) Option {
	return func(o *bindOptions) {
		o.prefix = prefix
	}
}

// WithSuffix sets the suffix added after the capitalized wildcard name.
// Implicit bindings only.
func WithSuffix(suffix string) Option {
	return func(o *bindOptions) {
		o.suffix = suffix
	}
}

// WithMethod calls the named method on the matched entity instead of the default lookup.
// Implicit bindings only.
func WithMethod(method string) Option {
	return func(o *bindOptions) {
		o.method = method
	}
}
