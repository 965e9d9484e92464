package binding

import (
	"context"
	"fmt"
	"reflect"
)

// callable is a binder reduced to a single invocation with its arguments baked in.
type callable func(ctx context.Context) (any, error)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// methodCallable returns a callable invoking instance.method(args...).
// The method is looked up when the callable runs, so a missing method is an
// invocation failure rather than a binder resolution failure. The first letter
// of method is upper-cased, so "findForRoute" calls FindForRoute.
//
// Accepted method signatures:
//   - optional leading context.Context
//   - one string per argument, or a variadic ...string
//   - results (T), (T, error) or (error)
func methodCallable(instance any, method string, args ...string) callable {
	return func(ctx context.Context) (any, error) {
		return callMethod(ctx, instance, method, args)
	}
}

func callMethod(ctx context.Context, instance any, method string, args []string) (any, error) {
	method = capitalize(method)
	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %T has no method %s", ErrMethodNotFound, instance, method)
	}

	in, err := methodArgs(ctx, m.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%w: %T.%s: %w", ErrInvalidInvocation, instance, method, err)
	}

	var out []reflect.Value
	if m.Type().IsVariadic() {
		out = m.CallSlice(in)
	} else {
		out = m.Call(in)
	}

	return methodResults(out)
}

// methodArgs builds the reflect arguments for a method call.
func methodArgs(ctx context.Context, mt reflect.Type, args []string) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, mt.NumIn())
	first := 0
	if mt.NumIn() > 0 && mt.In(0) == contextType {
		in = append(in, reflect.ValueOf(&ctx).Elem())
		first = 1
	}

	if mt.IsVariadic() {
		fixed := mt.NumIn() - 1 - first
		if len(args) < fixed {
			return nil, fmt.Errorf("expects at least %d values, got %d", fixed, len(args))
		}
		for i := range fixed {
			v, err := stringArg(mt.In(first+i), args[i])
			if err != nil {
				return nil, err
			}
			in = append(in, v)
		}
		variadic := mt.In(mt.NumIn() - 1)
		if variadic.Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("variadic parameter must be ...string, got %s", variadic)
		}
		rest := reflect.MakeSlice(variadic, 0, len(args)-fixed)
		for _, a := range args[fixed:] {
			rest = reflect.Append(rest, reflect.ValueOf(a).Convert(variadic.Elem()))
		}
		return append(in, rest), nil
	}

	if want := mt.NumIn() - first; want != len(args) {
		return nil, fmt.Errorf("expects %d values, got %d", want, len(args))
	}
	for i, a := range args {
		v, err := stringArg(mt.In(first+i), a)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return in, nil
}

func stringArg(t reflect.Type, value string) (reflect.Value, error) {
	if t.Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("parameter must be a string, got %s", t)
	}
	return reflect.ValueOf(value).Convert(t), nil
}

// methodResults interprets (T), (T, error) and (error) return shapes.
func methodResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Kind() == reflect.Interface && out[0].Type().Implements(errorType) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	case 2:
		if !out[1].Type().Implements(errorType) {
			return nil, fmt.Errorf("%w: second result must be an error, got %s", ErrInvalidInvocation, out[1].Type())
		}
		if !isNil(out[1]) {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("%w: method returns %d values", ErrInvalidInvocation, len(out))
	}
}

// isNil reports whether v holds nil. Kinds that cannot be nil never do.
func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// asSlice converts a composite binder result to []any.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
