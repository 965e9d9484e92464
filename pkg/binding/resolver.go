package binding

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/routebind/pkg/logger"
)

// DefaultSeparator joins an implicit namespace and the derived entity name.
const DefaultSeparator = `\`

type explicitBinding struct {
	binder  Binder
	onError ErrorHandler
}

type implicitRule struct {
	namespace string
	prefix    string
	suffix    string
	method    string
	onError   ErrorHandler
}

type compositeBinding struct {
	keys    []string
	binder  Binder
	onError ErrorHandler
}

// Resolver turns raw route parameters into bound values.
//
// Resolution order for a parameter set:
//   - a composite binding whose keys equal the full ordered key list wins outright;
//   - otherwise every key is resolved on its own: explicit binding first,
//     then implicit rules in registration order, else the raw value is kept.
//
// Registration is expected at startup; ResolveBindings is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	explicit  map[string]explicitBinding
	implicit  []implicitRule
	composite []compositeBinding

	factory   InstanceFactory
	separator string
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used for resolution events.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer used for the ResolveBindings span.
func WithTracer(t trace.Tracer) ResolverOption {
	return func(r *Resolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics enables prometheus metrics for binder invocations.
func WithMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithSeparator sets the string placed between an implicit namespace and the entity name.
func WithSeparator(sep string) ResolverOption {
	return func(r *Resolver) {
		r.separator = sep
	}
}

// NewResolver creates a Resolver that builds entity instances through factory.
// A nil factory is replaced with an empty Registry.
func NewResolver(factory InstanceFactory, opts ...ResolverOption) *Resolver {
	if factory == nil {
		factory = NewRegistry()
	}

	r := &Resolver{
		explicit:  make(map[string]explicitBinding),
		factory:   factory,
		separator: DefaultSeparator,
		logger:    logger.NewNope(),
		tracer:    otel.Tracer("github.com/dmitrymomot/routebind/pkg/binding"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Bind registers an explicit binding for key, replacing any previous one.
// The binder is not validated until a request uses it.
//
// Example:
//
//	r.Bind("user", binding.Name(`App\Models\User`))
//	r.Bind("article", binding.Func(findArticle), binding.WithErrorHandler(notFoundAsNil))
func (r *Resolver) Bind(key string, binder Binder, opts ...Option) {
	o := newBindOptions(opts...)

	r.mu.Lock()
	defer r.mu.Unlock()

	explicit := maps.Clone(r.explicit)
	explicit[key] = explicitBinding{binder: binder, onError: o.onError}
	r.explicit = explicit
}

// ImplicitBind registers a rule deriving entity names from wildcard names:
// namespace + separator + prefix + Capitalized(key) + suffix.
// Rules are tried in registration order; the first one naming a known entity is used.
//
// Example:
//
//	r.ImplicitBind(`App\Models`)
//	r.ImplicitBind(`App\Repositories`, binding.WithSuffix("Repository"), binding.WithMethod("FindForRoute"))
func (r *Resolver) ImplicitBind(namespace string, opts ...Option) {
	o := newBindOptions(opts...)
	rule := implicitRule{
		namespace: namespace,
		prefix:    o.prefix,
		suffix:    o.suffix,
		method:    o.method,
		onError:   o.onError,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.implicit = append(slices.Clip(r.implicit), rule)
}

// CompositeBind registers a binder resolving several wildcards at once.
// It applies only when the route's wildcards equal keys exactly, in the same order.
// Returns ErrInvalidConfiguration if fewer than two keys are given or binder is
// neither a CompositeFunc nor a ByMethod reference.
func (r *Resolver) CompositeBind(keys []string, binder Binder, opts ...Option) error {
	if len(keys) < 2 {
		return fmt.Errorf("%w: composite binding expects more than one wildcard, got %d", ErrInvalidConfiguration, len(keys))
	}

	switch b := binder.(type) {
	case CompositeFunc:
		if b == nil {
			return fmt.Errorf("%w: nil composite binder for %v", ErrInvalidConfiguration, keys)
		}
	case ByMethod:
	default:
		return fmt.Errorf("%w: composite binder must be a CompositeFunc or Class@method reference, got %T", ErrInvalidConfiguration, binder)
	}

	o := newBindOptions(opts...)
	cb := compositeBinding{
		keys:    slices.Clone(keys),
		binder:  binder,
		onError: o.onError,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.composite = append(slices.Clip(r.composite), cb)
	return nil
}

// ResolveBindings resolves params and returns a new parameter list with the same
// keys in the same order. Without any matching binding the input is returned unchanged.
// Any unrecovered failure aborts resolution and no partial result is returned.
func (r *Resolver) ResolveBindings(ctx context.Context, params Params) (_ Params, err error) {
	r.mu.RLock()
	explicit := r.explicit
	implicit := r.implicit
	composite := r.composite
	r.mu.RUnlock()

	if len(params) == 0 || (len(explicit) == 0 && len(implicit) == 0 && len(composite) == 0) {
		return params, nil
	}

	ctx, span := r.tracer.Start(ctx, "binding.ResolveBindings",
		trace.WithAttributes(
			attribute.StringSlice("binding.keys", params.Keys()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(params) > 1 && len(composite) > 0 {
		out, matched, err := r.resolveComposite(ctx, composite, params)
		if matched {
			span.SetAttributes(attribute.Bool("binding.composite", true))
			return out, err
		}
	}

	if len(explicit) == 0 && len(implicit) == 0 {
		return params, nil
	}

	out := params.Clone()
	for i, p := range params {
		v, err := r.resolveKey(ctx, explicit, implicit, p.Key, rawValue(p.Value))
		if err != nil {
			return nil, err
		}
		out[i].Value = v
	}
	return out, nil
}

func (r *Resolver) resolveComposite(ctx context.Context, bindings []compositeBinding, params Params) (Params, bool, error) {
	keys := params.Keys()

	for _, b := range bindings {
		if !slices.Equal(b.keys, keys) {
			continue
		}

		values := make([]string, len(params))
		for i, p := range params {
			values[i] = rawValue(p.Value)
		}

		call, err := r.compositeCallable(ctx, b.binder, values)
		if err != nil {
			return nil, true, err
		}

		res, err := r.invoke(ctx, KindComposite, keyList(keys), call, b.onError)
		if err != nil {
			return nil, true, err
		}

		items, ok := asSlice(res)
		if !ok || len(items) != len(keys) {
			return nil, true, fmt.Errorf("%w: wildcards %v, got %T", ErrCompositeShape, keys, res)
		}

		out := make(Params, len(keys))
		for i, k := range keys {
			out[i] = Param{Key: k, Value: items[i]}
		}
		return out, true, nil
	}

	return nil, false, nil
}

func (r *Resolver) resolveKey(ctx context.Context, explicit map[string]explicitBinding, implicit []implicitRule, key, value string) (any, error) {
	if b, ok := explicit[key]; ok {
		call, err := r.bindingCallable(ctx, b.binder, value)
		if err != nil {
			return nil, err
		}
		return r.invoke(ctx, KindExplicit, key, call, b.onError)
	}

	for _, rule := range implicit {
		identifier := rule.namespace + r.separator + rule.prefix + capitalize(key) + rule.suffix
		if !r.factory.Exists(identifier) {
			continue
		}

		instance, err := r.factory.Create(ctx, identifier)
		if err != nil {
			return nil, err
		}

		var call callable
		if rule.method != "" {
			call = methodCallable(instance, rule.method, value)
		} else if call, err = defaultLookup(identifier, instance, value); err != nil {
			return nil, err
		}

		return r.invoke(ctx, KindImplicit, key, call, rule.onError)
	}

	return value, nil
}

// bindingCallable resolves an explicit binder for a single wildcard value.
func (r *Resolver) bindingCallable(ctx context.Context, binder Binder, value string) (callable, error) {
	switch b := binder.(type) {
	case Func:
		if b == nil {
			break
		}
		return func(ctx context.Context) (any, error) {
			return b(ctx, value)
		}, nil
	case ByName:
		instance, err := r.instance(ctx, b.Identifier)
		if err != nil {
			return nil, err
		}
		return defaultLookup(b.Identifier, instance, value)
	case ByMethod:
		instance, err := r.instance(ctx, b.Identifier)
		if err != nil {
			return nil, err
		}
		return methodCallable(instance, b.Method, value), nil
	}
	return nil, fmt.Errorf("%w: invalid binder value, expected callable or string, got %T", ErrInvalidConfiguration, binder)
}

// compositeCallable resolves a composite binder for the ordered wildcard values.
func (r *Resolver) compositeCallable(ctx context.Context, binder Binder, values []string) (callable, error) {
	switch b := binder.(type) {
	case CompositeFunc:
		if b == nil {
			break
		}
		return func(ctx context.Context) (any, error) {
			return b(ctx, values...)
		}, nil
	case ByMethod:
		instance, err := r.instance(ctx, b.Identifier)
		if err != nil {
			return nil, err
		}
		return methodCallable(instance, b.Method, values...), nil
	}
	return nil, fmt.Errorf("%w: invalid binder value, expected callable or string, got %T", ErrInvalidConfiguration, binder)
}

func (r *Resolver) instance(ctx context.Context, identifier string) (any, error) {
	if !r.factory.Exists(identifier) {
		// A binder naming an unregistered entity is a setup mistake, not a missing row.
		return nil, fmt.Errorf("%w: %w: model not found: [%s]", ErrInvalidConfiguration, ErrEntityNotFound, identifier)
	}
	return r.factory.Create(ctx, identifier)
}

// invoke runs call and routes its failure through onError.
// A handler result replaces the value as-is; a handler error propagates.
func (r *Resolver) invoke(ctx context.Context, kind, key string, call callable, onError ErrorHandler) (any, error) {
	start := time.Now()
	v, err := call(ctx)
	if err == nil {
		r.metrics.observe(kind, OutcomeResolved, time.Since(start))
		r.logger.DebugContext(ctx, "route binding resolved",
			slog.String("kind", kind),
			slog.String("key", key),
		)
		return v, nil
	}

	if onError == nil {
		r.metrics.observe(kind, OutcomeFailed, time.Since(start))
		return nil, err
	}

	v, herr := onError(ctx, err)
	if herr != nil {
		r.metrics.observe(kind, OutcomeFailed, time.Since(start))
		return nil, herr
	}

	r.metrics.observe(kind, OutcomeRecovered, time.Since(start))
	r.logger.WarnContext(ctx, "route binding recovered by error handler",
		slog.String("kind", kind),
		slog.String("key", key),
		slog.Any("error", err),
	)
	return v, nil
}

// Explicit returns the keys with an explicit binding, sorted.
func (r *Resolver) Explicit() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.explicit))
}

// Implicit returns the number of implicit rules.
func (r *Resolver) Implicit() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.implicit)
}

// Composite returns the key lists of the composite bindings in registration order.
func (r *Resolver) Composite() [][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([][]string, len(r.composite))
	for i, b := range r.composite {
		out[i] = slices.Clone(b.keys)
	}
	return out
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}

func keyList(keys []string) string {
	return fmt.Sprint(keys)
}
