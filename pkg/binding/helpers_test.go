package binding_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/routebind/pkg/binding"
)

var errBoom = errors.New("boom")

type ctxKey struct{}

// model is an in-memory binding.Model. Rows are keyed by route key value.
type model struct {
	name     string
	routeKey string
	rows     map[string]string
	queries  *atomic.Int32
}

func newModel(name, routeKey string, rows ...string) *model {
	m := &model{name: name, routeKey: routeKey, rows: make(map[string]string), queries: &atomic.Int32{}}
	for _, r := range rows {
		m.rows[r] = fmt.Sprintf("%s(%s=%s)", name, routeKey, r)
	}
	return m
}

func (m *model) RouteKeyName() string { return m.routeKey }

func (m *model) Where(field, value string) binding.Query {
	return query{model: m, field: field, value: value}
}

type query struct {
	model *model
	field string
	value string
}

func (q query) FirstOrFail(ctx context.Context) (any, error) {
	q.model.queries.Add(1)
	if q.field != q.model.routeKey {
		return nil, fmt.Errorf("unexpected field %q", q.field)
	}
	row, ok := q.model.rows[q.value]
	if !ok {
		return nil, binding.NotFound(q.model.name, q.field, q.value)
	}
	return row, nil
}

// repository exposes "Class@method" style binders.
type repository struct{}

func (repository) FindForRoute(value string) string {
	return "found:" + value
}

func (repository) FindWithContext(ctx context.Context, value string) (string, error) {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v + ":" + value, nil
	}
	return "", errors.New("context value missing")
}

func (repository) Fail(string) (any, error) {
	return nil, errBoom
}

func (repository) FindPair(parent, child string) ([]any, error) {
	return []any{"parent:" + parent, "child:" + child}, nil
}

func (repository) FindAll(values ...string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(v)
	}
	return out
}

func (repository) FindOne(parent, child string) string {
	return parent + "/" + child
}

func (repository) FailPair(string, string) ([]any, error) {
	return nil, errBoom
}

// newTestRegistry registers the fixtures used across resolver tests.
func newTestRegistry(t *testing.T, entities map[string]any) *binding.Registry {
	t.Helper()

	r := binding.NewRegistry()
	for id, instance := range entities {
		require.NoError(t, r.Register(id, func(context.Context) (any, error) {
			return instance, nil
		}))
	}
	return r
}

func recoverWith(v any) binding.ErrorHandler {
	return func(context.Context, error) (any, error) {
		return v, nil
	}
}

func resolve(t *testing.T, r *binding.Resolver, pairs ...string) (binding.Params, error) {
	t.Helper()
	return r.ResolveBindings(context.Background(), binding.NewParams(pairs...))
}
