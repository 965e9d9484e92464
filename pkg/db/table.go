package db

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/cache"
)

// Querier is implemented by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Row is a single record keyed by column name.
type Row = map[string]any

// Table is a binding.Model backed by a PostgreSQL table.
// Lookups select one row where a column equals the route value.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	db       Querier
	name     pgx.Identifier
	routeKey string
	columns  []string
	scopes   []scope
	softDel  string
	loader   *cache.Loader[Row]
}

type scope struct {
	column string
	value  any
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithRouteKey sets the column matched against the route value. Default: "id".
func WithRouteKey(column string) TableOption {
	return func(t *Table) {
		if column != "" {
			t.routeKey = column
		}
	}
}

// WithColumns limits the selected columns. Default: all columns.
func WithColumns(columns ...string) TableOption {
	return func(t *Table) {
		t.columns = append([]string(nil), columns...)
	}
}

// WithScope adds a static "column = value" condition to every lookup.
func WithScope(column string, value any) TableOption {
	return func(t *Table) {
		t.scopes = append(t.scopes, scope{column: column, value: value})
	}
}

// WithSoftDelete hides rows whose column is not NULL.
func WithSoftDelete(column string) TableOption {
	return func(t *Table) {
		t.softDel = column
	}
}

// WithCache caches found rows in c for ttl. Misses are not cached.
//
// Cached rows are JSON-normalized on every path, so a hit and a miss look the same
// whatever the backend: numbers are json.Number and timestamps are RFC 3339 strings.
func WithCache(c cache.Cache[Row], ttl time.Duration) TableOption {
	return func(t *Table) {
		if c != nil {
			t.loader = cache.NewLoader(c, ttl)
		}
	}
}

// NewTable creates a Table for name, which may be schema qualified ("public.users").
//
// Example:
//
//	users := db.NewTable(pool, "users",
//	    db.WithRouteKey("username"),
//	    db.WithColumns("id", "username", "email"),
//	    db.WithSoftDelete("deleted_at"),
//	)
func NewTable(q Querier, name string, opts ...TableOption) *Table {
	t := &Table{
		db:       q,
		name:     pgx.Identifier(strings.Split(name, ".")),
		routeKey: "id",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Name returns the table name as given to NewTable.
func (t *Table) Name() string {
	return strings.Join(t.name, ".")
}

// RouteKeyName implements binding.Model.
func (t *Table) RouteKeyName() string {
	return t.routeKey
}

// Where implements binding.Model.
func (t *Table) Where(field, value string) binding.Query {
	return &Query{table: t, field: field, value: value}
}

// Query is a single-row lookup built by Table.Where.
type Query struct {
	table *Table
	field string
	value string
}

// SQL returns the statement and its arguments. Identifiers are quoted.
func (q *Query) SQL() (string, []any) {
	t := q.table

	cols := "*"
	if len(t.columns) > 0 {
		quoted := make([]string, len(t.columns))
		for i, c := range t.columns {
			quoted[i] = pgx.Identifier{c}.Sanitize()
		}
		cols = strings.Join(quoted, ", ")
	}

	var b strings.Builder
	args := []any{q.value}
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = $1", cols, t.name.Sanitize(), pgx.Identifier{q.field}.Sanitize())
	for _, s := range t.scopes {
		args = append(args, s.value)
		fmt.Fprintf(&b, " AND %s = $%d", pgx.Identifier{s.column}.Sanitize(), len(args))
	}
	if t.softDel != "" {
		fmt.Fprintf(&b, " AND %s IS NULL", pgx.Identifier{t.softDel}.Sanitize())
	}
	b.WriteString(" LIMIT 1")

	return b.String(), args
}

// FirstOrFail implements binding.Query. It returns the row as a Row, or an
// error wrapping binding.ErrEntityNotFound when nothing matches.
func (q *Query) FirstOrFail(ctx context.Context) (any, error) {
	if q.table.loader == nil {
		return q.fetch(ctx)
	}
	return q.table.loader.Get(ctx, q.cacheKey(), func(ctx context.Context) (Row, error) {
		row, err := q.fetch(ctx)
		if err != nil {
			return nil, err
		}
		return normalizeRow(row)
	})
}

func (q *Query) fetch(ctx context.Context) (Row, error) {
	if q.table.db == nil {
		return nil, fmt.Errorf("%w: %s has no database", ErrInvalidTable, q.table.Name())
	}

	sql, args := q.SQL()
	rows, err := q.table.db.Query(ctx, sql, args...)
	if err == nil {
		var row Row
		row, err = pgx.CollectOneRow(rows, pgx.RowToMap)
		if err == nil {
			return row, nil
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, binding.NotFound(q.table.Name(), q.field, q.value)
	}
	return nil, errors.Join(ErrQuery, err)
}

// cacheKey identifies the full statement, so tables sharing a name and a cache
// but differing in scopes, columns or soft delete never share entries.
func (q *Query) cacheKey() string {
	sql, args := q.SQL()

	h := sha256.New()
	h.Write([]byte(sql))
	for _, arg := range args {
		fmt.Fprintf(h, "\x00%T:%v", arg, arg)
	}
	return q.table.Name() + ":" + hex.EncodeToString(h.Sum(nil))
}

// normalizeRow round-trips row through JSON the way byte-oriented caches store it.
func normalizeRow(row Row) (Row, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out Row
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	return out, nil
}

var _ binding.Model = (*Table)(nil)

// TableSpec describes a table registered under an entity identifier.
type TableSpec struct {
	Name    string
	Options []TableOption
}

// RegisterTables registers one Table per spec in registry.
// Each identifier always resolves to the same immutable Table.
//
// Example:
//
//	err := db.RegisterTables(registry, pool, map[string]db.TableSpec{
//	    `App\Models\User`: {Name: "users", Options: []db.TableOption{db.WithRouteKey("username")}},
//	    `App\Models\Post`: {Name: "posts", Options: []db.TableOption{db.WithRouteKey("slug")}},
//	})
func RegisterTables(registry *binding.Registry, q Querier, specs map[string]TableSpec) error {
	var errs []error
	for id, spec := range specs {
		if spec.Name == "" {
			errs = append(errs, fmt.Errorf("%w: [%s] has no table name", ErrInvalidTable, id))
			continue
		}
		table := NewTable(q, spec.Name, spec.Options...)
		if err := binding.Provide(registry, id, func() *Table { return table }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
