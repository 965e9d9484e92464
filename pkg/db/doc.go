// Package db provides PostgreSQL storage for route bindings.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] for connection pooling and
// [github.com/pressly/goose/v3] for migrations, and exposes tables as
// [binding.Model] values so the resolver's default lookup can fetch rows by
// their route key.
//
// # Configuration
//
// Config is populated from environment variables:
//
//	DATABASE_URL                - PostgreSQL connection URL (required)
//	DATABASE_MIGRATIONS_TABLE   - Migrations table name (default: schema_migrations)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 2s)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations, cfg.MigrationsTable, log); err != nil {
//	    return err
//	}
//
//	registry := binding.NewRegistry()
//	err = db.RegisterTables(registry, pool, map[string]db.TableSpec{
//	    `App\Models\User`: {Name: "users", Options: []db.TableOption{db.WithRouteKey("username")}},
//	})
//
// # Tables
//
// A Table selects a single row where a column equals the route value.
// Identifiers are always quoted; values are passed as query arguments.
// Scopes and soft deletes add static conditions, and WithCache puts a
// [cache.Loader] in front of the query so concurrent lookups of the same key
// share one round trip. Missing rows are reported with [binding.NotFound].
//
// # Health checks
//
// Healthcheck returns a function compatible with [health.CheckFunc]:
//
//	checks := health.Checks{"postgres": db.Healthcheck(pool)}
//
// # Transactions
//
// WithTx runs fn in a transaction that is committed when fn returns nil and
// rolled back otherwise.
package db
