package db

import "time"

// Config holds PostgreSQL connection parameters, populated from the environment.
type Config struct {
	ConnectionString string `env:"DATABASE_URL,required"`

	MigrationsTable string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Attempt n waits n*RetryInterval before the next try.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`

	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`
}
