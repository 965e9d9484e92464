package redis

import "time"

// Config is the Redis connection configuration, populated from the environment.
type Config struct {
	URL           string        `env:"REDIS_URL"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleTime   time.Duration `env:"REDIS_MAX_IDLE_TIME" envDefault:"10m"`
	MaxActiveTime time.Duration `env:"REDIS_MAX_ACTIVE_TIME" envDefault:"30m"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}

// Options converts the configuration into connection options.
// Zero values keep the package defaults.
func (c Config) Options() []Option {
	var opts []Option
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	if c.MinIdleConns > 0 {
		opts = append(opts, WithMinIdleConns(c.MinIdleConns))
	}
	if c.MaxIdleTime > 0 {
		opts = append(opts, WithMaxIdleTime(c.MaxIdleTime))
	}
	if c.MaxActiveTime > 0 {
		opts = append(opts, WithMaxActiveTime(c.MaxActiveTime))
	}
	if c.RetryAttempts > 0 {
		opts = append(opts, WithRetry(c.RetryAttempts, c.RetryInterval))
	}
	if c.ReadTimeout > 0 {
		opts = append(opts, WithReadTimeout(c.ReadTimeout))
	}
	if c.WriteTimeout > 0 {
		opts = append(opts, WithWriteTimeout(c.WriteTimeout))
	}
	if c.DialTimeout > 0 {
		opts = append(opts, WithDialTimeout(c.DialTimeout))
	}
	return opts
}
