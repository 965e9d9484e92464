package main

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/routebind/pkg/db"
	"github.com/dmitrymomot/routebind/pkg/logger"
	"github.com/dmitrymomot/routebind/pkg/redis"
)

// config is the serve command configuration, read from the environment.
type config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	BindingsFile    string        `env:"BINDINGS_FILE"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"1m"`
	CachePrefix     string        `env:"CACHE_PREFIX" envDefault:"routebind:"`
	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`

	Log   logger.Config
	DB    db.Config
	Redis redis.Config
}

func loadConfig() (config, error) {
	return env.ParseAs[config]()
}
