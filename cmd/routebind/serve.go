package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/routebind"
	"github.com/dmitrymomot/routebind/middlewares"
	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/cache"
	"github.com/dmitrymomot/routebind/pkg/db"
	"github.com/dmitrymomot/routebind/pkg/logger"
	"github.com/dmitrymomot/routebind/pkg/redis"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrations() (fs.FS, error) {
	return fs.Sub(migrationFiles, "migrations")
}

func serveCmd() *cobra.Command {
	var bindingsFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if bindingsFile != "" {
				cfg.BindingsFile = bindingsFile
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&bindingsFile, "bindings", "b", "", "route bindings YAML file (overrides BINDINGS_FILE)")
	return cmd
}

func serve(ctx context.Context, cfg config) (err error) {
	log := logger.FromConfig(cfg.Log, middlewares.RequestIDExtractor())

	bindings, err := loadBindings(cfg.BindingsFile)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()

	runOpts := []routebind.RunOption{
		routebind.WithContext(ctx),
		routebind.Logger(log),
		routebind.ShutdownTimeout(cfg.ShutdownTimeout),
		routebind.ShutdownHook(db.Shutdown(pool)),
	}
	healthOpts := []routebind.HealthOption{
		routebind.WithReadinessCheck("postgres", db.Healthcheck(pool)),
	}

	if cfg.AutoMigrate {
		fsys, err := migrations()
		if err != nil {
			return err
		}
		runOpts = append(runOpts, routebind.StartupHook(func(ctx context.Context) error {
			return db.Migrate(ctx, pool, fsys, cfg.DB.MigrationsTable, log)
		}))
	}

	rc, err := openRowCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = rc.shutdown(context.WithoutCancel(ctx))
		}
	}()
	runOpts = append(runOpts, routebind.ShutdownHook(rc.shutdown))
	if rc.ready != nil {
		healthOpts = append(healthOpts, routebind.WithReadinessCheck(rc.name, rc.ready))
	}

	registry := binding.NewRegistry()
	if err := registerModels(registry, pool, rc.rows, cfg.CacheTTL); err != nil {
		return err
	}

	resolver, err := newResolver(registry, bindings,
		binding.WithLogger(log.With(slog.String("component", "binding"))),
		binding.WithMetrics(binding.NewMetrics(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		return err
	}

	app := routebind.New(
		routebind.WithCustomLogger(log),
		routebind.WithResolver(resolver),
		routebind.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Timeout(cfg.RequestTimeout),
		),
		routebind.WithHandlers(&blogHandler{}),
		routebind.WithMount("/metrics", promhttp.Handler()),
		routebind.WithHealthChecks(healthOpts...),
	)

	runOpts = append(runOpts, routebind.ShutdownHook(func(context.Context) error {
		logger.Flush(2 * time.Second)
		return nil
	}))

	log.Info("route bindings loaded",
		slog.Int("explicit", len(resolver.Explicit())),
		slog.Int("implicit", resolver.Implicit()),
		slog.Int("composite", len(resolver.Composite())),
	)

	return app.Run(cfg.Addr, runOpts...)
}

// rowCache is the lookup cache shared by the model tables.
type rowCache struct {
	rows     cache.Cache[db.Row]
	name     string
	ready    func(context.Context) error
	shutdown func(context.Context) error
}

// openRowCache uses Redis when REDIS_URL is set and an in-process cache otherwise.
func openRowCache(ctx context.Context, cfg config, log *slog.Logger) (*rowCache, error) {
	if !cfg.Redis.Enabled() {
		mem := cache.NewMemory[db.Row](
			cache.WithDefaultTTL(cfg.CacheTTL),
			cache.WithMaxEntries(cfg.CacheMaxEntries),
		)
		return &rowCache{
			rows: mem,
			name: "memory",
			shutdown: func(context.Context) error {
				return mem.Close()
			},
		}, nil
	}

	client, err := redis.OpenConfig(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Info("using redis lookup cache", slog.String("prefix", cfg.CachePrefix))

	return &rowCache{
		rows: cache.NewRedis[db.Row](client, cache.JSON[db.Row]{},
			cache.WithPrefix(cfg.CachePrefix),
			cache.WithDefaultTTL(cfg.CacheTTL),
		),
		name:     "redis",
		ready:    redis.Healthcheck(client),
		shutdown: redis.Shutdown(client),
	}, nil
}
