// Package redis opens go-redis clients with pooling defaults, startup retries,
// a health check and a shutdown hook.
//
//	client, err := redis.OpenConfig(ctx, cfg) // cfg parsed from REDIS_* env vars
//	if err != nil {
//	    return err
//	}
//	app := routebind.New(
//	    routebind.WithHealthChecks(health.Checks{"redis": redis.Healthcheck(client)}),
//	    routebind.WithShutdownHook(redis.Shutdown(client)),
//	)
//
// Open accepts redis:// and rediss:// URLs only. Failures are reported with
// ErrEmptyConnectionURL, ErrFailedToParseURL, ErrConnectionFailed and
// ErrHealthcheckFailed, joined with the underlying error.
package redis
