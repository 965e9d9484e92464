package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Pinger is the part of a go-redis client the health check uses.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Healthcheck returns a health.CheckFunc compatible closure that pings the server.
func Healthcheck(client Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
