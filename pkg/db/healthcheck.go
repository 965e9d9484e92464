package db

import (
	"context"
	"errors"
)

// Pinger is implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a health.CheckFunc compatible closure that pings the database.
func Healthcheck(p Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if p == nil {
			return ErrHealthcheckFailed
		}
		if err := p.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
