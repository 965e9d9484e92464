package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a shutdown hook that closes the pool.
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(context.Context) error {
		if pool != nil {
			pool.Close()
		}
		return nil
	}
}
