package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is implemented by *pgxpool.Pool and pgx.Tx.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn in a transaction. The transaction is committed when fn returns nil
// and rolled back otherwise, including when fn panics.
func WithTx(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, db, fn)
}
