package main

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/routebind/pkg/db"
	"github.com/dmitrymomot/routebind/pkg/logger"
)

func migrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.ParseAs[db.Config]()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := cmd.Context()
			pool, err := db.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			fsys, err := migrations()
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx, pool, fsys, cfg.MigrationsTable, logger.New()); err != nil {
				return err
			}

			if seed {
				return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
					return seedDemo(ctx, tx)
				})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert demo users, posts and comments")
	return cmd
}

// seedDemo inserts a small data set. Rows that already exist are left alone.
func seedDemo(ctx context.Context, tx pgx.Tx) error {
	statements := []string{
		`INSERT INTO users (username, name) VALUES ('alice', 'Alice'), ('bob', 'Bob')
			ON CONFLICT (username) DO NOTHING`,
		`INSERT INTO posts (user_id, slug, title, body)
			SELECT id, 'hello-world', 'Hello, world', 'First post.' FROM users WHERE username = 'alice'
			ON CONFLICT (slug) DO NOTHING`,
		`INSERT INTO comments (post_id, user_id, body)
			SELECT p.id, u.id, 'Nice post!' FROM posts p, users u
			WHERE p.slug = 'hello-world' AND u.username = 'bob'
			AND NOT EXISTS (SELECT 1 FROM comments c WHERE c.post_id = p.id)`,
	}
	for _, sql := range statements {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}
