package postgres

import (
	"context"
	"fmt"

	"hedge_bot/internal/modules/config"
	"hedge_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				pool, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create pool: %w", err)
				}

				err = pool.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(pool), nil
			},
		),
	)
}
