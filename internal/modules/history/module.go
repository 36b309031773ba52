package history

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("history",
		fx.Provide(
			NewStore,
		),
		fx.Invoke(func(lc fx.Lifecycle, s *Store) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return s.Migrate(ctx)
				},
			})
		}),
	)
}
