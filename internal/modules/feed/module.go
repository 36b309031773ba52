package feed

import (
	"context"

	"hedge_bot/internal/modules/feed/service"
	"hedge_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			service.NewClient,
		),
		// reconnect exhaustion on the live feed is fatal: stop the app
		fx.Invoke(func(c *service.Client, sd fx.Shutdowner) {
			c.OnFatal = func(err error) {
				logger.Error("[FEED] fatal, shutting down: %v", err)
				_ = sd.Shutdown()
			}
		}),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("[FEED] stopped")
					return nil
				},
			})
		}),
	)
}
