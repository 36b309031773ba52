package bootstrap

import (
	"context"

	"hedge_bot/internal/modules/bootstrap/service"
	"hedge_bot/internal/modules/config"
	"hedge_bot/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(cfg *config.Config) (*notify.Telegram, error) {
				return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
			},
			service.NewEngine,
			service.NewRunner,
		),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, r *service.Runner) {
			runCtx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						r.Run(runCtx)
						_ = sd.Shutdown()
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
