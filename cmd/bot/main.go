package main

import (
	"context"
	"log"

	"hedge_bot/internal/modules/bootstrap"
	"hedge_bot/internal/modules/candles"
	"hedge_bot/internal/modules/config"
	"hedge_bot/internal/modules/feed"
	"hedge_bot/internal/modules/gateway"
	"hedge_bot/internal/modules/health"
	"hedge_bot/internal/modules/history"
	"hedge_bot/internal/modules/indicator"
	"hedge_bot/internal/modules/metrics"
	"hedge_bot/internal/modules/postgres"
	"hedge_bot/pkg/logger"
	"hedge_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("hedge_bot")
	tracing.SetServiceName("hedge_bot")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		gateway.Module(),
		feed.Module(),
		candles.Module(),
		history.Module(),
		indicator.Module(),
		metrics.Module(),
		health.Module(),
		bootstrap.Module(),
		fx.Invoke(initTracing),
	)

	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closer, err := tracing.InitTracer(tracing.Config{Host: cfg.Jaeger.Host, Port: cfg.Jaeger.Port})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}
