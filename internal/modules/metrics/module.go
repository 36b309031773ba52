package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"hedge_bot/internal/modules/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			func() *prometheus.Registry { return prometheus.NewRegistry() },
			func(reg *prometheus.Registry) *Metrics { return New(reg) },
		),
		fx.Invoke(RunHTTP),
	)
}

// RunHTTP serves /metrics on the admin port.
func RunHTTP(lc fx.Lifecycle, cfg *config.Config, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Service.AdminPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
