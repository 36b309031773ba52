package service

import (
	"hedge_bot/internal/engine"
	"hedge_bot/internal/modules/config"
	gwsvc "hedge_bot/internal/modules/gateway/service"
	"hedge_bot/internal/modules/history"
	"hedge_bot/internal/modules/indicator"
	"hedge_bot/internal/modules/metrics"
	"hedge_bot/internal/notify"

	"github.com/shopspring/decimal"
)

// NewEngine assembles the trading engine from the runtime modules. The
// confirmation policy rides on the same notifier the engine reports through.
func NewEngine(
	cfg *config.Config,
	gw *gwsvc.Client,
	hist *history.Store,
	prov *indicator.Provider,
	tg *notify.Telegram,
	m *metrics.Metrics,
) *engine.Engine {
	policy := notify.NewConfirmPolicy(cfg, tg)
	return engine.New(engineConfig(cfg), gw, hist, prov, tg, policy, m)
}

func engineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		Symbol:     cfg.Symbol,
		QuoteAsset: cfg.QuoteAsset,

		StopLossPct:    decimal.NewFromFloat(cfg.StopLossPct),
		TakeProfitPct:  decimal.NewFromFloat(cfg.TakeProfitPct),
		MaxDrawdownPct: decimal.NewFromFloat(cfg.MaxDrawdownPct),
		Leverage:       decimal.NewFromInt(int64(cfg.Leverage)),

		SpotFeeFallback:    decimal.NewFromFloat(cfg.SpotFeeFallback),
		FuturesFeeFallback: decimal.NewFromFloat(cfg.FuturesFeeFallback),

		BaseProbability: cfg.BaseProbability,
		ProbWindow:      cfg.ProbWindow,
		ProbAlpha:       cfg.ProbAlpha,
		DampWindow:      cfg.DampWindow,
		DampThreshold:   cfg.DampThreshold,
		DampPenalty:     cfg.DampPenalty,
		AcceptLow:       cfg.AcceptLow,
		AcceptHigh:      cfg.AcceptHigh,

		TickInterval: cfg.TickInterval,
		LockTimeout:  cfg.LockTimeout,
		MinCandles:   cfg.MinCandles,
		CandleWindow: cfg.CandleWindow,
	}
}
