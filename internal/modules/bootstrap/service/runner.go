package service

import (
	"context"
	"time"

	"hedge_bot/internal/engine"
	"hedge_bot/internal/models"
	"hedge_bot/internal/modules/candles"
	"hedge_bot/internal/modules/config"
	feedsvc "hedge_bot/internal/modules/feed/service"
	gwsvc "hedge_bot/internal/modules/gateway/service"
	healthsvc "hedge_bot/internal/modules/health/service"
	"hedge_bot/internal/notify"
	"hedge_bot/pkg/logger"
)

// Runner drives the bot: seed the ledger, warm the indicator window from
// stored history, then feed live candles into the engine until the context
// dies.
type Runner struct {
	cfg     *config.Config
	eng     *engine.Engine
	gw      *gwsvc.Client
	feed    *feedsvc.Client
	candles *candles.Store
	tg      *notify.Telegram
	state   *healthsvc.State
}

func NewRunner(
	cfg *config.Config,
	eng *engine.Engine,
	gw *gwsvc.Client,
	feed *feedsvc.Client,
	store *candles.Store,
	tg *notify.Telegram,
	state *healthsvc.State,
) *Runner {
	return &Runner{
		cfg:     cfg,
		eng:     eng,
		gw:      gw,
		feed:    feed,
		candles: store,
		tg:      tg,
		state:   state,
	}
}

// Warmup preloads the engine's candle window from the store, backfilling
// missing ranges over REST first.
func (r *Runner) Warmup(ctx context.Context) error {
	spacing := gwsvc.IntervalDuration(r.cfg.Interval)
	end := time.Now().Truncate(spacing)
	start := end.Add(-spacing * time.Duration(r.cfg.CandleWindow))

	window, err := r.candles.EnsureRange(ctx, r.gw, r.cfg.Symbol, r.cfg.Interval, start, end, spacing)
	if err != nil {
		return err
	}

	r.eng.WarmWindow(window)
	logger.Info("[BOOT] warmup done: %d candles for %s %s", len(window), r.cfg.Symbol, r.cfg.Interval)
	return nil
}

// Run blocks until ctx is done or the live feed closes.
func (r *Runner) Run(ctx context.Context) {
	if err := r.tg.Start(ctx); err != nil {
		logger.Error("[BOOT] telegram polling: %v", err)
	}

	if err := r.eng.SeedLedger(ctx); err != nil {
		logger.Error("[BOOT] ledger seed failed, simulated balance latches on first tick: %v", err)
	}

	if err := r.Warmup(ctx); err != nil {
		logger.Error("[BOOT] warmup failed, window fills from the live feed: %v", err)
	}

	go r.eng.Run(ctx)
	r.state.SetReady(true)

	for candle := range r.feed.StreamCandles(ctx, r.cfg.Symbol, r.cfg.Interval) {
		if err := r.candles.Upsert(ctx, []models.Candle{candle}); err != nil {
			logger.Error("[BOOT] candle persist: %v", err)
		}
		r.eng.HandleCandle(ctx, candle)
	}

	r.state.SetReady(false)
	logger.Info("[BOOT] candle stream closed")
}
