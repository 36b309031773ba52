package engine

import (
	"context"
	"time"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/shopspring/decimal"
)

// HandleCandle is the signal path: every closed candle extends the window,
// re-evaluates open positions, and, only when the active set is empty,
// solicits a new trade through the probability gate and the decision policy.
func (e *Engine) HandleCandle(ctx context.Context, candle models.Candle) {
	e.trackCandle(candle)

	open, err := e.OpenCount(ctx)
	if err != nil {
		logger.Error("[CYCLE] %v", err)
		return
	}
	if open > 0 {
		e.MonitorPass(ctx)
		return
	}

	if e.indicators == nil || len(e.window) < e.cfg.MinCandles {
		// not enough history for the indicator windows: no decision this cycle
		return
	}

	snap := e.indicators.Snapshot(e.window)
	base := e.BaseProbability(ctx)
	prob := e.SuccessProbability(snap, base)

	if !e.inAcceptBand(prob) {
		logger.Info("[SIGNAL] %s rejected: probability %.2f outside [%.0f, %.0f] (base %.2f)",
			candle.Symbol, prob, e.cfg.AcceptLow, e.cfg.AcceptHigh, base)
		if e.metrics != nil {
			e.metrics.Decision(false)
		}
		return
	}

	if e.policy == nil || !e.policy.ShouldAcceptTrade(ctx, candle.Symbol, prob) {
		logger.Info("[SIGNAL] %s declined by policy at probability %.2f", candle.Symbol, prob)
		if e.metrics != nil {
			e.metrics.Decision(false)
		}
		return
	}

	params, ok := e.policy.TradeParams(ctx)
	if !ok {
		logger.Info("[SIGNAL] %s accepted but no trade parameters provided", candle.Symbol)
		return
	}
	if e.metrics != nil {
		e.metrics.Decision(true)
	}

	// bullish snapshot leans long, bearish leans short
	direction := models.DirectionLong
	if snap.MACDHistogram < 0 {
		direction = models.DirectionShort
	}

	entry := decimal.NewFromFloat(candle.Close)
	logger.Info("[SIGNAL] %s accepted: probability %.2f, opening %s hedge", candle.Symbol, prob, direction)
	e.sendf("✅ Signal %s p=%.2f: opening %s hedge, amount %s", candle.Symbol, prob, direction, params.Amount)

	if _, err := e.OpenHedge(ctx, entry, params.Amount, direction, params.Class, params.Mode); err != nil {
		logger.Error("[SIGNAL] hedge open failed: %v", err)
	}
}

// WarmWindow preloads historical candles into the rolling window without
// evaluating signals, so the first live candle sees full indicator history.
func (e *Engine) WarmWindow(candles []models.Candle) {
	for _, c := range candles {
		e.trackCandle(c)
	}
}

// trackCandle appends to the rolling window, bounded by CandleWindow.
func (e *Engine) trackCandle(c models.Candle) {
	e.window = append(e.window, c)
	if max := e.cfg.CandleWindow; max > 0 && len(e.window) > max {
		e.window = e.window[len(e.window)-max:]
	}
}

// Run drives the periodic monitor tick until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	interval := e.cfg.TickInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.MonitorPass(ctx)
		}
	}
}
