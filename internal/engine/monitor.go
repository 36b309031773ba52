package engine

import (
	"context"
	"errors"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/shopspring/decimal"
)

// MonitorPass re-evaluates every open position against the exit rules under
// one cycle-guard acquisition. The iteration runs over a stable snapshot so
// positions settled (or opened by reallocation) mid-pass are neither skipped
// nor visited twice.
func (e *Engine) MonitorPass(ctx context.Context) {
	if err := e.acquire(ctx); err != nil {
		if errors.Is(err, ErrEngineBusy) {
			logger.Error("[MONITOR] cycle skipped: %v", err)
			return
		}
		return
	}
	defer e.release()

	snapshot := make([]*models.Position, 0, len(e.positions))
	for _, p := range e.positions {
		snapshot = append(snapshot, p)
	}

	for _, p := range snapshot {
		if _, open := e.positions[p.ID]; !open {
			continue
		}

		price, err := e.gw.LatestPrice(ctx, p.Symbol)
		if err != nil {
			logger.Error("[MONITOR] price fetch %s failed, position %s skipped: %v", p.Symbol, p.ID, err)
			continue
		}
		e.evaluateLocked(ctx, p, price)
	}
}

// evaluateLocked applies the exit rules to one position. Take-profit is
// checked before stop-loss/drawdown so a tick satisfying both settles as a
// win.
func (e *Engine) evaluateLocked(ctx context.Context, p *models.Position, price decimal.Decimal) {
	unrealized := signedMove(p.Direction, p.EntryPrice, price).Mul(p.Amount).Mul(p.Leverage)

	// monotonic ratchet: peak price only moves together with a new peak profit
	if unrealized.GreaterThan(p.PeakProfit) {
		p.PeakProfit = unrealized
		p.PeakPrice = price
	}

	drawdown := pctOf(p.PeakPrice, e.cfg.MaxDrawdownPct)
	var trailingStop decimal.Decimal
	if p.Direction == models.DirectionLong {
		trailingStop = p.PeakPrice.Sub(drawdown)
	} else {
		trailingStop = p.PeakPrice.Add(drawdown)
	}

	if p.Direction == models.DirectionLong {
		if price.GreaterThanOrEqual(p.TakeProfit) {
			e.settleLocked(ctx, p, price, models.ExitTakeProfit)
			return
		}
		if price.LessThanOrEqual(trailingStop) || price.LessThanOrEqual(p.StopLoss) {
			reason := models.ExitTrailingStop
			if price.LessThanOrEqual(p.StopLoss) {
				reason = models.ExitStopLoss
			}
			e.settleLocked(ctx, p, price, reason)
			return
		}
	} else {
		if price.LessThanOrEqual(p.TakeProfit) {
			e.settleLocked(ctx, p, price, models.ExitTakeProfit)
			return
		}
		if price.GreaterThanOrEqual(trailingStop) || price.GreaterThanOrEqual(p.StopLoss) {
			reason := models.ExitTrailingStop
			if price.GreaterThanOrEqual(p.StopLoss) {
				reason = models.ExitStopLoss
			}
			e.settleLocked(ctx, p, price, reason)
			return
		}
	}

	logger.Info("[MONITOR] %s %s holding: price=%s upnl=%s peak=%s trail=%s",
		p.Symbol, p.Direction, price, unrealized, p.PeakProfit, trailingStop)
}

// signedMove is the directional price move: price-entry for longs,
// entry-price for shorts.
func signedMove(dir models.Direction, entry, price decimal.Decimal) decimal.Decimal {
	if dir == models.DirectionLong {
		return price.Sub(entry)
	}
	return entry.Sub(price)
}
