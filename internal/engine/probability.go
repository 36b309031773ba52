package engine

import (
	"context"
	"math"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"
)

// BaseProbability is the exponentially-weighted win rate over the most
// recent settled trades: weight alpha*(1-alpha)^i for the i-th most recent.
// Falls back to the configured default when no history exists or the store
// errors (recoverable).
func (e *Engine) BaseProbability(ctx context.Context) float64 {
	limit := e.cfg.ProbWindow
	if limit <= 0 {
		limit = 100
	}

	trades, err := e.hist.QueryRecent(ctx, limit)
	if err != nil {
		logger.Error("[PROB] history query failed, using default base: %v", err)
		return e.cfg.BaseProbability
	}
	if len(trades) == 0 {
		return e.cfg.BaseProbability
	}

	alpha := e.cfg.ProbAlpha
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.1
	}

	var sumW, winW float64
	for i, t := range trades {
		w := alpha * math.Pow(1-alpha, float64(i))
		sumW += w
		if t.Result == models.ResultWin {
			winW += w
		}
	}
	if sumW == 0 {
		return e.cfg.BaseProbability
	}
	return winW / sumW * 100
}

// SuccessProbability layers independent indicator adjustments onto the base,
// clamps to [0,100], then applies session dampening. Note the SMA/EMA branch
// is deliberately two-sided while the others leave a neutral gap.
func (e *Engine) SuccessProbability(snap models.IndicatorSnapshot, base float64) float64 {
	p := base

	if snap.RSI < 30 {
		p += 10
	} else if snap.RSI > 70 {
		p -= 10
	}

	if snap.MACDHistogram > 0 {
		p += 5
	} else if snap.MACDHistogram < 0 {
		p -= 5
	}

	if snap.SMA > snap.EMA {
		p += 5
	} else {
		p -= 5
	}

	if snap.StochasticK < 20 && snap.StochasticD < 20 {
		p += 10
	} else if snap.StochasticK > 80 && snap.StochasticD > 80 {
		p -= 10
	}

	// volatility penalty, no symmetric bonus
	if snap.ATR > 0.5 {
		p -= 5
	}

	if snap.Price < snap.BollingerLower {
		p += 5
	} else if snap.Price > snap.BollingerUpper {
		p -= 5
	}

	p = clamp(p, 0, 100)
	return e.dampen(p, base)
}

// dampen accumulates |probability - base| inside a rolling wall-clock window
// and knocks a flat penalty off once the accumulator crosses the threshold.
// The window restarts whenever it has fully elapsed.
func (e *Engine) dampen(p, base float64) float64 {
	now := e.now()
	if e.dampStart.IsZero() || now.Sub(e.dampStart) >= e.cfg.DampWindow {
		e.dampStart = now
		e.dampAccum = 0
	}

	e.dampAccum += math.Abs(p - base)
	if e.dampAccum > e.cfg.DampThreshold {
		p -= e.cfg.DampPenalty
		p = clamp(p, 0, 100)
	}
	return p
}

// inAcceptBand gates trades to the configured probability corridor,
// inclusive on both ends.
func (e *Engine) inAcceptBand(p float64) bool {
	return p >= e.cfg.AcceptLow && p <= e.cfg.AcceptHigh
}
