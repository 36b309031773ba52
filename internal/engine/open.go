package engine

import (
	"context"
	"fmt"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"
)

// OpenRequest describes one leg to be opened.
type OpenRequest struct {
	Symbol     string
	EntryPrice decimal.Decimal
	Amount     decimal.Decimal
	Direction  models.Direction
	Class      models.InstrumentClass
	Mode       models.Mode
	Allocation models.Allocation
}

// OpenPosition sizes, funds and registers a single position. Insufficient
// balance is a logged no-op returning ErrInsufficientBalance; a failed live
// order rolls the debit back and aborts.
func (e *Engine) OpenPosition(ctx context.Context, req OpenRequest) (*models.Position, error) {
	span := opentracing.GlobalTracer().StartSpan("open_position")
	defer span.Finish()

	if err := e.acquire(ctx); err != nil {
		return nil, err
	}
	defer e.release()

	return e.openLocked(ctx, req)
}

// openLocked assumes the cycle guard is held. Settlement reuses it for
// reallocation without re-acquiring.
func (e *Engine) openLocked(ctx context.Context, req OpenRequest) (*models.Position, error) {
	if req.EntryPrice.Sign() <= 0 || req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("open %s: non-positive entry price or amount", req.Symbol)
	}

	feeRate := e.feeRate(ctx, req.Symbol, req.Class)
	notional := req.EntryPrice.Mul(req.Amount)
	entryFee := notional.Mul(feeRate)

	leverage := decimal.NewFromInt(1)
	principal := notional
	if req.Class == models.ClassFutures {
		leverage = e.cfg.Leverage
		if leverage.LessThan(decimal.NewFromInt(1)) {
			leverage = decimal.NewFromInt(1)
		}
		principal = safeDiv(notional, leverage, notional)
	}
	totalCost := principal.Add(entryFee)

	available := e.ledger.balanceFor(req.Mode)
	if totalCost.GreaterThan(available) {
		logger.Info("[OPEN] %s %s rejected: cost %s exceeds %s balance %s",
			req.Symbol, req.Direction, totalCost, req.Mode, available)
		e.sendf("⛔ %s %s skipped: insufficient %s balance (need %s, have %s)",
			req.Symbol, req.Direction, req.Mode, totalCost.StringFixed(8), available.StringFixed(8))
		return nil, ErrInsufficientBalance
	}

	e.ledger.debit(req.Mode, totalCost)
	if req.Class == models.ClassSpot {
		e.ledger.Wallet = e.ledger.Wallet.Sub(req.Amount)
	}

	pos := &models.Position{
		ID:         uuid.NewString(),
		Symbol:     req.Symbol,
		EntryPrice: req.EntryPrice,
		Amount:     req.Amount,
		Direction:  req.Direction,
		Class:      req.Class,
		Mode:       req.Mode,
		Allocation: req.Allocation,
		Leverage:   leverage,
		FeeRate:    feeRate,
		EntryFee:   entryFee,
		LockedCost: totalCost,
		PeakProfit: decimal.Zero,
		PeakPrice:  req.EntryPrice,
		StartTime:  e.now(),
	}
	pos.StopLoss, pos.TakeProfit = exitLevels(req.EntryPrice, req.Direction, e.cfg.StopLossPct, e.cfg.TakeProfitPct)

	if req.Mode == models.ModeReal {
		if _, err := e.gw.SubmitMarketOrder(ctx, pos.EntrySide(), req.Symbol, req.Amount); err != nil {
			// the debit must not survive a rejected order
			e.ledger.credit(req.Mode, totalCost)
			if req.Class == models.ClassSpot {
				e.ledger.Wallet = e.ledger.Wallet.Add(req.Amount)
			}
			logger.Error("[OPEN] %s %s order failed, open aborted: %v", req.Symbol, req.Direction, err)
			return nil, fmt.Errorf("submit market order: %w", err)
		}
	}

	e.positions[pos.ID] = pos

	logger.Info("[OPEN] %s %s %s amount=%s entry=%s sl=%s tp=%s fee=%s alloc=%s",
		req.Symbol, req.Mode, req.Direction, req.Amount, req.EntryPrice,
		pos.StopLoss, pos.TakeProfit, entryFee, req.Allocation)
	e.sendf("📈 OPEN %s %s %s @ %s | SL %s | TP %s | %s leg",
		req.Symbol, req.Direction, req.Amount, req.EntryPrice.StringFixed(4),
		pos.StopLoss.StringFixed(4), pos.TakeProfit.StringFixed(4), req.Allocation)
	if e.metrics != nil {
		e.metrics.Opened(req.Mode, req.Direction)
	}

	return pos, nil
}

// feeRate resolves the taker fee, falling back to the configured defaults
// when the lookup fails. The failure is recovered, not fatal.
func (e *Engine) feeRate(ctx context.Context, symbol string, class models.InstrumentClass) decimal.Decimal {
	rates, err := e.gw.TradeFee(ctx, symbol, class)
	if err == nil && rates.Taker.Sign() > 0 {
		return rates.Taker
	}
	if err != nil {
		logger.Error("[FEE] lookup %s failed, using fallback: %v", symbol, err)
	}
	if class == models.ClassFutures {
		return e.cfg.FuturesFeeFallback
	}
	return e.cfg.SpotFeeFallback
}

// exitLevels derives the fixed stop-loss and take-profit from the entry.
func exitLevels(entry decimal.Decimal, dir models.Direction, slPct, tpPct decimal.Decimal) (sl, tp decimal.Decimal) {
	slDist := pctOf(entry, slPct)
	tpDist := pctOf(entry, tpPct)
	if dir == models.DirectionLong {
		return entry.Sub(slDist), entry.Add(tpDist)
	}
	return entry.Add(slDist), entry.Sub(tpDist)
}
