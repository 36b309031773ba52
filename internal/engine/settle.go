package engine

import (
	"context"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"
)

// ClosePosition settles one open position at the given exit price.
func (e *Engine) ClosePosition(ctx context.Context, id string, exitPrice decimal.Decimal) (models.SettledTrade, error) {
	span := opentracing.GlobalTracer().StartSpan("close_position")
	defer span.Finish()

	if err := e.acquire(ctx); err != nil {
		return models.SettledTrade{}, err
	}
	defer e.release()

	p, ok := e.positions[id]
	if !ok {
		return models.SettledTrade{}, ErrPositionNotFound
	}
	return e.settleLocked(ctx, p, exitPrice, models.ExitManual), nil
}

// settleLocked closes a position: exit fee, net PnL, loss reallocation,
// ledger updates, durable record, removal from the active set. External
// failures past the ledger commit are logged and swallowed so a flaky write
// can't leave capital locked in a phantom position.
func (e *Engine) settleLocked(ctx context.Context, p *models.Position, exitPrice decimal.Decimal, reason models.ExitReason) models.SettledTrade {
	feeRate := e.feeRate(ctx, p.Symbol, p.Class)
	exitFee := exitPrice.Mul(p.Amount).Mul(feeRate)

	grossPnl := signedMove(p.Direction, p.EntryPrice, exitPrice).Mul(p.Amount).Mul(p.Leverage)
	netPnl := grossPnl.Sub(p.EntryFee).Sub(exitFee)

	// real mode flattens the exposure on the exchange before anything else
	if p.Mode == models.ModeReal {
		exitSide := models.SideSell
		if p.Direction == models.DirectionShort {
			exitSide = models.SideBuy
		}
		if _, err := e.gw.SubmitMarketOrder(ctx, exitSide, p.Symbol, p.Amount); err != nil {
			logger.Error("[CLOSE] %s exit order failed, settling books anyway: %v", p.Symbol, err)
		}
	}

	// a losing unfavorable leg redeploys its capital once into a fresh
	// favorable position on the opposite side
	if netPnl.Sign() < 0 && p.Allocation == models.AllocationUnfavorable && !p.IsReallocated {
		_, err := e.openLocked(ctx, OpenRequest{
			Symbol:     p.Symbol,
			EntryPrice: exitPrice,
			Amount:     p.Amount,
			Direction:  p.Direction.Opposite(),
			Class:      p.Class,
			Mode:       p.Mode,
			Allocation: models.AllocationFavorable,
		})
		if err != nil {
			logger.Error("[REALLOC] %s failed: %v", p.Symbol, err)
		} else {
			logger.Info("[REALLOC] %s loss redeployed as %s favorable", p.Symbol, p.Direction.Opposite())
			e.sendf("♻️ %s unfavorable loss reallocated to %s", p.Symbol, p.Direction.Opposite())
		}
		p.IsReallocated = true
	}

	// the close returns exactly what the open locked, plus the net result
	e.ledger.credit(p.Mode, p.LockedCost.Add(netPnl))
	if p.Class == models.ClassSpot {
		e.ledger.Wallet = e.ledger.Wallet.Add(p.Amount)
	}
	e.ledger.addPnl(p, netPnl)
	e.assertSolvent(p.Mode)

	result := models.ResultWin
	if netPnl.Sign() < 0 {
		result = models.ResultLoss
	}

	trade := models.SettledTrade{
		ID:         uuid.NewString(),
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Direction:  p.Direction,
		Class:      p.Class,
		Mode:       p.Mode,
		Allocation: p.Allocation,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Amount:     p.Amount,
		Leverage:   p.Leverage,
		EntryFee:   p.EntryFee,
		ExitFee:    exitFee,
		GrossPnl:   grossPnl,
		NetPnl:     netPnl,
		Result:     result,
		Reason:     reason,
		OpenedAt:   p.StartTime,
		ClosedAt:   e.now(),
	}

	// best-effort durable record; the ledger has already committed
	if err := e.hist.RecordSettledTrade(ctx, trade); err != nil {
		logger.Error("[CLOSE] history write failed for %s: %v", p.ID, err)
	}

	delete(e.positions, p.ID)

	logger.Info("[CLOSE] %s %s %s exit=%s net=%s reason=%s result=%s",
		p.Symbol, p.Mode, p.Direction, exitPrice, netPnl, reason, result)
	e.sendf("💰 CLOSE %s %s @ %s | net %s | %s (%s)\nreal=%s sim=%s | pnl real=%s sim=%s spot=%s",
		p.Symbol, p.Direction, exitPrice.StringFixed(4), netPnl.StringFixed(8), result, reason,
		e.ledger.Real.StringFixed(4), e.ledger.Simulated.StringFixed(4),
		e.ledger.PnlReal.StringFixed(4), e.ledger.PnlSimulated.StringFixed(4), e.ledger.PnlSpot.StringFixed(4))
	if e.metrics != nil {
		e.metrics.Settled(reason, result)
		eq, _ := e.ledger.Simulated.Float64()
		e.metrics.Equity(models.ModeSimulated, eq)
		eq, _ = e.ledger.Real.Float64()
		e.metrics.Equity(models.ModeReal, eq)
	}

	if len(e.positions) == 0 {
		logger.Info("[CYCLE] active set empty, ready for a new signal")
	}

	return trade
}
