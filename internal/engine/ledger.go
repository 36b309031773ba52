package engine

import (
	"context"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/shopspring/decimal"
)

// Ledger tracks the three balances and the realized PnL counters. It is a
// plain value owned by the engine and only touched under the cycle guard.
type Ledger struct {
	Real      decimal.Decimal
	Simulated decimal.Decimal
	Wallet    decimal.Decimal // spot quantity ledger, in base asset units

	PnlReal      decimal.Decimal
	PnlSimulated decimal.Decimal
	PnlSpot      decimal.Decimal

	seeded bool
}

func (l *Ledger) balanceFor(mode models.Mode) decimal.Decimal {
	if mode == models.ModeReal {
		return l.Real
	}
	return l.Simulated
}

func (l *Ledger) debit(mode models.Mode, amount decimal.Decimal) {
	if mode == models.ModeReal {
		l.Real = l.Real.Sub(amount)
		return
	}
	l.Simulated = l.Simulated.Sub(amount)
}

func (l *Ledger) credit(mode models.Mode, amount decimal.Decimal) {
	if mode == models.ModeReal {
		l.Real = l.Real.Add(amount)
		return
	}
	l.Simulated = l.Simulated.Add(amount)
}

func (l *Ledger) addPnl(p *models.Position, net decimal.Decimal) {
	switch {
	case p.Class == models.ClassSpot:
		l.PnlSpot = l.PnlSpot.Add(net)
	case p.Mode == models.ModeReal:
		l.PnlReal = l.PnlReal.Add(net)
	default:
		l.PnlSimulated = l.PnlSimulated.Add(net)
	}
}

// Seeded reports whether the one-time initialization latch has fired.
func (l *Ledger) Seeded() bool { return l.seeded }

// Seed initializes both balances from the first observed real balance.
// Subsequent calls are no-ops: the simulated ledger evolves independently
// from that point on.
func (l *Ledger) Seed(balance decimal.Decimal) {
	if l.seeded {
		return
	}
	l.Real = balance
	l.Simulated = balance
	l.seeded = true
}

// SeedLedger pulls the quote-asset balance through the gateway and latches
// the ledgers on first success.
func (e *Engine) SeedLedger(ctx context.Context) error {
	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	if e.ledger.seeded {
		return nil
	}

	bal, err := e.gw.Balance(ctx, e.cfg.QuoteAsset)
	if err != nil {
		logger.Error("[LEDGER] seed balance fetch failed: %v", err)
		return err
	}
	e.ledger.Seed(bal)
	logger.Info("[LEDGER] seeded real=%s simulated=%s", e.ledger.Real, e.ledger.Simulated)
	return nil
}

// Snapshot returns a copy of the ledger for reporting.
func (e *Engine) Snapshot(ctx context.Context) (Ledger, error) {
	if err := e.acquire(ctx); err != nil {
		return Ledger{}, err
	}
	defer e.release()
	return e.ledger, nil
}

// assertSolvent is the post-settlement invariant: a negative balance means
// the arithmetic is broken and the process must not keep trading.
func (e *Engine) assertSolvent(mode models.Mode) {
	if e.ledger.balanceFor(mode).Sign() < 0 {
		logger.Fatal("[LEDGER] invariant violation: %s balance is negative (%s)",
			mode, e.ledger.balanceFor(mode))
	}
}
