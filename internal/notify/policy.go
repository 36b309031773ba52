package notify

import (
	"context"
	"fmt"
	"time"

	"hedge_bot/internal/models"
	"hedge_bot/internal/modules/config"

	"github.com/shopspring/decimal"
)

// ConfirmPolicy turns a notifier's Confirm into a trade decision: a signal
// inside the accept band still needs a human (or auto) yes before capital
// moves. Trade parameters come from configuration.
type ConfirmPolicy struct {
	n       Notifier
	cfg     *config.Config
	timeout time.Duration
}

func NewConfirmPolicy(cfg *config.Config, n Notifier) *ConfirmPolicy {
	return &ConfirmPolicy{
		n:       n,
		cfg:     cfg,
		timeout: 30 * time.Second,
	}
}

func (p *ConfirmPolicy) ShouldAcceptTrade(ctx context.Context, symbol string, probability float64) bool {
	prompt := fmt.Sprintf("🎯 %s signal, success probability %.2f%%. Open hedge?", symbol, probability)
	return p.n.Confirm(ctx, prompt, p.timeout)
}

func (p *ConfirmPolicy) TradeParams(ctx context.Context) (models.TradeParams, bool) {
	amount := decimal.NewFromFloat(p.cfg.TradeAmount)
	if amount.Sign() <= 0 {
		return models.TradeParams{}, false
	}

	class := models.InstrumentClass(p.cfg.TradeClass)
	if class != models.ClassSpot && class != models.ClassFutures {
		class = models.ClassFutures
	}
	mode := models.Mode(p.cfg.TradeMode)
	if mode != models.ModeReal && mode != models.ModeSimulated {
		mode = models.ModeSimulated
	}

	return models.TradeParams{
		Amount: amount,
		Class:  class,
		Mode:   mode,
	}, true
}
