package engine

import (
	"context"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"
)

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
)

// HedgePair is the result of one accepted signal: two legs opened in
// opposite directions from the same entry.
type HedgePair struct {
	Favorable   *models.Position
	Unfavorable *models.Position
}

// OpenHedge splits the requested amount into a favorable leg (2/3, signal
// direction) and an unfavorable leg (1/3, opposite direction) and opens both
// under a single cycle-guard acquisition. A failed favorable leg aborts the
// pair; a failed unfavorable leg leaves the favorable one standing.
func (e *Engine) OpenHedge(
	ctx context.Context,
	entryPrice, amount decimal.Decimal,
	direction models.Direction,
	class models.InstrumentClass,
	mode models.Mode,
) (HedgePair, error) {
	span := opentracing.GlobalTracer().StartSpan("open_hedge")
	defer span.Finish()

	if err := e.acquire(ctx); err != nil {
		return HedgePair{}, err
	}
	defer e.release()

	favAmount := amount.Mul(two).Div(three)
	unfavAmount := amount.Sub(favAmount)

	fav, err := e.openLocked(ctx, OpenRequest{
		Symbol:     e.cfg.Symbol,
		EntryPrice: entryPrice,
		Amount:     favAmount,
		Direction:  direction,
		Class:      class,
		Mode:       mode,
		Allocation: models.AllocationFavorable,
	})
	if err != nil {
		return HedgePair{}, err
	}

	unfav, err := e.openLocked(ctx, OpenRequest{
		Symbol:     e.cfg.Symbol,
		EntryPrice: entryPrice,
		Amount:     unfavAmount,
		Direction:  direction.Opposite(),
		Class:      class,
		Mode:       mode,
		Allocation: models.AllocationUnfavorable,
	})
	if err != nil {
		logger.Error("[HEDGE] unfavorable leg failed, favorable stands alone: %v", err)
		return HedgePair{Favorable: fav}, nil
	}

	return HedgePair{Favorable: fav, Unfavorable: unfav}, nil
}
