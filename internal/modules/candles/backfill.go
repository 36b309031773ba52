package candles

import (
	"context"
	"time"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/logger"
)

// KlineSource is the gateway slice the backfiller needs.
type KlineSource interface {
	Klines(ctx context.Context, symbol, interval string, start, end time.Time, limit int) ([]models.Candle, error)
}

// EnsureRange loads [start, end) from the store, fills detected gaps from the
// source and returns the repaired sequence. Gaps are logged, never silently
// ignored; a failed backfill leaves the gap in place and keeps going.
func (s *Store) EnsureRange(
	ctx context.Context,
	src KlineSource,
	symbol, interval string,
	start, end time.Time,
	spacing time.Duration,
) ([]models.Candle, error) {
	stored, err := s.FetchRange(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, err
	}

	gaps := DetectGaps(stored, spacing)
	if len(stored) == 0 {
		gaps = []Gap{{From: start, To: end}}
	}

	for _, g := range gaps {
		logger.Info("[CANDLES] gap %s %s: %s .. %s, backfilling", symbol, interval, g.From, g.To)

		fetched, err := src.Klines(ctx, symbol, interval, g.From, g.To, 1000)
		if err != nil {
			logger.Error("[CANDLES] backfill %s %s failed: %v", symbol, interval, err)
			continue
		}
		if len(fetched) == 0 {
			continue
		}
		if err := s.Upsert(ctx, fetched); err != nil {
			logger.Error("[CANDLES] backfill upsert failed: %v", err)
		}
	}

	if len(gaps) == 0 {
		return stored, nil
	}
	return s.FetchRange(ctx, symbol, interval, start, end)
}
