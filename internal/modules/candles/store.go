package candles

import (
	"context"
	"fmt"
	"time"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS candles (
    symbol      TEXT        NOT NULL,
    interval    TEXT        NOT NULL,
    start_at    TIMESTAMPTZ NOT NULL,
    end_at      TIMESTAMPTZ NOT NULL,
    open        DOUBLE PRECISION NOT NULL,
    high        DOUBLE PRECISION NOT NULL,
    low         DOUBLE PRECISION NOT NULL,
    close       DOUBLE PRECISION NOT NULL,
    volume      DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (symbol, interval, start_at)
)`

// Store persists historical candles and detects gaps in stored ranges.
type Store struct {
	txm *db.PgTxManager
}

func NewStore(txm *db.PgTxManager) *Store {
	return &Store{txm: txm}
}

// Migrate creates the candles table if missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.txm.Conn().Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate candles")
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, candles []models.Candle) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.Upsert: %w", err)
		}
	}()

	if len(candles) == 0 {
		return nil
	}

	return s.txm.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		for _, c := range candles {
			_, err := tx.Exec(ctxTx, `
				INSERT INTO candles (symbol, interval, start_at, end_at, open, high, low, close, volume)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (symbol, interval, start_at) DO UPDATE
				SET end_at = EXCLUDED.end_at,
				    open = EXCLUDED.open, high = EXCLUDED.high,
				    low = EXCLUDED.low, close = EXCLUDED.close,
				    volume = EXCLUDED.volume`,
				c.Symbol, c.Interval, c.Start, c.End,
				c.Open, c.High, c.Low, c.Close, c.Volume,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FetchRange returns stored candles ordered by start time.
func (s *Store) FetchRange(ctx context.Context, symbol, interval string, start, end time.Time) (out []models.Candle, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.FetchRange: %w", err)
		}
	}()

	rows, err := s.txm.Conn().Query(ctx, `
		SELECT symbol, interval, start_at, end_at, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND interval = $2 AND start_at >= $3 AND start_at < $4
		ORDER BY start_at`,
		symbol, interval, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Symbol, &c.Interval, &c.Start, &c.End,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Gap is a missing stretch between two stored candles.
type Gap struct {
	From time.Time
	To   time.Time
}

// DetectGaps walks an ordered candle sequence and reports every place where
// consecutive boundary times don't match the interval spacing.
func DetectGaps(candles []models.Candle, spacing time.Duration) []Gap {
	if spacing <= 0 || len(candles) < 2 {
		return nil
	}

	var gaps []Gap
	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1], candles[i]
		expected := prev.Start.Add(spacing)
		if cur.Start.After(expected) {
			gaps = append(gaps, Gap{From: expected, To: cur.Start})
		}
	}
	return gaps
}
