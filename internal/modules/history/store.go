package history

import (
	"context"
	"fmt"

	"hedge_bot/internal/models"
	"hedge_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS settled_trades (
    id          TEXT PRIMARY KEY,
    position_id TEXT        NOT NULL,
    symbol      TEXT        NOT NULL,
    direction   TEXT        NOT NULL,
    class       TEXT        NOT NULL,
    mode        TEXT        NOT NULL,
    allocation  TEXT        NOT NULL,
    entry_price NUMERIC     NOT NULL,
    exit_price  NUMERIC     NOT NULL,
    amount      NUMERIC     NOT NULL,
    leverage    NUMERIC     NOT NULL,
    entry_fee   NUMERIC     NOT NULL,
    exit_fee    NUMERIC     NOT NULL,
    gross_pnl   NUMERIC     NOT NULL,
    net_pnl     NUMERIC     NOT NULL,
    result      TEXT        NOT NULL,
    reason      TEXT        NOT NULL,
    opened_at   TIMESTAMPTZ NOT NULL,
    closed_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS settled_trades_closed_at ON settled_trades (closed_at DESC)`

// Store is the durable trade journal. QueryRecent feeds the win-rate window.
type Store struct {
	txm *db.PgTxManager
}

func NewStore(txm *db.PgTxManager) *Store {
	return &Store{txm: txm}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.txm.Conn().Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate settled_trades")
	}
	return nil
}

func (s *Store) RecordSettledTrade(ctx context.Context, t models.SettledTrade) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.RecordSettledTrade: %w", err)
		}
	}()

	return s.txm.Run(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO settled_trades (
				id, position_id, symbol, direction, class, mode, allocation,
				entry_price, exit_price, amount, leverage,
				entry_fee, exit_fee, gross_pnl, net_pnl,
				result, reason, opened_at, closed_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			t.ID, t.PositionID, t.Symbol, string(t.Direction), string(t.Class),
			string(t.Mode), string(t.Allocation),
			t.EntryPrice.String(), t.ExitPrice.String(), t.Amount.String(), t.Leverage.String(),
			t.EntryFee.String(), t.ExitFee.String(), t.GrossPnl.String(), t.NetPnl.String(),
			string(t.Result), string(t.Reason), t.OpenedAt, t.ClosedAt,
		)
		return err
	})
}

// QueryRecent returns up to limit settled trades, most recent first.
func (s *Store) QueryRecent(ctx context.Context, limit int) (out []models.SettledTrade, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Store.QueryRecent: %w", err)
		}
	}()

	rows, err := s.txm.Conn().Query(ctx, `
		SELECT id, position_id, symbol, direction, class, mode, allocation,
		       entry_price::text, exit_price::text, amount::text, leverage::text,
		       entry_fee::text, exit_fee::text, gross_pnl::text, net_pnl::text,
		       result, reason, opened_at, closed_at
		FROM settled_trades
		ORDER BY closed_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                                   models.SettledTrade
			direction, class, mode, alloc       string
			entry, exit, amount, leverage       string
			entryFee, exitFee, grossPnl, netPnl string
			result, reason                      string
		)
		if err := rows.Scan(&t.ID, &t.PositionID, &t.Symbol, &direction, &class, &mode, &alloc,
			&entry, &exit, &amount, &leverage,
			&entryFee, &exitFee, &grossPnl, &netPnl,
			&result, &reason, &t.OpenedAt, &t.ClosedAt); err != nil {
			return nil, err
		}

		t.Direction = models.Direction(direction)
		t.Class = models.InstrumentClass(class)
		t.Mode = models.Mode(mode)
		t.Allocation = models.Allocation(alloc)
		t.Result = models.TradeResult(result)
		t.Reason = models.ExitReason(reason)

		if t.EntryPrice, err = decimal.NewFromString(entry); err != nil {
			return nil, err
		}
		if t.ExitPrice, err = decimal.NewFromString(exit); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if t.Leverage, err = decimal.NewFromString(leverage); err != nil {
			return nil, err
		}
		if t.EntryFee, err = decimal.NewFromString(entryFee); err != nil {
			return nil, err
		}
		if t.ExitFee, err = decimal.NewFromString(exitFee); err != nil {
			return nil, err
		}
		if t.GrossPnl, err = decimal.NewFromString(grossPnl); err != nil {
			return nil, err
		}
		if t.NetPnl, err = decimal.NewFromString(netPnl); err != nil {
			return nil, err
		}

		out = append(out, t)
	}
	return out, rows.Err()
}
