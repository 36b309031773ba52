package engine

import (
	"context"
	"time"

	"hedge_bot/internal/models"

	"github.com/shopspring/decimal"
)

type submittedOrder struct {
	side   models.OrderSide
	symbol string
	qty    decimal.Decimal
}

// fakeGateway is a scriptable Gateway; zero values mean "succeed with zeros".
type fakeGateway struct {
	balance    decimal.Decimal
	balanceErr error

	price    decimal.Decimal
	priceErr error

	fee    models.FeeRates
	feeErr error

	orderErr error
	orders   []submittedOrder
}

func (g *fakeGateway) Balance(ctx context.Context, asset string) (decimal.Decimal, error) {
	return g.balance, g.balanceErr
}

func (g *fakeGateway) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return g.price, g.priceErr
}

func (g *fakeGateway) TradeFee(ctx context.Context, symbol string, class models.InstrumentClass) (models.FeeRates, error) {
	return g.fee, g.feeErr
}

func (g *fakeGateway) SubmitMarketOrder(ctx context.Context, side models.OrderSide, symbol string, quantity decimal.Decimal) (models.OrderReceipt, error) {
	if g.orderErr != nil {
		return models.OrderReceipt{}, g.orderErr
	}
	g.orders = append(g.orders, submittedOrder{side: side, symbol: symbol, qty: quantity})
	return models.OrderReceipt{OrderID: "test-order", Symbol: symbol, Side: side, Quantity: quantity}, nil
}

type fakeHistory struct {
	trades   []models.SettledTrade
	queryErr error

	recorded  []models.SettledTrade
	recordErr error
}

func (h *fakeHistory) RecordSettledTrade(ctx context.Context, t models.SettledTrade) error {
	if h.recordErr != nil {
		return h.recordErr
	}
	h.recorded = append(h.recorded, t)
	return nil
}

func (h *fakeHistory) QueryRecent(ctx context.Context, limit int) ([]models.SettledTrade, error) {
	if h.queryErr != nil {
		return nil, h.queryErr
	}
	if len(h.trades) > limit {
		return h.trades[:limit], nil
	}
	return h.trades, nil
}

func testConfig() Config {
	return Config{
		Symbol:     "BTCUSDT",
		QuoteAsset: "USDT",

		StopLossPct:    decimal.RequireFromString("1.5"),
		TakeProfitPct:  decimal.RequireFromString("6"),
		MaxDrawdownPct: decimal.RequireFromString("2"),
		Leverage:       decimal.NewFromInt(10),

		SpotFeeFallback:    decimal.RequireFromString("0.001"),
		FuturesFeeFallback: decimal.RequireFromString("0.0004"),

		BaseProbability: 75,
		ProbWindow:      100,
		ProbAlpha:       0.1,
		DampWindow:      15 * time.Minute,
		DampThreshold:   20,
		DampPenalty:     5,
		AcceptLow:       70,
		AcceptHigh:      80,

		TickInterval: 5 * time.Second,
		LockTimeout:  50 * time.Millisecond,
		MinCandles:   35,
		CandleWindow: 200,
	}
}

// newTestEngine seeds the ledgers with 10000 so opens don't bounce.
func newTestEngine(gw Gateway, hist HistoryStore) *Engine {
	e := New(testConfig(), gw, hist, nil, nil, nil, nil)
	e.ledger.Seed(decimal.NewFromInt(10000))
	return e
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
