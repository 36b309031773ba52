package engine

import (
	"context"
	"errors"
	"time"

	"hedge_bot/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientBalance rejects an open whose total cost exceeds the
	// selected ledger. The trade is skipped, nothing is mutated.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEngineBusy means the trading-cycle guard could not be acquired
	// within the configured timeout. Callers log and skip the cycle.
	ErrEngineBusy = errors.New("engine busy: lock acquisition timed out")

	// ErrPositionNotFound for closes against an already settled id.
	ErrPositionNotFound = errors.New("position not found")
)

// Gateway is the market-data and execution surface the engine trades through.
type Gateway interface {
	Balance(ctx context.Context, asset string) (decimal.Decimal, error)
	LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	TradeFee(ctx context.Context, symbol string, class models.InstrumentClass) (models.FeeRates, error)
	SubmitMarketOrder(ctx context.Context, side models.OrderSide, symbol string, quantity decimal.Decimal) (models.OrderReceipt, error)
}

// HistoryStore records settled trades and serves the recent window the
// win-rate estimate is computed from.
type HistoryStore interface {
	RecordSettledTrade(ctx context.Context, t models.SettledTrade) error
	QueryRecent(ctx context.Context, limit int) ([]models.SettledTrade, error)
}

// Notifier receives human-readable status messages. May be nil-safe no-op.
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// DecisionPolicy decides whether a signal becomes a trade and with which
// parameters. Injected so the engine never talks to a terminal.
type DecisionPolicy interface {
	ShouldAcceptTrade(ctx context.Context, symbol string, probability float64) bool
	TradeParams(ctx context.Context) (models.TradeParams, bool)
}

// IndicatorProvider turns a recent candle window into a snapshot. Must
// return neutral defaults rather than fail on short windows.
type IndicatorProvider interface {
	Snapshot(window []models.Candle) models.IndicatorSnapshot
}

// Metrics is the observability hook; a nil Metrics disables it.
type Metrics interface {
	Decision(accepted bool)
	Opened(mode models.Mode, direction models.Direction)
	Settled(reason models.ExitReason, result models.TradeResult)
	Equity(mode models.Mode, value float64)
}

// Config carries every tunable the engine reads. Percent values are whole
// percents (1.5 => 1.5%).
type Config struct {
	Symbol     string
	QuoteAsset string

	StopLossPct    decimal.Decimal
	TakeProfitPct  decimal.Decimal
	MaxDrawdownPct decimal.Decimal
	Leverage       decimal.Decimal

	SpotFeeFallback    decimal.Decimal
	FuturesFeeFallback decimal.Decimal

	BaseProbability float64
	ProbWindow      int
	ProbAlpha       float64
	DampWindow      time.Duration
	DampThreshold   float64
	DampPenalty     float64
	AcceptLow       float64
	AcceptHigh      float64

	TickInterval time.Duration
	LockTimeout  time.Duration
	MinCandles   int
	CandleWindow int
}

// Engine owns the active-position set, the ledgers and the probability
// accumulator. All state mutation happens under the cycle guard; no ambient
// globals, so independent engines can coexist in tests.
type Engine struct {
	cfg Config

	gw         Gateway
	hist       HistoryStore
	indicators IndicatorProvider
	notifier   Notifier
	policy     DecisionPolicy
	metrics    Metrics

	now func() time.Time

	// cycle guard: one slot, acquired with a bounded timeout
	sem chan struct{}

	positions map[string]*models.Position
	ledger    Ledger

	window []models.Candle

	dampStart time.Time
	dampAccum float64
}

func New(cfg Config, gw Gateway, hist HistoryStore, indicators IndicatorProvider, notifier Notifier, policy DecisionPolicy, metrics Metrics) *Engine {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 3 * time.Second
	}
	if cfg.BaseProbability == 0 {
		cfg.BaseProbability = 75
	}
	return &Engine{
		cfg:        cfg,
		gw:         gw,
		hist:       hist,
		indicators: indicators,
		notifier:   notifier,
		policy:     policy,
		metrics:    metrics,
		now:        time.Now,
		sem:        make(chan struct{}, 1),
		positions:  make(map[string]*models.Position),
	}
}

// acquire takes the cycle guard or gives up after the configured timeout so
// a stuck external call can't wedge the whole engine.
func (e *Engine) acquire(ctx context.Context) error {
	t := time.NewTimer(e.cfg.LockTimeout)
	defer t.Stop()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-t.C:
		return ErrEngineBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	<-e.sem
}

// OpenCount reports the size of the active set.
func (e *Engine) OpenCount(ctx context.Context) (int, error) {
	if err := e.acquire(ctx); err != nil {
		return 0, err
	}
	defer e.release()
	return len(e.positions), nil
}

func (e *Engine) sendf(format string, args ...any) {
	if e.notifier != nil {
		e.notifier.Sendf(format, args...)
	}
}
