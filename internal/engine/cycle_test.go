package engine

import (
	"context"
	"errors"
	"testing"

	"hedge_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePolicy struct {
	accept bool
	params models.TradeParams
	asked  int
}

func (p *fakePolicy) ShouldAcceptTrade(ctx context.Context, symbol string, probability float64) bool {
	p.asked++
	return p.accept
}

func (p *fakePolicy) TradeParams(ctx context.Context) (models.TradeParams, bool) {
	return p.params, true
}

type fakeIndicators struct {
	snap models.IndicatorSnapshot
}

func (f *fakeIndicators) Snapshot(window []models.Candle) models.IndicatorSnapshot {
	return f.snap
}

func candle(close float64) models.Candle {
	return models.Candle{Symbol: "BTCUSDT", Interval: "1m", Close: close}
}

// a snapshot landing the probability inside [70, 80]: base 75, sma/ema tie -5
func bandSnapshot() models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		Price: 100, RSI: 50, SMA: 100, EMA: 100,
		StochasticK: 50, StochasticD: 50,
		BollingerLower: 90, BollingerUpper: 110,
	}
}

func newCycleEngine(gw Gateway, policy DecisionPolicy, snap models.IndicatorSnapshot) *Engine {
	e := New(testConfig(), gw, &fakeHistory{}, &fakeIndicators{snap: snap}, nil, policy, nil)
	e.ledger.Seed(dec("10000"))
	return e
}

func TestHandleCandleSkipsOnShortWindow(t *testing.T) {
	t.Parallel()

	policy := &fakePolicy{accept: true}
	e := newCycleEngine(&fakeGateway{}, policy, bandSnapshot())

	// one candle is far below MinCandles: no evaluation, no prompt
	e.HandleCandle(context.Background(), candle(100))

	assert.Zero(t, policy.asked)
	n, err := e.OpenCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandleCandleOpensHedgeInsideBand(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{feeErr: errors.New("down")}
	policy := &fakePolicy{
		accept: true,
		params: models.TradeParams{
			Amount: dec("3"),
			Class:  models.ClassFutures,
			Mode:   models.ModeSimulated,
		},
	}
	e := newCycleEngine(gw, policy, bandSnapshot())

	var window []models.Candle
	for i := 0; i < e.cfg.MinCandles; i++ {
		window = append(window, candle(100))
	}
	e.WarmWindow(window)

	e.HandleCandle(context.Background(), candle(100))

	assert.Equal(t, 1, policy.asked)
	n, err := e.OpenCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "an accepted signal opens both hedge legs")
}

func TestHandleCandleRejectsOutsideBand(t *testing.T) {
	t.Parallel()

	// strong overbought snapshot drives the probability below the band
	snap := bandSnapshot()
	snap.RSI = 85
	snap.StochasticK, snap.StochasticD = 90, 90

	policy := &fakePolicy{accept: true}
	e := newCycleEngine(&fakeGateway{}, policy, snap)

	var window []models.Candle
	for i := 0; i < e.cfg.MinCandles; i++ {
		window = append(window, candle(100))
	}
	e.WarmWindow(window)

	e.HandleCandle(context.Background(), candle(100))

	assert.Zero(t, policy.asked, "out-of-band signals never reach the policy")
	n, err := e.OpenCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandleCandleMonitorsInsteadOfStackingTrades(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{feeErr: errors.New("down"), price: dec("100")}
	policy := &fakePolicy{
		accept: true,
		params: models.TradeParams{Amount: dec("3"), Class: models.ClassFutures, Mode: models.ModeSimulated},
	}
	e := newCycleEngine(gw, policy, bandSnapshot())

	var window []models.Candle
	for i := 0; i < e.cfg.MinCandles; i++ {
		window = append(window, candle(100))
	}
	e.WarmWindow(window)

	e.HandleCandle(context.Background(), candle(100))
	require.Equal(t, 1, policy.asked)

	// with the hedge open, further candles only monitor
	e.HandleCandle(context.Background(), candle(100))
	assert.Equal(t, 1, policy.asked)

	n, err := e.OpenCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTrackCandleBoundsWindow(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeGateway{}, &fakeHistory{})
	for i := 0; i < e.cfg.CandleWindow+50; i++ {
		e.trackCandle(candle(float64(i)))
	}

	assert.Len(t, e.window, e.cfg.CandleWindow)
	assert.Equal(t, float64(49+e.cfg.CandleWindow), e.window[len(e.window)-1].Close)
}
