package indicator

import (
	"testing"

	"hedge_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatWindow(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{Open: price, High: price, Low: price, Close: price}
	}
	return out
}

func TestSnapshotEmptyWindowIsNeutral(t *testing.T) {
	t.Parallel()

	snap := NewProvider().Snapshot(nil)

	assert.InDelta(t, 50, snap.RSI, 1e-9)
	assert.InDelta(t, 50, snap.StochasticK, 1e-9)
	assert.InDelta(t, 50, snap.StochasticD, 1e-9)
	assert.Zero(t, snap.MACDHistogram)
	assert.Zero(t, snap.ATR)
}

func TestSnapshotShortWindowCollapsesBands(t *testing.T) {
	t.Parallel()

	// below every indicator period: bands and averages sit on the last price
	snap := NewProvider().Snapshot(flatWindow(5, 42))

	assert.InDelta(t, 42, snap.Price, 1e-9)
	assert.InDelta(t, 42, snap.SMA, 1e-9)
	assert.InDelta(t, 42, snap.EMA, 1e-9)
	assert.InDelta(t, 42, snap.BollingerLower, 1e-9)
	assert.InDelta(t, 42, snap.BollingerUpper, 1e-9)
	assert.InDelta(t, 50, snap.RSI, 1e-9)
}

func TestSnapshotFlatFullWindow(t *testing.T) {
	t.Parallel()

	snap := NewProvider().Snapshot(flatWindow(MinWindow, 100))

	// no movement: flat averages, zero histogram, zero range
	assert.InDelta(t, 100, snap.SMA, 1e-9)
	assert.InDelta(t, 100, snap.EMA, 1e-9)
	assert.InDelta(t, 0, snap.MACDHistogram, 1e-9)
	assert.InDelta(t, 0, snap.ATR, 1e-9)
	assert.InDelta(t, 100, snap.BollingerLower, 1e-9)
	assert.InDelta(t, 100, snap.BollingerUpper, 1e-9)
	// degenerate hi==lo range reads as mid-scale
	assert.InDelta(t, 50, snap.StochasticK, 1e-9)
	assert.InDelta(t, 50, snap.StochasticD, 1e-9)
	// all-flat closes have zero loss: rsi saturates high
	assert.InDelta(t, 100, snap.RSI, 1e-9)
}

func TestSnapshotTrendingWindow(t *testing.T) {
	t.Parallel()

	window := make([]models.Candle, MinWindow)
	price := 100.0
	for i := range window {
		window[i] = models.Candle{
			Open:  price,
			High:  price + 1.5,
			Low:   price - 0.5,
			Close: price + 1,
		}
		price++
	}

	snap := NewProvider().Snapshot(window)
	require.InDelta(t, float64(100+MinWindow), snap.Price, 1e-9)

	// a monotone rally: overbought rsi, bullish macd, fast ema above slow sma
	assert.Greater(t, snap.RSI, 70.0)
	assert.Greater(t, snap.MACDHistogram, 0.0)
	assert.Greater(t, snap.EMA, snap.SMA)
	assert.Greater(t, snap.StochasticK, 80.0)
	assert.Greater(t, snap.ATR, 0.0)
	assert.Less(t, snap.BollingerLower, snap.BollingerUpper)
}
