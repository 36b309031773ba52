package candles

import (
	"testing"
	"time"

	"hedge_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(start time.Time, spacing time.Duration, n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		s := start.Add(time.Duration(i) * spacing)
		out[i] = models.Candle{Symbol: "BTCUSDT", Interval: "1m", Start: s, End: s.Add(spacing)}
	}
	return out
}

func TestDetectGapsContiguous(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, DetectGaps(seq(start, time.Minute, 10), time.Minute))
}

func TestDetectGapsFindsMissingStretch(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := seq(start, time.Minute, 10)

	// drop candles 3..5
	holed := append(append([]models.Candle{}, candles[:3]...), candles[6:]...)

	gaps := DetectGaps(holed, time.Minute)
	require.Len(t, gaps, 1)
	assert.Equal(t, start.Add(3*time.Minute), gaps[0].From)
	assert.Equal(t, start.Add(6*time.Minute), gaps[0].To)
}

func TestDetectGapsMultipleHoles(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := seq(start, time.Minute, 10)

	holed := []models.Candle{candles[0], candles[2], candles[7]}

	gaps := DetectGaps(holed, time.Minute)
	require.Len(t, gaps, 2)
	assert.Equal(t, start.Add(1*time.Minute), gaps[0].From)
	assert.Equal(t, start.Add(2*time.Minute), gaps[0].To)
	assert.Equal(t, start.Add(3*time.Minute), gaps[1].From)
	assert.Equal(t, start.Add(7*time.Minute), gaps[1].To)
}

func TestDetectGapsDegenerateInputs(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, DetectGaps(nil, time.Minute))
	assert.Nil(t, DetectGaps(seq(start, time.Minute, 1), time.Minute))
	assert.Nil(t, DetectGaps(seq(start, time.Minute, 10), 0))
}
