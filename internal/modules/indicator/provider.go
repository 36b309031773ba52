package indicator

import (
	"math"

	"hedge_bot/internal/models"
)

const (
	rsiPeriod   = 14
	macdFast    = 12
	macdSlow    = 26
	macdSignal  = 9
	maPeriod    = 20
	stochPeriod = 14
	atrPeriod   = 14
	bollPeriod  = 20
	bollWidth   = 2.0
)

// MinWindow is the shortest candle window the provider can read a full
// snapshot from (MACD slow + signal warmup).
const MinWindow = macdSlow + macdSignal

// Provider computes indicator snapshots from a recent candle window. It is a
// pure function of its input: no state survives between calls.
type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Snapshot reads the window. Shorter-than-minimum windows yield neutral
// defaults per indicator instead of an error: RSI 50, stochastic 50/50,
// zero histogram, zero ATR, bands collapsed onto the last price.
func (p *Provider) Snapshot(window []models.Candle) models.IndicatorSnapshot {
	if len(window) == 0 {
		return models.IndicatorSnapshot{RSI: 50, StochasticK: 50, StochasticD: 50}
	}

	closes := make([]float64, len(window))
	for i, c := range window {
		closes[i] = c.Close
	}
	price := closes[len(closes)-1]

	snap := models.IndicatorSnapshot{
		Price:          price,
		RSI:            50,
		StochasticK:    50,
		StochasticD:    50,
		SMA:            price,
		EMA:            price,
		BollingerLower: price,
		BollingerUpper: price,
	}

	if len(closes) > rsiPeriod {
		snap.RSI = rsi(closes, rsiPeriod)
	}
	if len(closes) >= MinWindow {
		snap.MACDHistogram = macdHistogram(closes)
	}
	if len(closes) >= maPeriod {
		snap.SMA = sma(closes, maPeriod)
		snap.EMA = ema(closes, maPeriod)
	}
	if len(window) >= stochPeriod {
		snap.StochasticK, snap.StochasticD = stochastic(window, stochPeriod)
	}
	if len(window) > atrPeriod {
		snap.ATR = atr(window, atrPeriod)
	}
	if len(closes) >= bollPeriod {
		snap.BollingerLower, snap.BollingerUpper = bollinger(closes, bollPeriod, bollWidth)
	}

	return snap
}

func sma(closes []float64, period int) float64 {
	sum := 0.0
	for _, v := range closes[len(closes)-period:] {
		sum += v
	}
	return sum / float64(period)
}

func ema(closes []float64, period int) float64 {
	k := 2.0 / (float64(period) + 1)
	v := closes[0]
	for _, c := range closes[1:] {
		v = k*c + (1-k)*v
	}
	return v
}

// emaSeries returns the EMA value at every index, seeded with the first close.
func emaSeries(closes []float64, period int) []float64 {
	k := 2.0 / (float64(period) + 1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = k*closes[i] + (1-k)*out[i-1]
	}
	return out
}

// rsi uses Wilder smoothing over the whole window.
func rsi(closes []float64, period int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func macdHistogram(closes []float64) float64 {
	fast := emaSeries(closes, macdFast)
	slow := emaSeries(closes, macdSlow)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	signal := emaSeries(macd, macdSignal)
	return macd[len(macd)-1] - signal[len(signal)-1]
}

func stochastic(window []models.Candle, period int) (k, d float64) {
	// %K over the last period, %D as a 3-slot SMA of trailing %K values
	kAt := func(end int) float64 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, c := range window[end-period+1 : end+1] {
			lo = math.Min(lo, c.Low)
			hi = math.Max(hi, c.High)
		}
		if hi == lo {
			return 50
		}
		return (window[end].Close - lo) / (hi - lo) * 100
	}

	last := len(window) - 1
	k = kAt(last)

	n, sum := 0, 0.0
	for i := last; i > last-3 && i >= period-1; i-- {
		sum += kAt(i)
		n++
	}
	d = sum / float64(n)
	return k, d
}

func atr(window []models.Candle, period int) float64 {
	trs := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		h, l, pc := window[i].High, window[i].Low, window[i-1].Close
		tr := math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc)))
		trs = append(trs, tr)
	}

	// Wilder smoothing seeded with the first period's simple mean
	v := 0.0
	for _, tr := range trs[:period] {
		v += tr
	}
	v /= float64(period)
	for _, tr := range trs[period:] {
		v = (v*float64(period-1) + tr) / float64(period)
	}
	return v
}

func bollinger(closes []float64, period int, width float64) (lower, upper float64) {
	mid := sma(closes, period)
	variance := 0.0
	for _, v := range closes[len(closes)-period:] {
		variance += (v - mid) * (v - mid)
	}
	sd := math.Sqrt(variance / float64(period))
	return mid - width*sd, mid + width*sd
}
