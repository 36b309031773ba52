package models

// IndicatorSnapshot is a point-in-time reading over a recent candle window.
// Providers return neutral defaults (RSI 50, stochastic 50/50, flat bands)
// when the window is too short, never an error.
type IndicatorSnapshot struct {
	Price          float64
	RSI            float64
	MACDHistogram  float64
	SMA            float64
	EMA            float64
	StochasticK    float64
	StochasticD    float64
	ATR            float64
	BollingerLower float64
	BollingerUpper float64
}
