package models

import "time"

// Candle is one closed OHLCV bar as delivered by the feed or the store.
type Candle struct {
	Symbol   string
	Interval string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Start    time.Time
	End      time.Time
}
