package engine

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// safeDiv guards rate math against a zero divisor and falls back to def
// instead of panicking.
func safeDiv(a, b, def decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return def
	}
	return a.Div(b)
}

// pctOf returns value × pct/100.
func pctOf(value, pct decimal.Decimal) decimal.Decimal {
	return value.Mul(pct).Div(hundred)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
