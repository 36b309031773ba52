package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Opposite returns the other side of the book.
func (d Direction) Opposite() Direction {
	if d == DirectionLong {
		return DirectionShort
	}
	return DirectionLong
}

type InstrumentClass string

const (
	ClassSpot    InstrumentClass = "spot"
	ClassFutures InstrumentClass = "futures"
)

type Mode string

const (
	ModeReal      Mode = "real"
	ModeSimulated Mode = "simulated"
)

type Allocation string

const (
	AllocationFavorable   Allocation = "favorable"
	AllocationUnfavorable Allocation = "unfavorable"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Position is a single open exposure. StopLoss/TakeProfit are fixed at open;
// only PeakProfit/PeakPrice and IsReallocated mutate afterwards.
type Position struct {
	ID         string
	Symbol     string
	EntryPrice decimal.Decimal
	Amount     decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal

	// running maxima for the trailing-drawdown exit
	PeakProfit decimal.Decimal
	PeakPrice  decimal.Decimal

	Direction  Direction
	Class      InstrumentClass
	Mode       Mode
	Allocation Allocation

	Leverage decimal.Decimal // 1 for spot

	// captured at open so later fee changes don't move the entry cost basis
	FeeRate  decimal.Decimal
	EntryFee decimal.Decimal

	// margin-or-notional plus entry fee, exactly what the ledger gave up at open
	LockedCost decimal.Decimal

	IsReallocated bool
	StartTime     time.Time
}

// EntrySide maps the position direction to the order side submitted at open.
func (p *Position) EntrySide() OrderSide {
	if p.Direction == DirectionShort {
		return SideSell
	}
	return SideBuy
}
