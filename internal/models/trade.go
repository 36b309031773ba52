package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeResult string

const (
	ResultWin  TradeResult = "win"
	ResultLoss TradeResult = "loss"
)

type ExitReason string

const (
	ExitTakeProfit   ExitReason = "take_profit"
	ExitStopLoss     ExitReason = "stop_loss"
	ExitTrailingStop ExitReason = "trailing_stop"
	ExitManual       ExitReason = "manual"
)

// SettledTrade is the immutable record written once a position closes.
type SettledTrade struct {
	ID         string
	PositionID string
	Symbol     string
	Direction  Direction
	Class      InstrumentClass
	Mode       Mode
	Allocation Allocation

	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Amount     decimal.Decimal
	Leverage   decimal.Decimal
	EntryFee   decimal.Decimal
	ExitFee    decimal.Decimal
	GrossPnl   decimal.Decimal
	NetPnl     decimal.Decimal

	Result   TradeResult
	Reason   ExitReason
	OpenedAt time.Time
	ClosedAt time.Time
}

// TradeParams is what a decision policy hands back for an accepted signal.
type TradeParams struct {
	Amount decimal.Decimal
	Class  InstrumentClass
	Mode   Mode
}

// FeeRates as reported by the exchange for one symbol.
type FeeRates struct {
	Maker decimal.Decimal
	Taker decimal.Decimal
}

type OrderReceipt struct {
	OrderID  string
	Symbol   string
	Side     OrderSide
	Quantity decimal.Decimal
	Price    decimal.Decimal
}
