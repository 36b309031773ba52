package engine

import (
	"context"
	"errors"
	"testing"

	"hedge_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestPosition(t *testing.T, e *Engine, dir models.Direction) *models.Position {
	t.Helper()
	pos, err := e.OpenPosition(context.Background(), OpenRequest{
		Symbol:     "BTCUSDT",
		EntryPrice: dec("100"),
		Amount:     dec("1"),
		Direction:  dir,
		Class:      models.ClassFutures,
		Mode:       models.ModeSimulated,
		Allocation: models.AllocationFavorable,
	})
	require.NoError(t, err)
	return pos
}

func TestPeakRatchetIsMonotonic(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{feeErr: errors.New("down")}
	e := newTestEngine(gw, &fakeHistory{})
	pos := openTestPosition(t, e, models.DirectionLong)

	// rally to 105: peak follows
	gw.price = dec("105")
	e.MonitorPass(context.Background())
	require.Contains(t, e.positions, pos.ID)
	assert.True(t, pos.PeakPrice.Equal(dec("105")), "peak price %s", pos.PeakPrice)
	assert.True(t, pos.PeakProfit.Equal(dec("50")), "peak profit %s", pos.PeakProfit)

	// pullback to 103: still above the 102.9 trail, peak must not move
	gw.price = dec("103")
	e.MonitorPass(context.Background())
	require.Contains(t, e.positions, pos.ID)
	assert.True(t, pos.PeakPrice.Equal(dec("105")), "peak ratcheted back to %s", pos.PeakPrice)
	assert.True(t, pos.PeakProfit.Equal(dec("50")))
}

func TestTakeProfitWinsWhenBothExitsTrigger(t *testing.T) {
	t.Parallel()

	hist := &fakeHistory{}
	gw := &fakeGateway{feeErr: errors.New("down")}
	e := newTestEngine(gw, hist)

	// a position whose peak already sits far above the take-profit, so a fall
	// to 106 satisfies the trailing stop and the take-profit at once
	pos := &models.Position{
		ID:         "pos-1",
		Symbol:     "BTCUSDT",
		EntryPrice: dec("100"),
		Amount:     dec("1"),
		StopLoss:   dec("98.5"),
		TakeProfit: dec("106"),
		PeakProfit: dec("20"),
		PeakPrice:  dec("120"),
		Direction:  models.DirectionLong,
		Class:      models.ClassFutures,
		Mode:       models.ModeSimulated,
		Allocation: models.AllocationFavorable,
		Leverage:   dec("1"),
		FeeRate:    dec("0.0004"),
		EntryFee:   dec("0.04"),
		LockedCost: dec("100.04"),
	}
	e.positions[pos.ID] = pos

	gw.price = dec("106")
	e.MonitorPass(context.Background())

	require.Len(t, hist.recorded, 1)
	assert.Equal(t, models.ExitTakeProfit, hist.recorded[0].Reason)
	assert.Equal(t, models.ResultWin, hist.recorded[0].Result)
	assert.NotContains(t, e.positions, pos.ID)
}

func TestStopLossExit(t *testing.T) {
	t.Parallel()

	hist := &fakeHistory{}
	gw := &fakeGateway{feeErr: errors.New("down")}
	e := newTestEngine(gw, hist)
	pos := openTestPosition(t, e, models.DirectionLong)

	gw.price = dec("98")
	e.MonitorPass(context.Background())

	require.Len(t, hist.recorded, 1)
	assert.Equal(t, models.ExitStopLoss, hist.recorded[0].Reason)
	assert.Equal(t, models.ResultLoss, hist.recorded[0].Result)
	assert.NotContains(t, e.positions, pos.ID)
}

func TestTrailingStopLocksInProfit(t *testing.T) {
	t.Parallel()

	hist := &fakeHistory{}
	gw := &fakeGateway{feeErr: errors.New("down")}
	e := newTestEngine(gw, hist)
	pos := openTestPosition(t, e, models.DirectionLong)

	gw.price = dec("105")
	e.MonitorPass(context.Background())
	require.Contains(t, e.positions, pos.ID)

	// 105 peak, 2% drawdown => trail at 102.9
	gw.price = dec("102.8")
	e.MonitorPass(context.Background())

	require.Len(t, hist.recorded, 1)
	assert.Equal(t, models.ExitTrailingStop, hist.recorded[0].Reason)
	assert.Equal(t, models.ResultWin, hist.recorded[0].Result, "exit above entry must settle as a win")
}

func TestShortTakeProfitExit(t *testing.T) {
	t.Parallel()

	hist := &fakeHistory{}
	gw := &fakeGateway{feeErr: errors.New("down")}
	e := newTestEngine(gw, hist)
	pos := openTestPosition(t, e, models.DirectionShort)

	// short from 100: tp at 94, sl at 101.5
	assert.True(t, pos.TakeProfit.Equal(dec("94")))
	assert.True(t, pos.StopLoss.Equal(dec("101.5")))

	gw.price = dec("93.5")
	e.MonitorPass(context.Background())

	require.Len(t, hist.recorded, 1)
	assert.Equal(t, models.ExitTakeProfit, hist.recorded[0].Reason)
	assert.Equal(t, models.ResultWin, hist.recorded[0].Result)
}

func TestMonitorPassSkipsPositionOnPriceError(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{feeErr: errors.New("down")}
	e := newTestEngine(gw, &fakeHistory{})
	pos := openTestPosition(t, e, models.DirectionLong)

	gw.priceErr = errors.New("feed flapping")
	e.MonitorPass(context.Background())

	assert.Contains(t, e.positions, pos.ID)
}

func TestBusyGuardTimesOut(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeGateway{}, &fakeHistory{})
	e.sem <- struct{}{} // hold the guard

	_, err := e.ClosePosition(context.Background(), "whatever", dec("100"))
	assert.ErrorIs(t, err, ErrEngineBusy)
}
