package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Icebitz/trading-bot/internal/model"
)

func series(prices ...float64) []model.Sample {
	base := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	out := make([]model.Sample, len(prices))
	for i, p := range prices {
		out[i] = model.Sample{Time: base.Add(time.Duration(i) * time.Minute), Price: decimal.NewFromFloat(p)}
	}
	return out
}

func TestMovingAverageBoundary(t *testing.T) {
	values, ok, err := MovingAverage(series(1, 2, 3, 4), 3)
	require.NoError(t, err)

	assert.False(t, ok[0])
	assert.False(t, ok[1])
	require.True(t, ok[2])
	require.True(t, ok[3])
	assert.Equal(t, "2.00", values[2].StringFixed(2))
	assert.Equal(t, "3.00", values[3].StringFixed(2))
}

func TestMovingAverageRejectsBadWindow(t *testing.T) {
	_, _, err := MovingAverage(series(1, 2), 0)
	assert.Error(t, err)
}

func TestAnnotateBuyOnUpwardCross(t *testing.T) {
	// With windows 2/3: at i=2 short=9.50 < long=10.33, at i=3
	// short=12.50 > long=11.67 — an upward cross.
	rows, err := Annotate(series(12, 10, 9, 16), 2, 3)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, model.SignalHold, rows[0].Signal)
	assert.Equal(t, model.SignalHold, rows[1].Signal)
	assert.Equal(t, model.SignalHold, rows[2].Signal)
	assert.Equal(t, model.SignalBuy, rows[3].Signal)
}

func TestAnnotateSellOnDownwardCross(t *testing.T) {
	rows, err := Annotate(series(9, 11, 12, 5), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, model.SignalSell, rows[3].Signal)
}

func TestAnnotateEqualityNeverFires(t *testing.T) {
	rows, err := Annotate(series(10, 10, 10, 10, 10), 2, 3)
	require.NoError(t, err)
	for i, row := range rows {
		assert.Equal(t, model.SignalHold, row.Signal, "row %d", i)
	}
}

func TestAnnotateAbsentAveragesAreHold(t *testing.T) {
	rows, err := Annotate(series(12, 10, 9, 16), 2, 3)
	require.NoError(t, err)

	assert.False(t, rows[0].ShortMAValid)
	assert.False(t, rows[1].LongMAValid)
	assert.True(t, rows[1].ShortMAValid)
	assert.True(t, rows[2].LongMAValid)
	// Rows without both averages on both sides stay HOLD.
	assert.Equal(t, model.SignalHold, rows[2].Signal)
}

func TestAnnotateFirstRowAlwaysHold(t *testing.T) {
	// Window 1 makes both averages valid from row 0; the first row still
	// holds because it has no previous row to cross against.
	rows, err := Annotate(series(1, 5), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.SignalHold, rows[0].Signal)
}

func TestAnnotateEmptySeries(t *testing.T) {
	rows, err := Annotate(nil, 2, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
