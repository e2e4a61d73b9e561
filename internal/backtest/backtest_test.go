package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Icebitz/trading-bot/internal/model"
)

func annotated(prices []float64, signals []model.Signal) []model.AnnotatedSample {
	base := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	out := make([]model.AnnotatedSample, len(prices))
	for i := range prices {
		out[i] = model.AnnotatedSample{
			Sample: model.Sample{Time: base.Add(time.Duration(i) * time.Minute), Price: decimal.NewFromFloat(prices[i])},
			Signal: signals[i],
		}
	}
	return out
}

func TestRunBuyThenSell(t *testing.T) {
	rows := annotated(
		[]float64{100, 95, 105, 110},
		[]model.Signal{model.SignalHold, model.SignalBuy, model.SignalHold, model.SignalSell},
	)

	result, err := Run(rows, decimal.NewFromInt(100000))
	require.NoError(t, err)

	assert.Equal(t, "100015.00", result.FinalValue.StringFixed(2))
	assert.Equal(t, "0.0150", result.TotalReturnPct.StringFixed(4))
	assert.Equal(t, 0, result.EndPosition)
	require.Len(t, result.Trace, 4)
	// One portfolio value per input row: buy at 95 leaves cash 99905,
	// the open position marks to each row's price.
	assert.Equal(t, "100000.00", result.Trace[0].StringFixed(2))
	assert.Equal(t, "100000.00", result.Trace[1].StringFixed(2))
	assert.Equal(t, "100010.00", result.Trace[2].StringFixed(2))
	assert.Equal(t, "100015.00", result.Trace[3].StringFixed(2))
}

func TestRunIgnoresRedundantSignals(t *testing.T) {
	// BUY while long and SELL while flat change nothing.
	rows := annotated(
		[]float64{100, 100, 100, 100},
		[]model.Signal{model.SignalSell, model.SignalBuy, model.SignalBuy, model.SignalSell},
	)
	result, err := Run(rows, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", result.FinalValue.StringFixed(2))
	assert.Equal(t, 0, result.EndPosition)
}

func TestMaxDrawdown(t *testing.T) {
	trace := make([]decimal.Decimal, 0, 7)
	for _, v := range []int64{100, 95, 90, 85, 90, 95, 100} {
		trace = append(trace, decimal.NewFromInt(v))
	}
	assert.Equal(t, "0.1500", MaxDrawdown(trace).StringFixed(4))
}

func TestMaxDrawdownMonotonicRise(t *testing.T) {
	trace := []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(110), decimal.NewFromInt(120)}
	assert.True(t, MaxDrawdown(trace).IsZero())
}

func TestWinRateCountsBuyAfterSellAdjacency(t *testing.T) {
	rows := annotated(
		[]float64{100, 100, 100, 100},
		[]model.Signal{model.SignalSell, model.SignalBuy, model.SignalHold, model.SignalBuy},
	)
	result, err := Run(rows, decimal.NewFromInt(1000))
	require.NoError(t, err)
	// One SELL→BUY adjacency over four rows.
	assert.Equal(t, "0.2500", result.WinRate.StringFixed(4))
}

func TestRunEmptySeries(t *testing.T) {
	_, err := Run(nil, decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestRunRejectsNonPositiveCapital(t *testing.T) {
	rows := annotated([]float64{100}, []model.Signal{model.SignalHold})
	_, err := Run(rows, decimal.Zero)
	assert.Error(t, err)
}
