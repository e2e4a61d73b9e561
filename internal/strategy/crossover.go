package strategy

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/model"
)

// MovingAverage computes the rolling arithmetic mean of price over the
// window ending at each index. ok[i] is false while fewer than window
// samples are available.
func MovingAverage(samples []model.Sample, window int) (values []decimal.Decimal, ok []bool, err error) {
	if window <= 0 {
		return nil, nil, errors.New("window must be positive")
	}
	values = make([]decimal.Decimal, len(samples))
	ok = make([]bool, len(samples))
	div := decimal.NewFromInt(int64(window))

	sum := decimal.Zero
	for i, s := range samples {
		sum = sum.Add(s.Price)
		if i >= window {
			sum = sum.Sub(samples[i-window].Price)
		}
		if i >= window-1 {
			values[i] = sum.Div(div)
			ok[i] = true
		}
	}
	return values, ok, nil
}

// Annotate derives short/long moving averages and a crossover signal for
// every row of a timestamp-sorted series. Pure; no I/O.
//
// BUY fires on an upward cross: previous short strictly below previous
// long and current short strictly above current long. SELL is the mirror.
// Everything else is HOLD, including rows where either average is still
// absent, the first row (no previous row), and crosses that touch exact
// equality.
func Annotate(samples []model.Sample, shortWindow, longWindow int) ([]model.AnnotatedSample, error) {
	shortMA, shortOK, err := MovingAverage(samples, shortWindow)
	if err != nil {
		return nil, err
	}
	longMA, longOK, err := MovingAverage(samples, longWindow)
	if err != nil {
		return nil, err
	}

	out := make([]model.AnnotatedSample, len(samples))
	for i := range samples {
		row := model.AnnotatedSample{Sample: samples[i], Signal: model.SignalHold}
		if shortOK[i] {
			row.ShortMA = shortMA[i]
			row.ShortMAValid = true
		}
		if longOK[i] {
			row.LongMA = longMA[i]
			row.LongMAValid = true
		}
		if i > 0 && shortOK[i-1] && longOK[i-1] && shortOK[i] && longOK[i] {
			prev := shortMA[i-1].Cmp(longMA[i-1])
			cur := shortMA[i].Cmp(longMA[i])
			switch {
			case prev < 0 && cur > 0:
				row.Signal = model.SignalBuy
			case prev > 0 && cur < 0:
				row.Signal = model.SignalSell
			}
		}
		out[i] = row
	}
	return out, nil
}
