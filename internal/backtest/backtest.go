package backtest

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/model"
)

// ErrEmptySeries is returned when a replay is given zero rows; there is
// no meaningful final value to report.
var ErrEmptySeries = errors.New("empty series")

var hundred = decimal.NewFromInt(100)

// Result summarizes one backtest run.
type Result struct {
	FinalValue     decimal.Decimal
	TotalReturnPct decimal.Decimal
	// MaxDrawdown is the largest proportional decline from the running
	// portfolio peak, as a fraction in [0, 1].
	MaxDrawdown decimal.Decimal
	// WinRate counts BUY rows immediately following a SELL row, divided
	// by total row count. A crude adjacency proxy, not a realized-trade
	// profit ratio.
	WinRate     decimal.Decimal
	EndPosition int
	// Trace holds the portfolio value after each input row, one entry
	// per row.
	Trace []decimal.Decimal
}

// Run replays an annotated series through a single-unit long/flat model:
// BUY opens the position at the row's price, SELL closes it, no fees or
// slippage. Pure function of its inputs.
func Run(rows []model.AnnotatedSample, initialCapital decimal.Decimal) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySeries
	}
	if !initialCapital.IsPositive() {
		return nil, errors.New("initial capital must be positive")
	}

	cash := initialCapital
	position := 0
	trace := make([]decimal.Decimal, 0, len(rows))

	for _, row := range rows {
		switch {
		case row.Signal == model.SignalBuy && position == 0:
			position = 1
			cash = cash.Sub(row.Price)
		case row.Signal == model.SignalSell && position == 1:
			position = 0
			cash = cash.Add(row.Price)
		}
		value := cash
		if position == 1 {
			value = cash.Add(row.Price)
		}
		trace = append(trace, value)
	}

	final := trace[len(trace)-1]
	return &Result{
		FinalValue:     final,
		TotalReturnPct: final.Sub(initialCapital).Div(initialCapital).Mul(hundred),
		MaxDrawdown:    MaxDrawdown(trace),
		WinRate:        winRate(rows),
		EndPosition:    position,
		Trace:          trace,
	}, nil
}

// MaxDrawdown tracks a running peak over the trace and reports the
// largest (peak-value)/peak seen.
func MaxDrawdown(trace []decimal.Decimal) decimal.Decimal {
	maxDD := decimal.Zero
	if len(trace) == 0 {
		return maxDD
	}
	peak := trace[0]
	for _, v := range trace {
		if v.GreaterThan(peak) {
			peak = v
		}
		if peak.IsPositive() {
			if dd := peak.Sub(v).Div(peak); dd.GreaterThan(maxDD) {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func winRate(rows []model.AnnotatedSample) decimal.Decimal {
	wins := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].Signal == model.SignalBuy && rows[i-1].Signal == model.SignalSell {
			wins++
		}
	}
	return decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(len(rows))))
}
