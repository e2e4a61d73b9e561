package model

import "github.com/shopspring/decimal"

// Signal is the per-row trading decision derived from a crossover.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// AnnotatedSample extends a Sample with moving averages and a signal.
// ShortMA/LongMA are only meaningful when the matching Valid flag is set;
// the first window-1 rows of a series have no average yet.
type AnnotatedSample struct {
	Sample
	ShortMA      decimal.Decimal
	ShortMAValid bool
	LongMA       decimal.Decimal
	LongMAValid  bool
	Signal       Signal
}
