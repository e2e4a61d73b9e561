package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Sample is one persisted point of the price series.
// Timestamps are minute-aligned in the configured reference timezone;
// prices are rounded to 2 decimal places on write.
type Sample struct {
	Time  time.Time
	Price decimal.Decimal
}

// GapPeriod marks a hole in the series. Start is the last sample before
// the hole (exclusive), End the first sample after it (inclusive).
type GapPeriod struct {
	Start time.Time
	End   time.Time
}

// SortSamples orders samples ascending by timestamp in place.
func SortSamples(samples []Sample) {
	sort.Slice(samples, func(i, j int) bool { return samples[i].Time.Before(samples[j].Time) })
}
