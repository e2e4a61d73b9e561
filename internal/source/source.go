package source

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/model"
)

// ErrUnavailable indicates a network/HTTP failure or a malformed response
// from the venue. Non-fatal; the recorder retries on its next tick.
var ErrUnavailable = errors.New("price source unavailable")

// PriceSource supplies spot prices and historical per-minute closes for
// one venue. Implementations are selected at construction time.
type PriceSource interface {
	// CurrentPrice returns the latest spot price for symbol.
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// MinuteCloses returns per-minute close prices in [start, end), keyed
	// by candle open time, oldest first. It never returns future data; an
	// empty result is a valid "nothing available".
	MinuteCloses(ctx context.Context, symbol string, start, end time.Time) ([]model.Sample, error)
	Name() string
}

// Mock returns controllable fixed data for development and testing.
type Mock struct {
	Price      decimal.Decimal
	History    []model.Sample
	PriceErr   error
	HistoryErr error

	PriceCalls   int
	HistoryCalls int
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) CurrentPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	m.PriceCalls++
	if m.PriceErr != nil {
		return decimal.Zero, m.PriceErr
	}
	return m.Price, nil
}

func (m *Mock) MinuteCloses(_ context.Context, _ string, start, end time.Time) ([]model.Sample, error) {
	m.HistoryCalls++
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	var out []model.Sample
	for _, s := range m.History {
		if !s.Time.Before(start) && s.Time.Before(end) {
			out = append(out, s)
		}
	}
	return out, nil
}
