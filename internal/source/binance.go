package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/model"
)

// Binance returns up to 1000 candles per klines request.
const klinesPageLimit = 1000

// BinanceSource implements PriceSource against the Binance spot API.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a public-endpoint client with optional proxy
// support. No API key is needed for ticker prices or klines.
func NewBinanceSource(proxyURL string) *BinanceSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := binance.NewClient("", "")
	client.HTTPClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
	return &BinanceSource{client: client}
}

func (b *BinanceSource) Name() string { return "binance" }

func (b *BinanceSource) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: ticker price: %v", ErrUnavailable, err)
	}
	if len(prices) == 0 {
		return decimal.Zero, fmt.Errorf("%w: ticker price: empty response for %s", ErrUnavailable, symbol)
	}
	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed price %q: %v", ErrUnavailable, prices[0].Price, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive price %s for %s", ErrUnavailable, price, symbol)
	}
	return price, nil
}

func (b *BinanceSource) MinuteCloses(ctx context.Context, symbol string, start, end time.Time) ([]model.Sample, error) {
	if !start.Before(end) {
		return nil, nil
	}
	startMs := start.UnixMilli()
	endMs := end.UnixMilli()

	var out []model.Sample
	cur := startMs
	for cur < endMs {
		kls, err := b.client.NewKlinesService().
			Symbol(symbol).
			Interval("1m").
			StartTime(cur).
			EndTime(endMs).
			Limit(klinesPageLimit).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: klines: %v", ErrUnavailable, err)
		}
		if len(kls) == 0 {
			break
		}
		for _, k := range kls {
			if k.OpenTime >= endMs {
				continue
			}
			closePrice, err := decimal.NewFromString(k.Close)
			if err != nil {
				return nil, fmt.Errorf("%w: malformed close %q: %v", ErrUnavailable, k.Close, err)
			}
			out = append(out, model.Sample{
				Time:  time.UnixMilli(k.OpenTime).UTC(),
				Price: closePrice.Round(2),
			})
		}
		// Next page starts one candle past the last returned open time.
		cur = kls[len(kls)-1].OpenTime + 60_000
		if len(kls) < klinesPageLimit {
			break
		}
	}
	return out, nil
}
