package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/Icebitz/trading-bot/internal/model"
)

// BandVolatility is the standard deviation of minute-over-minute percent
// change within one period of the day.
type BandVolatility struct {
	StartHour int
	EndHour   int // exclusive; 24 means end of day
	StdDevPct float64
	Samples   int
}

// Report holds price pattern statistics over a recorded series.
type Report struct {
	ThresholdPct float64
	SharpRises   int
	SharpDrops   int
	MaxRisePct   float64
	MaxDropPct   float64
	Bands        []BandVolatility
	NetChangePct float64
}

// FindPatterns computes pattern statistics from a timestamp-sorted series:
// counts of percent moves beyond the threshold, the extremes, volatility
// per 3-hour band of the day, and the net change start to end.
func FindPatterns(samples []model.Sample, thresholdPct float64) (*Report, error) {
	if len(samples) < 2 {
		return nil, errors.New("need at least two samples")
	}

	changes := make([]float64, 0, len(samples)-1)
	byBand := make(map[int][]float64)
	r := &Report{ThresholdPct: thresholdPct}

	for i := 1; i < len(samples); i++ {
		prev, _ := samples[i-1].Price.Float64()
		cur, _ := samples[i].Price.Float64()
		if prev == 0 {
			continue
		}
		pct := (cur - prev) / prev * 100
		changes = append(changes, pct)
		byBand[samples[i].Time.Hour()/3] = append(byBand[samples[i].Time.Hour()/3], pct)

		if pct > thresholdPct {
			r.SharpRises++
		}
		if pct < -thresholdPct {
			r.SharpDrops++
		}
		if pct > r.MaxRisePct {
			r.MaxRisePct = pct
		}
		if pct < r.MaxDropPct {
			r.MaxDropPct = pct
		}
	}

	for band := 0; band < 8; band++ {
		pcts := byBand[band]
		r.Bands = append(r.Bands, BandVolatility{
			StartHour: band * 3,
			EndHour:   band*3 + 3,
			StdDevPct: stddev(pcts),
			Samples:   len(pcts),
		})
	}

	first, _ := samples[0].Price.Float64()
	last, _ := samples[len(samples)-1].Price.Float64()
	if first != 0 {
		r.NetChangePct = (last - first) / first * 100
	}
	return r, nil
}

// Lines renders the report for display, one finding per line.
func (r *Report) Lines() []string {
	var lines []string
	if r.SharpRises > 0 {
		lines = append(lines, fmt.Sprintf("Sharp rises (>%.1f%%): %d times", r.ThresholdPct, r.SharpRises))
		lines = append(lines, fmt.Sprintf("Max increase: %.2f%%", r.MaxRisePct))
	}
	if r.SharpDrops > 0 {
		lines = append(lines, fmt.Sprintf("Sharp drops (<-%.1f%%): %d times", r.ThresholdPct, r.SharpDrops))
		lines = append(lines, fmt.Sprintf("Max decrease: %.2f%%", r.MaxDropPct))
	}
	for _, b := range r.Bands {
		if b.Samples == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("Volatility (%02d:00 - %02d:00): %.2f%%", b.StartHour, b.EndHour, b.StdDevPct))
	}
	lines = append(lines, fmt.Sprintf("Total price change: %.2f%%", r.NetChangePct))
	return lines
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	// Sample standard deviation, matching pandas' default ddof=1.
	variance /= float64(len(xs) - 1)
	return math.Sqrt(variance)
}
