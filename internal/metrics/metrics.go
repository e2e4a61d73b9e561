package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the recorder's Prometheus instruments. Each instance owns
// its registry so tests can construct them freely.
type Metrics struct {
	TicksTotal        prometheus.Counter
	FetchFailures     prometheus.Counter
	StoreErrors       prometheus.Counter
	GapsDetected      prometheus.Counter
	BackfilledSamples prometheus.Counter
	ClockSkewEvents   prometheus.Counter
	TickDuration      prometheus.Histogram

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recorder_ticks_total",
			Help: "Polling ticks executed.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recorder_fetch_failures_total",
			Help: "Current-price fetches that failed.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recorder_store_errors_total",
			Help: "Ticks whose persistence was abandoned on a store error.",
		}),
		GapsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recorder_gaps_detected_total",
			Help: "Ticks that found missing minutes before now.",
		}),
		BackfilledSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recorder_backfilled_samples_total",
			Help: "Historical samples merged into the series.",
		}),
		ClockSkewEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recorder_clock_skew_total",
			Help: "Ticks where the expected next timestamp was in the future.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recorder_tick_duration_seconds",
			Help:    "Wall time of one recorder tick.",
			Buckets: prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.TicksTotal, m.FetchFailures, m.StoreErrors,
		m.GapsDetected, m.BackfilledSamples, m.ClockSkewEvents,
		m.TickDuration,
	)
	return m
}

// Handler serves this instance's registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
