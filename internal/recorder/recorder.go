package recorder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/metrics"
	"github.com/Icebitz/trading-bot/internal/model"
	"github.com/Icebitz/trading-bot/internal/source"
	"github.com/Icebitz/trading-bot/internal/store"
)

// After this many consecutive fetch failures, reporting escalates from
// debug to warning. Observability policy only; there is no in-tick retry.
const maxConsecutiveFailures = 3

// Config holds the recorder's polling policy.
type Config struct {
	Symbol string
	// Interval between ticks. One sample is recorded per interval;
	// default one minute.
	Interval time.Duration
	// Location is the reference timezone for minute alignment. It must
	// match what downstream consumers of the series assume.
	Location *time.Location
	// LogInterval throttles the heartbeat log line.
	LogInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.LogInterval <= 0 {
		c.LogInterval = 30 * time.Minute
	}
	return c
}

// Recorder keeps the persisted series current and gap-free: it polls the
// price source once per interval, detects missing minutes against the
// store's tail, backfills them from the historical endpoint, and commits
// everything in a single merge. Each tick re-derives what is missing from
// the store, so the loop self-corrects after downtime or restart. One
// Recorder per series; the store is not built for concurrent writers.
type Recorder struct {
	src  source.PriceSource
	st   store.Store
	mets *metrics.Metrics
	cfg  Config

	cron *cron.Cron
	ctx  context.Context

	consecutiveFailures int
	lastHeartbeat       time.Time
	now                 func() time.Time
}

func New(ctx context.Context, src source.PriceSource, st store.Store, mets *metrics.Metrics, cfg Config) *Recorder {
	return &Recorder{
		src:  src,
		st:   st,
		mets: mets,
		cfg:  cfg.withDefaults(),
		cron: cron.New(),
		ctx:  ctx,
		now:  time.Now,
	}
}

// Start runs one tick immediately, then schedules the loop.
func (r *Recorder) Start() error {
	r.Tick(r.ctx)
	spec := fmt.Sprintf("@every %s", r.cfg.Interval)
	if _, err := r.cron.AddFunc(spec, func() { r.Tick(r.ctx) }); err != nil {
		return fmt.Errorf("schedule recorder: %w", err)
	}
	r.cron.Start()
	log.Printf("[INFO] recorder started: %s every %s via %s", r.cfg.Symbol, r.cfg.Interval, r.src.Name())
	return nil
}

// Stop halts the schedule and waits for a running tick to finish, so the
// series is never left to a half-written tick.
func (r *Recorder) Stop() {
	<-r.cron.Stop().Done()
	log.Println("[INFO] recorder stopped")
}

// Tick executes one pass of the polling state machine. All failures are
// recovered here; nothing propagates into the next tick except the
// consecutive-failure counter used for log escalation.
func (r *Recorder) Tick(ctx context.Context) {
	started := time.Now()
	if r.mets != nil {
		r.mets.TicksTotal.Inc()
		defer func() { r.mets.TickDuration.Observe(time.Since(started).Seconds()) }()
	}

	price, err := r.src.CurrentPrice(ctx, r.cfg.Symbol)
	if err != nil {
		r.consecutiveFailures++
		if r.mets != nil {
			r.mets.FetchFailures.Inc()
		}
		if r.consecutiveFailures >= maxConsecutiveFailures {
			log.Printf("[WARN] fetch price (attempt %d): %v", r.consecutiveFailures, err)
		} else {
			log.Printf("[DEBUG] fetch price (attempt %d): %v", r.consecutiveFailures, err)
		}
		return
	}
	r.consecutiveFailures = 0

	now := r.now().In(r.cfg.Location).Truncate(time.Minute)

	rows := make([]model.Sample, 0, 1)
	if last, ok := r.st.LastTimestamp(); ok {
		expected := last.Add(time.Minute)
		switch {
		case last.After(now):
			// Local clock or stored data is ahead; there is nothing to
			// backfill into the future. Record the current minute anyway.
			if r.mets != nil {
				r.mets.ClockSkewEvents.Inc()
			}
			log.Printf("[WARN] clock skew: last=%s expected_next=%s now=%s",
				last.Format(store.TimeFormat), expected.Format(store.TimeFormat), now.Format(store.TimeFormat))
		case expected.Before(now):
			rows = append(rows, r.backfill(ctx, expected, now)...)
		}
	}

	// The current minute always comes from the live fetch, never the
	// historical source.
	rows = append(rows, model.Sample{Time: now, Price: price.Round(2)})

	if err := r.st.Append(rows); err != nil {
		if r.mets != nil {
			r.mets.StoreErrors.Inc()
		}
		log.Printf("[ERROR] append %d samples: %v", len(rows), err)
		return
	}

	r.heartbeat(price)
}

// backfill fetches per-minute closes for [from, until) and aligns them to
// the reference zone. A failed or empty fetch skips backfill for this
// tick; missing values are never interpolated.
func (r *Recorder) backfill(ctx context.Context, from, until time.Time) []model.Sample {
	if r.mets != nil {
		r.mets.GapsDetected.Inc()
	}
	hist, err := r.src.MinuteCloses(ctx, r.cfg.Symbol, from, until)
	if err != nil {
		log.Printf("[WARN] historical fetch [%s, %s): %v; skipping backfill",
			from.Format(store.TimeFormat), until.Format(store.TimeFormat), err)
		return nil
	}
	if len(hist) == 0 {
		return nil
	}

	rows := make([]model.Sample, 0, len(hist))
	for _, h := range hist {
		ts := h.Time.In(r.cfg.Location).Truncate(time.Minute)
		if !ts.Before(until) {
			continue
		}
		rows = append(rows, model.Sample{Time: ts, Price: h.Price.Round(2)})
	}
	if r.mets != nil {
		r.mets.BackfilledSamples.Add(float64(len(rows)))
	}
	return rows
}

func (r *Recorder) heartbeat(price decimal.Decimal) {
	if time.Since(r.lastHeartbeat) < r.cfg.LogInterval {
		return
	}
	log.Printf("[INFO] %s: $%s", r.cfg.Symbol, price.StringFixed(2))
	r.lastHeartbeat = time.Now()
}
