package monitor

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Icebitz/trading-bot/internal/model"
	"github.com/Icebitz/trading-bot/internal/store"
	"github.com/Icebitz/trading-bot/internal/strategy"
)

// Notifier delivers a signal line to wherever the operator watches.
// Actual chat transports live outside this module.
type Notifier interface {
	SendText(text string) error
}

// LogNotifier writes signal lines to the process log.
type LogNotifier struct{}

func (LogNotifier) SendText(text string) error {
	log.Printf("[INFO] *** %s ***", text)
	return nil
}

// Monitor periodically snapshots the store, recomputes crossover signals
// and notifies once per BUY/SELL transition. A return to HOLD re-arms it,
// so the same signal is not repeated every check.
type Monitor struct {
	st          store.Store
	notifier    Notifier
	shortWindow int
	longWindow  int
	interval    time.Duration

	cron       *cron.Cron
	lastSignal model.Signal
}

func New(st store.Store, notifier Notifier, shortWindow, longWindow int, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		st:          st,
		notifier:    notifier,
		shortWindow: shortWindow,
		longWindow:  longWindow,
		interval:    interval,
		cron:        cron.New(),
	}
}

func (m *Monitor) Start() error {
	spec := fmt.Sprintf("@every %s", m.interval)
	if _, err := m.cron.AddFunc(spec, m.Check); err != nil {
		return fmt.Errorf("schedule monitor: %w", err)
	}
	m.cron.Start()
	log.Printf("[INFO] signal monitor started: windows %d/%d every %s", m.shortWindow, m.longWindow, m.interval)
	return nil
}

func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
	log.Println("[INFO] signal monitor stopped")
}

// Check runs one monitoring pass over a consistent snapshot of the store.
func (m *Monitor) Check() {
	samples, err := m.st.ReadAll()
	if err != nil {
		log.Printf("[WARN] monitor read series: %v", err)
		return
	}
	if len(samples) == 0 {
		return
	}

	annotated, err := strategy.Annotate(samples, m.shortWindow, m.longWindow)
	if err != nil {
		log.Printf("[WARN] monitor annotate: %v", err)
		return
	}

	latest := annotated[len(annotated)-1]
	switch latest.Signal {
	case model.SignalBuy, model.SignalSell:
		if latest.Signal == m.lastSignal {
			return
		}
		if err := m.notifier.SendText(formatSignal(latest)); err != nil {
			log.Printf("[WARN] monitor notify: %v", err)
			return
		}
		m.lastSignal = latest.Signal
	default:
		m.lastSignal = ""
	}
}

func formatSignal(row model.AnnotatedSample) string {
	shortMA, longMA := "N/A", "N/A"
	if row.ShortMAValid {
		shortMA = row.ShortMA.StringFixed(2)
	}
	if row.LongMAValid {
		longMA = row.LongMA.StringFixed(2)
	}
	return fmt.Sprintf("[%s] %s SIGNAL | Price: $%s | Short MA: %s | Long MA: %s",
		row.Time.Format(store.TimeFormat), row.Signal, row.Price.StringFixed(2), shortMA, longMA)
}
