package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/analysis"
	"github.com/Icebitz/trading-bot/internal/backtest"
	"github.com/Icebitz/trading-bot/internal/config"
	"github.com/Icebitz/trading-bot/internal/report"
	"github.com/Icebitz/trading-bot/internal/store"
	"github.com/Icebitz/trading-bot/internal/strategy"
)

// Replays the recorded series through the crossover strategy, prints the
// performance summary and pattern report, and writes the annotated CSV.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] load timezone: %v", err)
	}

	var st store.Store
	if cfg.Store.SQLitePath != "" {
		st, err = store.NewSQLiteStore(cfg.Store.SQLitePath, loc)
	} else {
		st, err = store.NewCSVStore(cfg.Store.CSVPath, loc)
	}
	if err != nil {
		log.Fatalf("[FATAL] open series store: %v", err)
	}
	defer st.Close()

	samples, err := st.ReadAll()
	if err != nil {
		log.Fatalf("[FATAL] read series: %v", err)
	}

	gaps, err := st.RecognizeGaps(cfg.Interval())
	if err != nil {
		log.Fatalf("[FATAL] scan gaps: %v", err)
	}

	annotated, err := strategy.Annotate(samples, cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	if err != nil {
		log.Fatalf("[FATAL] annotate: %v", err)
	}

	result, err := backtest.Run(annotated, decimal.NewFromFloat(cfg.Backtest.InitialCapital))
	if errors.Is(err, backtest.ErrEmptySeries) {
		log.Fatalf("[FATAL] no recorded samples yet in %s", cfg.Store.CSVPath)
	}
	if err != nil {
		log.Fatalf("[FATAL] backtest: %v", err)
	}

	fmt.Printf("=== Backtest %s (MA %d/%d) ===\n", cfg.DataSource.Symbol, cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	fmt.Printf("Samples:       %d (%s .. %s)\n", len(samples),
		samples[0].Time.Format(store.TimeFormat), samples[len(samples)-1].Time.Format(store.TimeFormat))
	fmt.Printf("Gaps:          %d\n", len(gaps))
	for _, g := range gaps {
		fmt.Printf("  missing after %s until %s\n", g.Start.Format(store.TimeFormat), g.End.Format(store.TimeFormat))
	}
	fmt.Printf("Final value:   %s\n", result.FinalValue.StringFixed(2))
	fmt.Printf("Total return:  %s%%\n", result.TotalReturnPct.StringFixed(4))
	fmt.Printf("Max drawdown:  %s\n", result.MaxDrawdown.StringFixed(4))
	fmt.Printf("Win rate:      %s\n", result.WinRate.StringFixed(4))
	fmt.Printf("End position:  %d\n", result.EndPosition)

	if pat, err := analysis.FindPatterns(samples, 2.0); err == nil {
		fmt.Println("=== Patterns ===")
		for _, line := range pat.Lines() {
			fmt.Printf("  %s\n", line)
		}
	}

	if err := report.WriteAnnotatedCSV(cfg.Store.AnnotatedPath, annotated, loc); err != nil {
		log.Fatalf("[FATAL] write annotated csv: %v", err)
	}
	log.Printf("[INFO] annotated series written: %s", cfg.Store.AnnotatedPath)
}
