package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/config"
	"github.com/Icebitz/trading-bot/internal/metrics"
	"github.com/Icebitz/trading-bot/internal/monitor"
	"github.com/Icebitz/trading-bot/internal/recorder"
	"github.com/Icebitz/trading-bot/internal/source"
	"github.com/Icebitz/trading-bot/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] recorderd starting...")

	// Load config
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

	// Init price source
	var src source.PriceSource
	if cfg.DataSource.MockPrice != "" {
		price, err := decimal.NewFromString(cfg.DataSource.MockPrice)
		if err != nil {
			log.Fatalf("[FATAL] parse mock price: %v", err)
		}
		src = &source.Mock{Price: price}
	} else {
		src = source.NewBinanceSource(cfg.DataSource.Proxy)
	}
	log.Printf("[INFO] price source: %s, symbol: %s", src.Name(), cfg.DataSource.Symbol)

	// Init series store; a store that cannot be created is fatal.
	var st store.Store
	if cfg.Store.SQLitePath != "" {
		st, err = store.NewSQLiteStore(cfg.Store.SQLitePath, loc)
	} else {
		st, err = store.NewCSVStore(cfg.Store.CSVPath, loc)
	}
	if err != nil {
		log.Fatalf("[FATAL] init series store: %v", err)
	}
	defer st.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	mets := metrics.New()
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", mets.Handler())
		go func() {
			log.Printf("[INFO] metrics listening on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("[ERROR] metrics listener: %v", err)
			}
		}()
	}

	// Init recorder
	rec := recorder.New(ctx, src, st, mets, recorder.Config{
		Symbol:      cfg.DataSource.Symbol,
		Interval:    cfg.Interval(),
		Location:    loc,
		LogInterval: cfg.LogInterval(),
	})
	if err := rec.Start(); err != nil {
		log.Fatalf("[FATAL] start recorder: %v", err)
	}
	defer rec.Stop()

	// Init signal monitor
	if !cfg.Monitor.Disabled {
		mon := monitor.New(st, monitor.LogNotifier{}, cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow, cfg.Interval())
		if err := mon.Start(); err != nil {
			log.Fatalf("[FATAL] start monitor: %v", err)
		}
		defer mon.Stop()
	}

	log.Println("[INFO] recorderd is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] recorderd stopped")
}
