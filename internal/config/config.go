package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Symbol string `yaml:"symbol"`
		Proxy  string `yaml:"proxy"`
		// MockPrice pins the source to a fixed price for offline runs.
		MockPrice string `yaml:"mock_price"`
	} `yaml:"data_source"`
	Recorder struct {
		IntervalSeconds    int `yaml:"interval_seconds"`
		LogIntervalSeconds int `yaml:"log_interval_seconds"`
		// Timezone is the reference zone for minute alignment. The
		// recorder, backfill and every series consumer must agree on it.
		Timezone string `yaml:"timezone"`
	} `yaml:"recorder"`
	Store struct {
		CSVPath       string `yaml:"csv_path"`
		SQLitePath    string `yaml:"sqlite_path"`
		AnnotatedPath string `yaml:"annotated_path"`
	} `yaml:"store"`
	Strategy struct {
		ShortWindow int `yaml:"short_window"`
		LongWindow  int `yaml:"long_window"`
	} `yaml:"strategy"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital"`
	} `yaml:"backtest"`
	Monitor struct {
		Disabled bool `yaml:"disabled"`
	} `yaml:"monitor"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; env vars and defaults
// suffice for a bare deployment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.DataSource.Proxy = v
	}
	if v := os.Getenv("MOCK_PRICE"); v != "" {
		cfg.DataSource.MockPrice = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		cfg.Store.CSVPath = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("SHORT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Strategy.ShortWindow = n
		}
	}
	if v := os.Getenv("LONG_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Strategy.LongWindow = n
		}
	}
	if v := os.Getenv("RECORD_TIMEZONE"); v != "" {
		cfg.Recorder.Timezone = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}

	// Defaults
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "BTCUSDT"
	}
	if cfg.Recorder.IntervalSeconds == 0 {
		cfg.Recorder.IntervalSeconds = 60
	}
	if cfg.Recorder.LogIntervalSeconds == 0 {
		cfg.Recorder.LogIntervalSeconds = 1800
	}
	if cfg.Recorder.Timezone == "" {
		cfg.Recorder.Timezone = "Asia/Tokyo"
	}
	if cfg.Store.CSVPath == "" {
		cfg.Store.CSVPath = "data/btc_prices.csv"
	}
	if cfg.Store.AnnotatedPath == "" {
		cfg.Store.AnnotatedPath = "data/btc_prices_annotated.csv"
	}
	if cfg.Strategy.ShortWindow == 0 {
		cfg.Strategy.ShortWindow = 50
	}
	if cfg.Strategy.LongWindow == 0 {
		cfg.Strategy.LongWindow = 200
	}
	if cfg.Backtest.InitialCapital == 0 {
		cfg.Backtest.InitialCapital = 1000000
	}

	return cfg, nil
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if c.Recorder.IntervalSeconds <= 0 {
		return fmt.Errorf("recorder.interval_seconds must be positive")
	}
	if _, err := time.LoadLocation(c.Recorder.Timezone); err != nil {
		return fmt.Errorf("recorder.timezone: %w", err)
	}
	if c.Strategy.ShortWindow <= 0 || c.Strategy.LongWindow <= 0 {
		return fmt.Errorf("strategy windows must be positive")
	}
	if c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		return fmt.Errorf("strategy.short_window must be smaller than long_window")
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	return nil
}

// Location resolves the reference timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Recorder.Timezone)
}

// Interval returns the polling cadence.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Recorder.IntervalSeconds) * time.Second
}

// LogInterval returns the heartbeat-log throttle.
func (c *Config) LogInterval() time.Duration {
	return time.Duration(c.Recorder.LogIntervalSeconds) * time.Second
}
