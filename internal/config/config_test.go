package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, 60, cfg.Recorder.IntervalSeconds)
	assert.Equal(t, "Asia/Tokyo", cfg.Recorder.Timezone)
	assert.Equal(t, "data/btc_prices.csv", cfg.Store.CSVPath)
	assert.Equal(t, 50, cfg.Strategy.ShortWindow)
	assert.Equal(t, 200, cfg.Strategy.LongWindow)
	assert.Equal(t, float64(1000000), cfg.Backtest.InitialCapital)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Minute, cfg.Interval())
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_source:
  symbol: ETHUSDT
recorder:
  interval_seconds: 30
  timezone: UTC
strategy:
  short_window: 5
  long_window: 20
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, 5, cfg.Strategy.ShortWindow)
	assert.Equal(t, 20, cfg.Strategy.LongWindow)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_source:\n  symbol: ETHUSDT\n"), 0o644))
	t.Setenv("SYMBOL", "SOLUSDT")
	t.Setenv("SHORT_WINDOW", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SOLUSDT", cfg.DataSource.Symbol)
	assert.Equal(t, 7, cfg.Strategy.ShortWindow)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_source: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Recorder.Timezone = "Not/AZone"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Strategy.ShortWindow = 200
	cfg.Strategy.LongWindow = 50
	assert.Error(t, cfg.Validate(), "short window must stay below long window")

	cfg = base()
	cfg.Recorder.IntervalSeconds = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Backtest.InitialCapital = -5
	assert.Error(t, cfg.Validate())
}
