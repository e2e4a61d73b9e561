// Package report renders derived views of the series. Its output is a
// reproducible cache of Series + window sizes, never a source of truth.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Icebitz/trading-bot/internal/model"
	"github.com/Icebitz/trading-bot/internal/store"
)

// WriteAnnotatedCSV writes the annotated series as CSV: the persisted
// series columns plus short_ma, long_ma (empty while absent) and signal.
// Written atomically via temp file + rename, like the series store.
func WriteAnnotatedCSV(path string, rows []model.AnnotatedSample, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".annotated-*.csv")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"timestamp", "price", "short_ma", "long_ma", "signal"}); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		shortMA, longMA := "", ""
		if row.ShortMAValid {
			shortMA = row.ShortMA.StringFixed(2)
		}
		if row.LongMAValid {
			longMA = row.LongMA.StringFixed(2)
		}
		record := []string{
			row.Time.In(loc).Format(store.TimeFormat),
			row.Price.StringFixed(2),
			shortMA,
			longMA,
			string(row.Signal),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
