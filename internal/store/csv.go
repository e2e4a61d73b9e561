package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Icebitz/trading-bot/internal/model"
)

// CSVStore persists the series as a flat two-column CSV: a header row,
// then ascending minute-aligned timestamps with 2-decimal prices. This is
// the contract downstream readers depend on.
type CSVStore struct {
	path string
	loc  *time.Location
	mu   sync.Mutex
}

// NewCSVStore prepares a CSV-backed store at path. Timestamps are written
// and parsed in loc; the file itself is created on first append.
func NewCSVStore(path string, loc *time.Location) (*CSVStore, error) {
	if loc == nil {
		loc = time.UTC
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &CSVStore{path: path, loc: loc}, nil
}

func (s *CSVStore) Append(samples []model.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return err
	}
	return s.writeAll(merge(existing, samples))
}

func (s *CSVStore) LastTimestamp() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples, err := s.readAll()
	if err != nil || len(samples) == 0 {
		return time.Time{}, false
	}
	return samples[len(samples)-1].Time, true
}

func (s *CSVStore) ReadAll() ([]model.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *CSVStore) RecognizeGaps(expected time.Duration) ([]model.GapPeriod, error) {
	samples, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	return findGaps(samples, expected), nil
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) readAll() ([]model.Sample, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	// Header row.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrUnavailable, err)
	}

	var samples []model.Sample
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrUnavailable, err)
		}
		ts, err := time.ParseInLocation(TimeFormat, record[0], s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q: %v", ErrUnavailable, record[0], err)
		}
		price, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad price %q: %v", ErrUnavailable, record[1], err)
		}
		samples = append(samples, model.Sample{Time: ts, Price: price})
	}
	model.SortSamples(samples)
	return samples, nil
}

// writeAll rewrites the whole file through a temp file in the same
// directory so readers never observe a partial series.
func (s *CSVStore) writeAll(samples []model.Sample) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".prices-*.csv")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"timestamp", "price"}); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write header: %v", ErrUnavailable, err)
	}
	for _, smp := range samples {
		row := []string{smp.Time.In(s.loc).Format(TimeFormat), smp.Price.StringFixed(2)}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: write row: %v", ErrUnavailable, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: flush: %v", ErrUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrUnavailable, err)
	}
	return nil
}
