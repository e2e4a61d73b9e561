package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Icebitz/trading-bot/internal/model"
)

// SQLiteStore persists the series in a single SQLite table keyed by
// timestamp. The primary key gives dedup for free; Append upserts inside
// one transaction so a tick's write is all-or-nothing.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
	mu  sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, loc *time.Location) (*SQLiteStore, error) {
	if loc == nil {
		loc = time.UTC
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers can follow the series while the
	// recorder writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	stmt := `CREATE TABLE IF NOT EXISTS prices (
		timestamp INTEGER PRIMARY KEY,
		price     TEXT NOT NULL
	)`
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite series store opened: %s", dbPath)
	return &SQLiteStore{db: db, loc: loc}, nil
}

func (s *SQLiteStore) Append(samples []model.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO prices (timestamp, price) VALUES (?, ?)
		ON CONFLICT(timestamp) DO UPDATE SET price = excluded.price`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: prepare: %v", ErrUnavailable, err)
	}
	defer stmt.Close()

	for _, smp := range samples {
		if _, err := stmt.Exec(smp.Time.Unix(), smp.Price.StringFixed(2)); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: upsert: %v", ErrUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) LastTimestamp() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unix int64
	err := s.db.QueryRow(`SELECT timestamp FROM prices ORDER BY timestamp DESC LIMIT 1`).Scan(&unix)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).In(s.loc), true
}

func (s *SQLiteStore) ReadAll() ([]model.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT timestamp, price FROM prices ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var samples []model.Sample
	for rows.Next() {
		var unix int64
		var priceText string
		if err := rows.Scan(&unix, &priceText); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
		}
		price, err := decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("%w: bad price %q: %v", ErrUnavailable, priceText, err)
		}
		samples = append(samples, model.Sample{Time: time.Unix(unix, 0).In(s.loc), Price: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", ErrUnavailable, err)
	}
	return samples, nil
}

func (s *SQLiteStore) RecognizeGaps(expected time.Duration) ([]model.GapPeriod, error) {
	samples, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	return findGaps(samples, expected), nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite series store")
	return s.db.Close()
}
