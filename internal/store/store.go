package store

import (
	"errors"
	"time"

	"github.com/Icebitz/trading-bot/internal/model"
)

// ErrUnavailable indicates the backing medium could not be read or written.
// A recorder tick that hits it abandons persistence and moves on.
var ErrUnavailable = errors.New("series store unavailable")

// TimeFormat is the single accepted timestamp layout for the persisted
// series. Rows in any other format are rejected, not guessed at.
const TimeFormat = "2006-01-02 15:04:05"

// Store owns the persisted price series. All reads and writes go through
// it so the ordering and dedup invariants hold regardless of caller.
// Implementations are safe for one writer plus snapshot readers.
type Store interface {
	// Append merges samples into the series, re-sorts by timestamp and
	// collapses duplicate timestamps keeping the most recently supplied
	// value. Either the merged result is committed in full or the store
	// is left unchanged.
	Append(samples []model.Sample) error
	// LastTimestamp returns the newest stored timestamp. Absent when the
	// store is empty or unreadable; callers start fresh at now.
	LastTimestamp() (time.Time, bool)
	// ReadAll returns the full series sorted ascending by timestamp.
	ReadAll() ([]model.Sample, error)
	// RecognizeGaps scans consecutive samples and reports the periods
	// where the spacing exceeds expected*1.5, in chronological order.
	RecognizeGaps(expected time.Duration) ([]model.GapPeriod, error)
	Close() error
}

// merge combines existing and incoming samples. Duplicate timestamps keep
// the incoming value (last-write-wins); the result is sorted ascending.
func merge(existing, incoming []model.Sample) []model.Sample {
	byTime := make(map[int64]model.Sample, len(existing)+len(incoming))
	for _, s := range existing {
		byTime[s.Time.Unix()] = s
	}
	for _, s := range incoming {
		byTime[s.Time.Unix()] = s
	}
	out := make([]model.Sample, 0, len(byTime))
	for _, s := range byTime {
		out = append(out, s)
	}
	model.SortSamples(out)
	return out
}

// findGaps declares a gap when the actual spacing exceeds expected*1.5.
// The 1.5x margin absorbs poll scheduler jitter without flagging normal
// variance.
func findGaps(samples []model.Sample, expected time.Duration) []model.GapPeriod {
	threshold := expected + expected/2
	var gaps []model.GapPeriod
	for i := 0; i+1 < len(samples); i++ {
		if samples[i+1].Time.Sub(samples[i].Time) > threshold {
			gaps = append(gaps, model.GapPeriod{Start: samples[i].Time, End: samples[i+1].Time})
		}
	}
	return gaps
}
