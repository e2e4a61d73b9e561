package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Icebitz/trading-bot/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prices.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStoreMergeInvariants(t *testing.T) {
	st := newTestSQLiteStore(t)

	require.NoError(t, st.Append([]model.Sample{
		sample(t, "2025-01-06 10:02:00", "101.00"),
		sample(t, "2025-01-06 10:00:00", "100.00"),
	}))
	require.NoError(t, st.Append([]model.Sample{
		sample(t, "2025-01-06 10:02:00", "102.00"),
		sample(t, "2025-01-06 10:01:00", "100.50"),
	}))

	got, err := st.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Time.Before(got[i].Time))
	}
	assert.Equal(t, "102.00", got[2].Price.StringFixed(2), "duplicate timestamp keeps the newest value")
}

func TestSQLiteStoreLastTimestampAndGaps(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, ok := st.LastTimestamp()
	assert.False(t, ok)

	require.NoError(t, st.Append([]model.Sample{
		sample(t, "2025-01-06 10:00:00", "100.00"),
		sample(t, "2025-01-06 10:01:00", "101.00"),
		sample(t, "2025-01-06 10:05:00", "105.00"),
	}))

	last, ok := st.LastTimestamp()
	require.True(t, ok)
	assert.Equal(t, "2025-01-06 10:05:00", last.Format(TimeFormat))

	gaps, err := st.RecognizeGaps(time.Minute)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "2025-01-06 10:01:00", gaps[0].Start.Format(TimeFormat))
	assert.Equal(t, "2025-01-06 10:05:00", gaps[0].End.Format(TimeFormat))
}

func TestSQLiteStoreAppendIsIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	batch := []model.Sample{
		sample(t, "2025-01-06 10:00:00", "100.00"),
		sample(t, "2025-01-06 10:01:00", "100.50"),
	}

	require.NoError(t, st.Append(batch))
	first, err := st.ReadAll()
	require.NoError(t, err)

	require.NoError(t, st.Append(batch))
	second, err := st.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Time.Equal(second[i].Time))
		assert.True(t, first[i].Price.Equal(second[i].Price))
	}
}
