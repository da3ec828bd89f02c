package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RecordQuery(t *testing.T) {
	r := newTestRecorder(t)

	require.NoError(t, r.RecordQuery(&QueryEvent{
		Timestamp: time.Now(),
		Ticker:    "AAPL",
		StartDate: "2023-01-01",
		EndDate:   "2023-06-30",
		Rows:      124,
		Duration:  850 * time.Millisecond,
	}))
	require.NoError(t, r.RecordQuery(&QueryEvent{Ticker: "NOPE", Empty: true}))

	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var (
		id         string
		rows       int
		durationMS int64
	)
	require.NoError(t, r.db.QueryRow(
		`SELECT id, row_count, duration_ms FROM query_journal WHERE ticker = ?`, "AAPL",
	).Scan(&id, &rows, &durationMS))
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, 124, rows)
	assert.Equal(t, int64(850), durationMS)
}

func TestSQLiteRecorder_PruneBefore(t *testing.T) {
	r := newTestRecorder(t)
	now := time.Now()

	for _, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour} {
		require.NoError(t, r.RecordQuery(&QueryEvent{Timestamp: now.Add(-age), Ticker: "MSFT"}))
	}

	removed, err := r.PruneBefore(now.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteRecorder_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordQuery(&QueryEvent{Ticker: "ETH-USD"}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordQuery(&QueryEvent{Ticker: "AAPL"}))
	n, err := r.PruneBefore(time.Now())
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, r.Close())
}
