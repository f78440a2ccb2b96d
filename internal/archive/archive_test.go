package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/autoops/kpiscope/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveStore_NoneBackend(t *testing.T) {
	store, err := New(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, schema.NoneBackend, store.Backend())

	// All operations are accepted and dropped.
	err = store.RecordRun(schema.ArchiveRun{RunID: "run-1"})
	assert.NoError(t, err)

	err = store.RecordObservations([]schema.ArchiveObservation{{RunID: "run-1", KPI: "Revenue"}})
	assert.NoError(t, err)

	runs, err := store.Runs()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Close())
}

func TestArchiveStore_UnsupportedBackend(t *testing.T) {
	_, err := New(schema.DatabaseBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func sqliteStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(schema.SQLiteBackend, filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestArchiveStore_SQLiteRunRoundTrip(t *testing.T) {
	store := sqliteStore(t)

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	run := schema.ArchiveRun{
		RunID:        "run-abc",
		SessionID:    "session_1_20250301_090000",
		Started:      started,
		Finished:     started.Add(2 * time.Second),
		DurationMs:   2000,
		State:        "Succeeded",
		RowsAnalyzed: 90,
		OverallScore: 8.4,
		Confidence:   7.9,
		ReportPath:   "kpi_report.md",
	}
	require.NoError(t, store.RecordRun(run))

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.SessionID, got.SessionID)
	assert.True(t, run.Started.Equal(got.Started))
	assert.True(t, run.Finished.Equal(got.Finished))
	assert.Equal(t, run.DurationMs, got.DurationMs)
	assert.Equal(t, run.State, got.State)
	assert.Equal(t, run.RowsAnalyzed, got.RowsAnalyzed)
	assert.InDelta(t, run.OverallScore, got.OverallScore, 0.001)
	assert.Equal(t, run.ReportPath, got.ReportPath)
}

func TestArchiveStore_SQLiteRunsNewestFirst(t *testing.T) {
	store := sqliteStore(t)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		require.NoError(t, store.RecordRun(schema.ArchiveRun{
			RunID:   id,
			Started: base.Add(time.Duration(i) * time.Hour),
			State:   "Succeeded",
		}))
	}

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-old", runs[2].RunID)
}

func TestArchiveStore_SQLiteObservations(t *testing.T) {
	store := sqliteStore(t)

	day1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	obs := []schema.ArchiveObservation{
		{RunID: "run-abc", Date: day2, KPI: "Revenue", Value: 1100},
		{RunID: "run-abc", Date: day1, KPI: "Revenue", Value: 1000},
		{RunID: "run-abc", Date: day1, KPI: "Customers", Value: 50},
	}
	require.NoError(t, store.RecordObservations(obs))

	got, err := store.Observations()
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by date then KPI.
	assert.Equal(t, "Customers", got[0].KPI)
	assert.True(t, day1.Equal(got[0].Date))
	assert.Equal(t, "Revenue", got[1].KPI)
	assert.True(t, day2.Equal(got[2].Date))
	assert.InDelta(t, 1100, got[2].Value, 0.001)
}

func TestArchiveStore_SQLiteClear(t *testing.T) {
	store := sqliteStore(t)

	require.NoError(t, store.RecordRun(schema.ArchiveRun{
		RunID:   "run-abc",
		Started: time.Now().UTC(),
		State:   "Succeeded",
	}))
	require.NoError(t, store.RecordObservations([]schema.ArchiveObservation{
		{RunID: "run-abc", Date: time.Now().UTC(), KPI: "Revenue", Value: 1},
	}))

	require.NoError(t, store.Clear())

	runs, err := store.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)

	obs, err := store.Observations()
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestArchiveStore_EmptyObservationsNoop(t *testing.T) {
	store := sqliteStore(t)
	assert.NoError(t, store.RecordObservations(nil))
}
