package memstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "memory.json"))
}

func TestStoreSessionIDFormat(t *testing.T) {
	store := tempStore(t)

	id, err := store.StoreSession(schema.SessionPayload{
		DateRange: schema.DateRange{Start: "2025-01-01", End: "2025-01-31"},
		KPIs:      map[string]float64{"Revenue": 1000},
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^session_1_\d{8}_\d{6}$`), id)

	id2, err := store.StoreSession(schema.SessionPayload{})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^session_2_`), id2)
}

func TestStoreSessionRoundTrip(t *testing.T) {
	store := tempStore(t)

	payload := schema.SessionPayload{
		DateRange: schema.DateRange{Start: "2025-01-01", End: "2025-01-31"},
		KPIs:      map[string]float64{"Revenue": 1000, "Customers": 50},
		TopTrends: []schema.TrendRecord{{KPI: "Revenue", GrowthPct: 12.5}},
	}
	id, err := store.StoreSession(payload)
	require.NoError(t, err)

	sessions, err := store.RecentSessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, payload.DateRange, sessions[0].Payload.DateRange)
	assert.Equal(t, payload.KPIs, sessions[0].Payload.KPIs)
}

func TestRecentSessionsLimit(t *testing.T) {
	store := tempStore(t)
	for i := 0; i < 5; i++ {
		_, err := store.StoreSession(schema.SessionPayload{})
		require.NoError(t, err)
	}

	sessions, err := store.RecentSessions(3)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	// Oldest of the returned window first.
	assert.Regexp(t, `^session_3_`, sessions[0].ID)
	assert.Regexp(t, `^session_5_`, sessions[2].ID)
}

// TestStoreKPISnapshotUpsert checks last-write-wins per date and that
// re-running the same day is idempotent rather than duplicating.
func TestStoreKPISnapshotUpsert(t *testing.T) {
	store := tempStore(t)

	require.NoError(t, store.StoreKPISnapshot("2025-01-01", map[string]float64{"Revenue": 100}))
	require.NoError(t, store.StoreKPISnapshot("2025-01-01", map[string]float64{"Revenue": 200, "Customers": 5}))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KPIDatesTracked)

	comparison, err := store.CompareWithHistory(map[string]float64{"Revenue": 300}, 30)
	require.NoError(t, err)
	require.Contains(t, comparison, "Revenue")
	assert.InDelta(t, 200, comparison["Revenue"].HistoricalAvg, 0.001)
	assert.Equal(t, 1, comparison["Revenue"].DataPoints)
}

func TestCompareWithHistory(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.StoreKPISnapshotBatch(map[string]map[string]float64{
		"2025-01-01": {"Revenue": 100},
		"2025-01-02": {"Revenue": 200},
		"2025-01-03": {"Revenue": 300},
	}))

	comparison, err := store.CompareWithHistory(map[string]float64{"Revenue": 400, "Customers": 7}, 30)
	require.NoError(t, err)

	rev := comparison["Revenue"]
	assert.InDelta(t, 200, rev.HistoricalAvg, 0.001)
	assert.InDelta(t, 200, rev.Change, 0.001)
	assert.InDelta(t, 100, rev.ChangePct, 0.001)
	assert.Equal(t, 3, rev.DataPoints)

	// KPIs with no stored history are omitted, not zero-filled.
	assert.NotContains(t, comparison, "Customers")
}

// TestCompareWithHistoryLookbackWindow anchors the window at the latest
// stored date, so stale stores still compare against their own era.
func TestCompareWithHistoryLookbackWindow(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.StoreKPISnapshotBatch(map[string]map[string]float64{
		"2024-01-01": {"Revenue": 999},
		"2025-01-01": {"Revenue": 100},
		"2025-01-05": {"Revenue": 200},
	}))

	comparison, err := store.CompareWithHistory(map[string]float64{"Revenue": 300}, 30)
	require.NoError(t, err)

	// The 2024 snapshot falls outside the 30-day window ending 2025-01-05.
	rev := comparison["Revenue"]
	assert.InDelta(t, 150, rev.HistoricalAvg, 0.001)
	assert.Equal(t, 2, rev.DataPoints)
}

func TestCompareWithHistoryEmptyStore(t *testing.T) {
	store := tempStore(t)

	comparison, err := store.CompareWithHistory(map[string]float64{"Revenue": 100}, 30)
	require.NoError(t, err)
	assert.Empty(t, comparison)
}

func TestStoreInsight(t *testing.T) {
	store := tempStore(t)

	require.NoError(t, store.StoreInsight(schema.Insight{
		Category:  "correlation",
		Text:      "Marketing_Spend may drive Revenue",
		SessionID: "session_1_20250101_120000",
	}))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalInsights)
}

func TestStats(t *testing.T) {
	store := tempStore(t)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.TotalInsights)
	assert.Zero(t, stats.KPIDatesTracked)

	_, err = store.StoreSession(schema.SessionPayload{})
	require.NoError(t, err)
	require.NoError(t, store.StoreKPISnapshot("2025-01-01", map[string]float64{"Revenue": 1}))

	stats, err = store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.KPIDatesTracked)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store := Open(path)

	_, err := store.Stats()
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrCorruptMemory))

	_, err = store.StoreSession(schema.SessionPayload{})
	assert.True(t, errors.Is(err, contract.ErrCorruptMemory))
}

// TestUnknownTopLevelFieldsSurviveRewrite guards compatibility with memory
// files written by other versions: rewriting must not strip fields this
// version does not understand.
func TestUnknownTopLevelFieldsSurviveRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"sessions": [],
		"kpi_history": {},
		"insights": [],
		"metadata": {"created_at": "2025-01-01T00:00:00Z", "total_sessions": 0, "last_updated": null},
		"custom_extension": {"keep": "me"}
	}`), 0o644))

	store := Open(path)
	_, err := store.StoreSession(schema.SessionPayload{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "custom_extension")
	assert.JSONEq(t, `{"keep": "me"}`, string(raw["custom_extension"]))
}

func TestPruneOlderThan(t *testing.T) {
	store := tempStore(t)

	old := time.Now().AddDate(0, 0, -100)
	require.NoError(t, store.StoreKPISnapshotBatch(map[string]map[string]float64{
		old.Format(schema.DateFormat):        {"Revenue": 1},
		time.Now().Format(schema.DateFormat): {"Revenue": 2},
	}))
	_, err := store.StoreSession(schema.SessionPayload{})
	require.NoError(t, err)
	require.NoError(t, store.StoreInsight(schema.Insight{Category: "correlation", Text: "x", Timestamp: old}))

	require.NoError(t, store.PruneOlderThan(90))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KPIDatesTracked)
	assert.Equal(t, 0, stats.TotalInsights)

	// The fresh session survives.
	sessions, err := store.RecentSessions(10)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestMissingFileIsEmptyStore(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "never-created.json"))

	sessions, err := store.RecentSessions(10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
