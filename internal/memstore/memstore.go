// Package memstore is the durable long-term memory behind the pipeline:
// an append-oriented JSON document holding sessions, per-date KPI snapshots
// and accumulated insights.
package memstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// storeMu serializes every read-modify-write-replace cycle. The lock is
// process-wide rather than per-Store so two handles on the same file can
// never interleave partial writes.
var storeMu sync.Mutex

// Store is a handle on one memory file. All mutating calls rewrite the
// file atomically: marshal to a temp file in the same directory, then
// rename over the live file.
type Store struct {
	path string
}

var _ contract.Memory = &Store{} // Compile-time check

// sessionIDFormat is the legacy timestamp layout embedded in session ids.
const sessionIDFormat = "20060102_150405"

// metadata is the bookkeeping block of the memory document.
type metadata struct {
	CreatedAt     time.Time  `json:"created_at"`
	TotalSessions int        `json:"total_sessions"`
	LastUpdated   *time.Time `json:"last_updated"`
}

// document is the full persisted structure. Unknown top-level fields are
// kept in extra so a rewrite never strips them.
type document struct {
	Sessions   []schema.Session              `json:"sessions"`
	KPIHistory map[string]map[string]float64 `json:"kpi_history"`
	Insights   []schema.Insight              `json:"insights"`
	Metadata   metadata                      `json:"metadata"`

	extra map[string]json.RawMessage
}

// Open returns a store handle for the given path. The file is not created
// until the first mutating call; a missing file on read is a fresh, empty
// store rather than an error.
func Open(path string) *Store {
	return &Store{path: path}
}

// StoreSession appends an immutable session record and returns its id.
// Ids follow the legacy session_<n>_<timestamp> scheme where n counts
// existing sessions plus one.
func (s *Store) StoreSession(payload schema.SessionPayload) (string, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}

	now := time.Now()
	id := fmt.Sprintf("session_%d_%s", len(doc.Sessions)+1, now.Format(sessionIDFormat))
	doc.Sessions = append(doc.Sessions, schema.Session{
		ID:        id,
		Timestamp: now,
		Payload:   payload,
	})
	doc.Metadata.TotalSessions++

	if err := s.save(doc); err != nil {
		return "", err
	}
	return id, nil
}

// StoreKPISnapshot upserts the KPI values for one calendar date. The last
// write for a given date wins.
func (s *Store) StoreKPISnapshot(date string, kpis map[string]float64) error {
	return s.StoreKPISnapshotBatch(map[string]map[string]float64{date: kpis})
}

// StoreKPISnapshotBatch upserts many dates in a single read-modify-write
// cycle.
func (s *Store) StoreKPISnapshotBatch(snapshots map[string]map[string]float64) error {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	for date, kpis := range snapshots {
		entry := doc.KPIHistory[date]
		if entry == nil {
			entry = make(map[string]float64, len(kpis))
			doc.KPIHistory[date] = entry
		}
		for name, value := range kpis {
			entry[name] = value
		}
	}

	return s.save(doc)
}

// StoreInsight appends a freeform observation with provenance. Insights
// accumulate; nothing is deduplicated or deleted here.
func (s *Store) StoreInsight(insight schema.Insight) error {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	if insight.Timestamp.IsZero() {
		insight.Timestamp = time.Now()
	}
	doc.Insights = append(doc.Insights, insight)

	return s.save(doc)
}

// CompareWithHistory contrasts current KPI averages against stored
// snapshots whose date falls within the lookback window ending at the
// latest stored date. KPIs without in-window history are omitted rather
// than zero-filled.
func (s *Store) CompareWithHistory(currentKPIs map[string]float64, lookbackDays int) (map[string]schema.KPIComparison, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	latest := latestDate(doc.KPIHistory)
	if latest.IsZero() {
		return map[string]schema.KPIComparison{}, nil
	}
	cutoff := latest.AddDate(0, 0, -lookbackDays)

	out := make(map[string]schema.KPIComparison)
	for name, current := range currentKPIs {
		var sum float64
		var count int
		for dateStr, kpis := range doc.KPIHistory {
			date, err := time.Parse(schema.DateFormat, dateStr)
			if err != nil {
				continue
			}
			if date.Before(cutoff) || date.After(latest) {
				continue
			}
			if v, ok := kpis[name]; ok {
				sum += v
				count++
			}
		}
		if count == 0 {
			continue
		}
		avg := sum / float64(count)
		change := current - avg
		var changePct float64
		if avg != 0 {
			changePct = change / avg * 100
		}
		out[name] = schema.KPIComparison{
			Current:       current,
			HistoricalAvg: schema.RoundTo(avg, 2),
			Change:        schema.RoundTo(change, 2),
			ChangePct:     schema.RoundTo(changePct, 2),
			DataPoints:    count,
		}
	}
	return out, nil
}

// RecentSessions returns up to n most recent sessions, oldest first.
func (s *Store) RecentSessions(n int) ([]schema.Session, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if n > len(doc.Sessions) {
		n = len(doc.Sessions)
	}
	return doc.Sessions[len(doc.Sessions)-n:], nil
}

// Stats summarizes the store contents.
func (s *Store) Stats() (schema.MemoryStats, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return schema.MemoryStats{}, err
	}
	stats := schema.MemoryStats{
		TotalSessions:   doc.Metadata.TotalSessions,
		TotalInsights:   len(doc.Insights),
		KPIDatesTracked: len(doc.KPIHistory),
		CreatedAt:       doc.Metadata.CreatedAt,
	}
	if doc.Metadata.LastUpdated != nil {
		stats.LastUpdated = *doc.Metadata.LastUpdated
	}
	return stats, nil
}

// PruneOlderThan removes sessions, snapshots and insights older than the
// given number of days before now. This is an explicit operator action;
// normal pipeline runs never delete anything.
func (s *Store) PruneOlderThan(days int) error {
	storeMu.Lock()
	defer storeMu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	cutoffStr := cutoff.Format(schema.DateFormat)

	for date := range doc.KPIHistory {
		if date < cutoffStr {
			delete(doc.KPIHistory, date)
		}
	}

	kept := doc.Sessions[:0]
	for _, session := range doc.Sessions {
		if !session.Timestamp.Before(cutoff) {
			kept = append(kept, session)
		}
	}
	doc.Sessions = kept

	keptInsights := doc.Insights[:0]
	for _, insight := range doc.Insights {
		if !insight.Timestamp.Before(cutoff) {
			keptInsights = append(keptInsights, insight)
		}
	}
	doc.Insights = keptInsights

	return s.save(doc)
}

// load reads the whole document into memory. Callers must hold storeMu.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &document{
			KPIHistory: make(map[string]map[string]float64),
			Metadata:   metadata{CreatedAt: time.Now()},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read memory file %s: %w", s.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrCorruptMemory, s.path, err)
	}

	doc := &document{KPIHistory: make(map[string]map[string]float64)}
	for key, decode := range map[string]any{
		"sessions":    &doc.Sessions,
		"kpi_history": &doc.KPIHistory,
		"insights":    &doc.Insights,
		"metadata":    &doc.Metadata,
	} {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, decode); err != nil {
			return nil, fmt.Errorf("%w: %s: field %s: %v", contract.ErrCorruptMemory, s.path, key, err)
		}
		delete(raw, key)
	}
	if len(raw) > 0 {
		doc.extra = raw
	}
	if doc.KPIHistory == nil {
		doc.KPIHistory = make(map[string]map[string]float64)
	}
	return doc, nil
}

// save atomically replaces the live file: write a temp file in the same
// directory, then rename. Callers must hold storeMu.
func (s *Store) save(doc *document) error {
	now := time.Now()
	doc.Metadata.LastUpdated = &now

	out := make(map[string]any, len(doc.extra)+4)
	for k, v := range doc.extra {
		out[k] = v
	}
	out["sessions"] = doc.Sessions
	out["kpi_history"] = doc.KPIHistory
	out["insights"] = doc.Insights
	out["metadata"] = doc.Metadata
	if doc.Sessions == nil {
		out["sessions"] = []schema.Session{}
	}
	if doc.Insights == nil {
		out["insights"] = []schema.Insight{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create memory directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp memory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp memory file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace memory file %s: %w", s.path, err)
	}
	return nil
}

func latestDate(history map[string]map[string]float64) time.Time {
	dates := make([]string, 0, len(history))
	for date := range history {
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return time.Time{}
	}
	sort.Strings(dates)
	t, err := time.Parse(schema.DateFormat, dates[len(dates)-1])
	if err != nil {
		return time.Time{}
	}
	return t
}
