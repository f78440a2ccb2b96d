package memstore

import (
	"fmt"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// MockStore is an in-memory contract.Memory for tests. It records every
// mutating call so orchestrator tests can assert whether durable memory
// was touched.
type MockStore struct {
	Sessions   []schema.Session
	KPIHistory map[string]map[string]float64
	Insights   []schema.Insight

	// FailNext makes the next mutating call return this error once.
	FailNext error

	// History is returned verbatim by CompareWithHistory when non-nil.
	History map[string]schema.KPIComparison
}

var _ contract.Memory = &MockStore{} // Compile-time check

// NewMockStore returns an empty mock memory.
func NewMockStore() *MockStore {
	return &MockStore{KPIHistory: make(map[string]map[string]float64)}
}

func (m *MockStore) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

// StoreSession appends a session and returns a legacy-format id.
func (m *MockStore) StoreSession(payload schema.SessionPayload) (string, error) {
	if err := m.takeFailure(); err != nil {
		return "", err
	}
	id := fmt.Sprintf("session_%d_%s", len(m.Sessions)+1, time.Now().Format(sessionIDFormat))
	m.Sessions = append(m.Sessions, schema.Session{ID: id, Timestamp: time.Now(), Payload: payload})
	return id, nil
}

// StoreKPISnapshot upserts one date.
func (m *MockStore) StoreKPISnapshot(date string, kpis map[string]float64) error {
	return m.StoreKPISnapshotBatch(map[string]map[string]float64{date: kpis})
}

// StoreKPISnapshotBatch upserts many dates.
func (m *MockStore) StoreKPISnapshotBatch(snapshots map[string]map[string]float64) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	for date, kpis := range snapshots {
		entry := m.KPIHistory[date]
		if entry == nil {
			entry = make(map[string]float64, len(kpis))
			m.KPIHistory[date] = entry
		}
		for name, value := range kpis {
			entry[name] = value
		}
	}
	return nil
}

// StoreInsight appends an insight.
func (m *MockStore) StoreInsight(insight schema.Insight) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.Insights = append(m.Insights, insight)
	return nil
}

// CompareWithHistory returns the canned History map, or empty.
func (m *MockStore) CompareWithHistory(map[string]float64, int) (map[string]schema.KPIComparison, error) {
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	if m.History != nil {
		return m.History, nil
	}
	return map[string]schema.KPIComparison{}, nil
}

// RecentSessions returns the last n sessions, oldest first.
func (m *MockStore) RecentSessions(n int) ([]schema.Session, error) {
	if n > len(m.Sessions) {
		n = len(m.Sessions)
	}
	return m.Sessions[len(m.Sessions)-n:], nil
}

// Stats summarizes the mock contents.
func (m *MockStore) Stats() (schema.MemoryStats, error) {
	return schema.MemoryStats{
		TotalSessions:   len(m.Sessions),
		TotalInsights:   len(m.Insights),
		KPIDatesTracked: len(m.KPIHistory),
	}, nil
}
