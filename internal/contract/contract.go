// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/autoops/kpiscope/schema"
)

// Memory defines the durable long-term memory operations the pipeline
// depends on. This allows the memory stage to be tested without touching
// the filesystem.
type Memory interface {
	// StoreSession appends an immutable session record and returns its id.
	StoreSession(payload schema.SessionPayload) (string, error)

	// StoreKPISnapshot upserts the KPI values for one calendar date.
	// The last write for a given date wins.
	StoreKPISnapshot(date string, kpis map[string]float64) error

	// StoreKPISnapshotBatch upserts many dates in one read-modify-write cycle.
	StoreKPISnapshotBatch(snapshots map[string]map[string]float64) error

	// StoreInsight appends a freeform observation with provenance.
	StoreInsight(insight schema.Insight) error

	// CompareWithHistory contrasts current KPI averages against the stored
	// snapshots inside the lookback window ending at the latest stored date.
	// KPIs with no in-window history are omitted from the result.
	CompareWithHistory(currentKPIs map[string]float64, lookbackDays int) (map[string]schema.KPIComparison, error)

	// RecentSessions returns up to n most recent sessions, oldest first.
	RecentSessions(n int) ([]schema.Session, error)

	// Stats summarizes the store contents.
	Stats() (schema.MemoryStats, error)
}

// Archive defines the optional SQL-backed record of pipeline runs.
// A disabled archive accepts writes and drops them.
type Archive interface {
	// RecordRun persists the outcome of one pipeline run.
	RecordRun(run schema.ArchiveRun) error

	// RecordObservations persists the per-date KPI values seen by a run.
	RecordObservations(obs []schema.ArchiveObservation) error

	// Runs returns all archived runs, newest first.
	Runs() ([]schema.ArchiveRun, error)

	// Observations returns all archived KPI observations ordered by date.
	Observations() ([]schema.ArchiveObservation, error)

	// Clear drops all archived rows.
	Clear() error

	// Close releases the underlying connection.
	Close() error
}

// TraceSink receives per-stage observability records from the orchestrator.
// Formatting and storage are the sink's responsibility.
type TraceSink interface {
	// StageCompleted is invoked exactly once per entered stage, on every
	// exit path including failure.
	StageCompleted(trace schema.StageTrace)

	// RunCompleted is invoked once after the pipeline halts or succeeds.
	RunCompleted(state string, started, finished time.Time)
}
