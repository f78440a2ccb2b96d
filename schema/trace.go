package schema

import "time"

// Trace status values.
const (
	TraceSuccess = "success"
	TraceFailure = "failure"
)

// StageTrace is the observability record for one pipeline stage. The
// orchestrator guarantees one record per entered stage on every exit path.
type StageTrace struct {
	Stage         StageName      `json:"stage"`
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	Duration      time.Duration  `json:"duration_ns"`
	InputSummary  map[string]any `json:"input_summary,omitempty"`
	OutputSummary map[string]any `json:"output_summary,omitempty"`
	Status        string         `json:"status"`
	Error         string         `json:"error,omitempty"`
}

// RunTrace is the full trace of one pipeline run, written as a JSON
// document next to the report.
type RunTrace struct {
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	State    string       `json:"state"`
	Stages   []StageTrace `json:"stages"`
}

// ArchiveRun is the row model for one pipeline run in the SQL archive.
type ArchiveRun struct {
	RunID        string    `json:"run_id"`
	SessionID    string    `json:"session_id"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
	DurationMs   int64     `json:"duration_ms"`
	State        string    `json:"state"`
	RowsAnalyzed int       `json:"rows_analyzed"`
	OverallScore float64   `json:"overall_score"`
	Confidence   float64   `json:"confidence_score"`
	ReportPath   string    `json:"report_path"`
}

// ArchiveObservation is the row model for one (date, KPI) value in the
// SQL archive.
type ArchiveObservation struct {
	RunID string    `json:"run_id"`
	Date  time.Time `json:"date"`
	KPI   string    `json:"kpi"`
	Value float64   `json:"value"`
}
