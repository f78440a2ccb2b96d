// Package parquet provides data structures and functions for exporting
// archived pipeline runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/autoops/kpiscope/schema"

	"github.com/parquet-go/parquet-go"
)

// Run represents one archived pipeline run with metadata.
// This struct maps to the kpiscope_runs database table.
type Run struct {
	// RunID is the unique identifier for this pipeline run
	RunID string `parquet:"run_id,snappy"`

	// SessionID is the memory session created by this run (nullable)
	SessionID *string `parquet:"session_id,optional,snappy"`

	// Started is when the pipeline began (stored as TIMESTAMP with nanosecond precision)
	Started time.Time `parquet:"started,snappy"`

	// Finished is when the pipeline halted or succeeded
	Finished time.Time `parquet:"finished,snappy"`

	// DurationMs is the wall-clock duration of the run in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// State is the terminal pipeline state, Succeeded or Failed(stage)
	State string `parquet:"state,snappy"`

	// RowsAnalyzed is the number of input observations processed
	RowsAnalyzed int32 `parquet:"rows_analyzed,snappy"`

	// OverallScore is the run's self-assessed overall quality (0-10)
	OverallScore float64 `parquet:"overall_score,snappy"`

	// ConfidenceScore is the run's self-assessed confidence (0-10)
	ConfidenceScore float64 `parquet:"confidence_score,snappy"`

	// ReportPath is where the markdown report was written (nullable)
	ReportPath *string `parquet:"report_path,optional,snappy"`
}

// Observation represents one (date, KPI) value seen by a run.
// This struct maps to the kpiscope_observations database table.
type Observation struct {
	// RunID references the parent pipeline run
	RunID string `parquet:"run_id,snappy"`

	// Date is the calendar date of the observation, formatted YYYY-MM-DD
	Date string `parquet:"obs_date,snappy"`

	// KPI is the metric name
	KPI string `parquet:"kpi,snappy"`

	// Value is the observed metric value
	Value float64 `parquet:"value,snappy"`
}

// FromArchiveRuns converts archive rows into their Parquet row shape.
func FromArchiveRuns(runs []schema.ArchiveRun) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		row := Run{
			RunID:           r.RunID,
			Started:         r.Started,
			Finished:        r.Finished,
			DurationMs:      r.DurationMs,
			State:           r.State,
			RowsAnalyzed:    int32(r.RowsAnalyzed),
			OverallScore:    r.OverallScore,
			ConfidenceScore: r.Confidence,
		}
		if r.SessionID != "" {
			row.SessionID = &r.SessionID
		}
		if r.ReportPath != "" {
			row.ReportPath = &r.ReportPath
		}
		out = append(out, row)
	}
	return out
}

// FromArchiveObservations converts archive rows into their Parquet row shape.
func FromArchiveObservations(obs []schema.ArchiveObservation) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		out = append(out, Observation{
			RunID: o.RunID,
			Date:  o.Date.Format(schema.DateFormat),
			KPI:   o.KPI,
			Value: o.Value,
		})
	}
	return out
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the Run struct tags
	writer := parquet.NewGenericWriter[Run](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteObservationsParquet writes a slice of Observation structs to a Parquet file.
func WriteObservationsParquet(data []Observation, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the Observation struct tags
	writer := parquet.NewGenericWriter[Observation](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
