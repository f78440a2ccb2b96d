package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/autoops/kpiscope/schema"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	sch := parquet.SchemaOf(new(Run))
	require.NotNil(t, sch)

	expectedColumns := []string{
		"run_id",
		"session_id",
		"started",
		"finished",
		"duration_ms",
		"state",
		"rows_analyzed",
		"overall_score",
		"confidence_score",
		"report_path",
	}

	for _, colName := range expectedColumns {
		col, ok := sch.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestObservationStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(Observation))
	require.NotNil(t, sch)

	for _, colName := range []string{"run_id", "obs_date", "kpi", "value"} {
		col, ok := sch.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestFromArchiveRuns(t *testing.T) {
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := FromArchiveRuns([]schema.ArchiveRun{
		{
			RunID:        "run-1",
			SessionID:    "session_1_20250301_090000",
			Started:      started,
			Finished:     started.Add(time.Second),
			DurationMs:   1000,
			State:        "Succeeded",
			RowsAnalyzed: 90,
			OverallScore: 8.4,
			Confidence:   7.9,
			ReportPath:   "kpi_report.md",
		},
		{RunID: "run-2", Started: started, State: "Failed(Intake)"},
	})

	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].SessionID)
	assert.Equal(t, "session_1_20250301_090000", *rows[0].SessionID)
	require.NotNil(t, rows[0].ReportPath)
	assert.Equal(t, int32(90), rows[0].RowsAnalyzed)
	assert.InDelta(t, 7.9, rows[0].ConfidenceScore, 0.001)

	// Empty strings map to null columns, not empty values.
	assert.Nil(t, rows[1].SessionID)
	assert.Nil(t, rows[1].ReportPath)
}

func TestFromArchiveObservations(t *testing.T) {
	rows := FromArchiveObservations([]schema.ArchiveObservation{
		{RunID: "run-1", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), KPI: "Revenue", Value: 1000},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03-01", rows[0].Date)
	assert.Equal(t, "Revenue", rows[0].KPI)
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	session := "session_1_20250301_090000"
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	data := []Run{
		{
			RunID:           "run-1",
			SessionID:       &session,
			Started:         started,
			Finished:        started.Add(time.Second),
			DurationMs:      1000,
			State:           "Succeeded",
			RowsAnalyzed:    90,
			OverallScore:    8.4,
			ConfidenceScore: 7.9,
		},
		{RunID: "run-2", Started: started, Finished: started, State: "Failed(Intake)"},
	}

	require.NoError(t, WriteRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Run](file)
	defer func() { _ = reader.Close() }()

	readData := make([]Run, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, "run-1", readData[0].RunID)
	require.NotNil(t, readData[0].SessionID)
	assert.Equal(t, session, *readData[0].SessionID)
	assert.Equal(t, int32(90), readData[0].RowsAnalyzed)
	assert.Nil(t, readData[1].SessionID)
}

func TestWriteObservationsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "observations.parquet")

	data := []Observation{
		{RunID: "run-1", Date: "2025-03-01", KPI: "Revenue", Value: 1000},
		{RunID: "run-1", Date: "2025-03-01", KPI: "Customers", Value: 50},
	}

	require.NoError(t, WriteObservationsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Observation](file)
	defer func() { _ = reader.Close() }()

	readData := make([]Observation, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)
	assert.Equal(t, data[0], readData[0])
	assert.Equal(t, data[1], readData[1])
}
