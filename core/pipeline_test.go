package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/internal/memstore"
	"github.com/autoops/kpiscope/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures everything the orchestrator reports.
type recordingSink struct {
	stages   []schema.StageTrace
	state    string
	started  time.Time
	finished time.Time
}

func (r *recordingSink) StageCompleted(trace schema.StageTrace) {
	r.stages = append(r.stages, trace)
}

func (r *recordingSink) RunCompleted(state string, started, finished time.Time) {
	r.state = state
	r.started = started
	r.finished = finished
}

// fixtureCSV writes ten days of plausible metrics and returns the path.
func fixtureCSV(t *testing.T) string {
	t.Helper()
	content := "Date,Revenue,Customers,Conversion_Rate,Marketing_Spend\n"
	for i := 0; i < 10; i++ {
		content += fmt.Sprintf("2025-01-%02d,%d,%d,%.1f,%d\n",
			i+1, 1000+i*50, 50+i*2, 2.5+float64(i)*0.05, 200+i*10)
	}
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fixtureConfig(inputPath string) *contract.Config {
	return &contract.Config{
		InputPath:         inputPath,
		MAWindow:          3,
		FlatThresholdPct:  1.0,
		ZThreshold:        2.5,
		AnomalyMethod:     schema.ZScoreMethod,
		CorrelationMethod: schema.PearsonMethod,
		LookbackDays:      30,
		MaxHypotheses:     5,
	}
}

func stubRenderer(ctx Context) (string, error) {
	report := "# KPI Analysis Report\n## Executive Summary\n"
	for kpi := range ctx.Trends {
		report += "- " + kpi + "\n"
	}
	return report, nil
}

func TestExecuteAnalysisSuccess(t *testing.T) {
	memory := memstore.NewMockStore()
	sink := &recordingSink{}
	cfg := fixtureConfig(fixtureCSV(t))

	final, state, err := ExecuteAnalysis("run-1", cfg, memory, stubRenderer, sink)
	require.NoError(t, err)
	assert.True(t, state.Succeeded())
	assert.Equal(t, "Succeeded", state.String())

	// Every stage contributed its part of the context.
	assert.Equal(t, "run-1", final.RunID)
	require.NotNil(t, final.Frame)
	assert.Equal(t, 10, final.Frame.Rows())
	assert.Len(t, final.Trends, 4)
	assert.NotEmpty(t, final.TopTrends)
	assert.LessOrEqual(t, len(final.TopTrends), 3)
	assert.NotEmpty(t, final.KeyFindings)
	assert.NotEmpty(t, final.Correlations)
	assert.NotEmpty(t, final.SessionID)
	assert.NotEmpty(t, final.Forecasts)
	assert.NotEmpty(t, final.Report)
	require.NotNil(t, final.Evaluation)
	assert.Greater(t, final.Evaluation.Overall, 0.0)

	// Durable memory holds the session and one snapshot per day.
	assert.Len(t, memory.Sessions, 1)
	assert.Len(t, memory.KPIHistory, 10)

	// One trace record per stage, all successful, plus a terminal state.
	require.Len(t, sink.stages, len(schema.StageOrder))
	for i, trace := range sink.stages {
		assert.Equal(t, schema.StageOrder[i], trace.Stage)
		assert.Equal(t, schema.TraceSuccess, trace.Status)
	}
	assert.Equal(t, "Succeeded", sink.state)
	assert.False(t, sink.finished.Before(sink.started))
}

// TestExecuteAnalysisConstantKPI runs a 90-day dataset where Revenue grows
// linearly from 100 to 400 while Customers never moves. The constant column
// must be silently left out of the correlation matrix, and the run must
// still succeed without its self-evaluation punishing the gap.
func TestExecuteAnalysisConstantKPI(t *testing.T) {
	content := "Date,Revenue,Customers,Conversion_Rate,Marketing_Spend\n"
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 90; i++ {
		revenue := 100 + 300*float64(i)/89
		content += fmt.Sprintf("%s,%.2f,4,%.2f,%d\n",
			start.AddDate(0, 0, i).Format("2006-01-02"), revenue, 2.5+float64(i)*0.01, 200+i)
	}
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	memory := memstore.NewMockStore()
	sink := &recordingSink{}
	cfg := fixtureConfig(path)

	final, state, err := ExecuteAnalysis("run-90d", cfg, memory, stubRenderer, sink)
	require.NoError(t, err)
	assert.True(t, state.Succeeded())

	revenue := final.Trends["Revenue"]
	assert.Equal(t, schema.UpwardTrend, revenue.Direction)
	assert.InDelta(t, 300, revenue.GrowthPct, 0.01)

	customers := final.Trends["Customers"]
	assert.Equal(t, schema.FlatTrend, customers.Direction)
	assert.Zero(t, customers.Volatility)

	// Zero variance makes every Customers pairing uncomputable; the matrix
	// omits them instead of surfacing an error.
	assert.NotEmpty(t, final.Correlations)
	for _, c := range final.Correlations {
		assert.NotEqual(t, "Customers", c.KPIA)
		assert.NotEqual(t, "Customers", c.KPIB)
	}

	require.NotNil(t, final.Evaluation)
	assert.InDelta(t, 10, final.Evaluation.Consistency, 0.001)
	assert.NotEmpty(t, final.Report)
}

func TestExecuteAnalysisMissingInput(t *testing.T) {
	memory := memstore.NewMockStore()
	sink := &recordingSink{}
	cfg := fixtureConfig(filepath.Join(t.TempDir(), "missing.csv"))

	_, state, err := ExecuteAnalysis("run-2", cfg, memory, stubRenderer, sink)
	require.Error(t, err)

	var stageErr *contract.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, schema.IntakeStage, stageErr.Stage)
	assert.True(t, errors.Is(err, contract.ErrValidation))

	failedStage, failed := state.Failed()
	assert.True(t, failed)
	assert.Equal(t, schema.IntakeStage, failedStage)
	assert.Equal(t, "Failed(Intake)", state.String())

	// Nothing was persisted.
	assert.Empty(t, memory.Sessions)
	assert.Empty(t, memory.KPIHistory)
	assert.Empty(t, memory.Insights)

	// The failed stage still produced a trace record.
	require.Len(t, sink.stages, 1)
	assert.Equal(t, schema.TraceFailure, sink.stages[0].Status)
	assert.NotEmpty(t, sink.stages[0].Error)
	assert.Equal(t, "Failed(Intake)", sink.state)
}

// TestExecuteAnalysisHaltsMidway forces a failure after Intake: one data
// row loads fine but no KPI can be trended, so the run halts before any
// memory write.
func TestExecuteAnalysisHaltsMidway(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Date,Revenue,Customers,Conversion_Rate,Marketing_Spend\n2025-01-01,1000,50,2.5,200\n"), 0o644))

	memory := memstore.NewMockStore()
	sink := &recordingSink{}

	final, state, err := ExecuteAnalysis("run-3", fixtureConfig(path), memory, stubRenderer, sink)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrInsufficientData))

	failedStage, _ := state.Failed()
	assert.Equal(t, schema.TrendDetectionStage, failedStage)

	// The returned context reflects the last successful stage.
	require.NotNil(t, final.Frame)
	assert.Nil(t, final.Trends)
	assert.Empty(t, final.SessionID)
	assert.Empty(t, memory.Sessions)

	require.Len(t, sink.stages, 2)
	assert.Equal(t, schema.TraceSuccess, sink.stages[0].Status)
	assert.Equal(t, schema.TraceFailure, sink.stages[1].Status)
}

func TestExecuteAnalysisMemoryFailure(t *testing.T) {
	memory := memstore.NewMockStore()
	memory.FailNext = errors.New("disk full")
	sink := &recordingSink{}

	_, state, err := ExecuteAnalysis("run-4", fixtureConfig(fixtureCSV(t)), memory, stubRenderer, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	failedStage, _ := state.Failed()
	assert.Equal(t, schema.MemoryStage, failedStage)
}

func TestExecuteAnalysisRendererFailure(t *testing.T) {
	memory := memstore.NewMockStore()
	failing := func(Context) (string, error) { return "", errors.New("template exploded") }

	_, state, err := ExecuteAnalysis("run-5", fixtureConfig(fixtureCSV(t)), memory, failing, &recordingSink{})
	require.Error(t, err)

	failedStage, _ := state.Failed()
	assert.Equal(t, schema.ReportingStage, failedStage)

	// Memory writes from the earlier stage are not rolled back.
	assert.Len(t, memory.Sessions, 1)
}

// TestExecuteAnalysisPanicRecovery converts a stage panic into a stage
// failure instead of tearing down the process.
func TestExecuteAnalysisPanicRecovery(t *testing.T) {
	memory := memstore.NewMockStore()
	sink := &recordingSink{}
	panicking := func(Context) (string, error) { panic("renderer bug") }

	_, state, err := ExecuteAnalysis("run-6", fixtureConfig(fixtureCSV(t)), memory, panicking, sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: renderer bug")

	failedStage, _ := state.Failed()
	assert.Equal(t, schema.ReportingStage, failedStage)

	last := sink.stages[len(sink.stages)-1]
	assert.Equal(t, schema.TraceFailure, last.Status)
	assert.Contains(t, last.Error, "panic")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "NotStarted", NotStarted.String())

	_, ok := NotStarted.Failed()
	assert.False(t, ok)
	assert.False(t, NotStarted.Succeeded())
}

func TestComparisonRunsBeforeSnapshot(t *testing.T) {
	memory := memstore.NewMockStore()
	memory.History = map[string]schema.KPIComparison{
		"Revenue": {Current: 1225, HistoricalAvg: 1000, Change: 225, ChangePct: 22.5, DataPoints: 5},
	}

	final, _, err := ExecuteAnalysis("run-7", fixtureConfig(fixtureCSV(t)), memory, stubRenderer, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, memory.History, final.Comparison)
}
