package cmd

import (
	"os"
	"time"

	"github.com/autoops/kpiscope/core"
	"github.com/autoops/kpiscope/internal/archive"
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/internal/memstore"
	"github.com/autoops/kpiscope/internal/outwriter"
	"github.com/autoops/kpiscope/internal/tracer"
	"github.com/autoops/kpiscope/schema"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the full analysis pipeline against one CSV.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <csv-path>",
	Short: "Run the full KPI analysis pipeline on a CSV of business metrics.",
	Long: `Run the seven-stage analysis pipeline against a CSV of daily business metrics.

The pipeline loads and cleans the data, detects trends and anomalies,
correlates KPIs into root-cause hypotheses, compares against the stored
history, derives prioritized recommendations with forecasts, renders an
executive markdown report, and scores its own output.

The CSV must contain Date, Revenue, Customers, Conversion_Rate and
Marketing_Spend columns. An optional Channel column enables per-channel
breakdowns.

Examples:
  # Analyze with defaults, writing kpi_report.md
  kpiscope analyze metrics.csv

  # Wider smoothing and IQR-based outlier detection
  kpiscope analyze metrics.csv --window 14 --anomaly-method iqr

  # Machine-readable summary for scripting
  kpiscope analyze metrics.csv --output json --output-file summary.json

  # Track runs in a SQLite archive
  kpiscope analyze metrics.csv --archive-backend sqlite`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := executeAnalyze(); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}

func executeAnalyze() error {
	runID := uuid.NewString()
	sink := tracer.New(runID, cfg.Output == schema.TextOut)
	memory := memstore.Open(cfg.MemoryPath)

	started := time.Now()
	final, state, runErr := core.ExecuteAnalysis(runID, cfg, memory, outwriter.BuildReport, sink)
	duration := time.Since(started)

	// The trace and the archive record are written on failure too; a
	// halted run is exactly the kind worth inspecting later.
	if cfg.TracePath != "" {
		if err := sink.Save(cfg.TracePath); err != nil {
			contract.LogWarn("Could not write run trace", err)
		}
	}
	recordToArchive(final, state, started, duration)

	if runErr != nil {
		return runErr
	}

	report := outwriter.AppendEvaluation(final.Report, final.Evaluation)
	if err := os.WriteFile(cfg.ReportPath, []byte(report), 0o644); err != nil {
		return err
	}

	return outwriter.WriteAnalysisResults(final, cfg, duration)
}

// recordToArchive persists the run outcome when an archive backend is
// configured. Archive failures degrade to warnings; the analysis result
// matters more than its bookkeeping.
func recordToArchive(final core.Context, state core.State, started time.Time, duration time.Duration) {
	if cfg.ArchiveBackend == schema.NoneBackend {
		return
	}

	store, err := archive.New(cfg.ArchiveBackend, cfg.ArchiveDBConnect)
	if err != nil {
		contract.LogWarn("Could not open run archive", err)
		return
	}
	defer func() { _ = store.Close() }()

	run := schema.ArchiveRun{
		RunID:      final.RunID,
		SessionID:  final.SessionID,
		Started:    started,
		Finished:   started.Add(duration),
		DurationMs: duration.Milliseconds(),
		State:      state.String(),
		ReportPath: cfg.ReportPath,
	}
	if final.Frame != nil {
		run.RowsAnalyzed = final.Frame.Rows()
	}
	if final.Evaluation != nil {
		run.OverallScore = final.Evaluation.Overall
		run.Confidence = final.Evaluation.Confidence
	}
	if err := store.RecordRun(run); err != nil {
		contract.LogWarn("Could not record run", err)
		return
	}

	if final.Frame == nil {
		return
	}
	var obs []schema.ArchiveObservation
	for i, date := range final.Frame.Dates {
		for _, kpi := range final.Frame.KPINames() {
			obs = append(obs, schema.ArchiveObservation{
				RunID: final.RunID,
				Date:  date,
				KPI:   kpi,
				Value: final.Frame.Series(kpi)[i],
			})
		}
	}
	if err := store.RecordObservations(obs); err != nil {
		contract.LogWarn("Could not record observations", err)
	}
}
