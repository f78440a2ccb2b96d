package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/autoops/kpiscope/core"
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// analysisRenderModel is the machine-readable shape of one analysis run,
// used by the JSON output mode.
type analysisRenderModel struct {
	RunID           string                          `json:"run_id"`
	SessionID       string                          `json:"session_id"`
	Intake          *schema.IntakeReport            `json:"intake"`
	Trends          map[string]schema.TrendRecord   `json:"trends"`
	Anomalies       []schema.AnomalyRecord          `json:"anomalies"`
	KeyFindings     []string                        `json:"key_findings"`
	Correlations    []schema.CorrelationRecord      `json:"correlations"`
	Hypotheses      []schema.Hypothesis             `json:"hypotheses"`
	ChannelStats    map[string]schema.ChannelStat   `json:"channel_stats,omitempty"`
	Comparison      map[string]schema.KPIComparison `json:"historical_comparison"`
	Recommendations []schema.Recommendation         `json:"recommendations"`
	Risks           []schema.Risk                   `json:"risks"`
	Opportunities   []schema.Opportunity            `json:"opportunities"`
	Forecasts       []schema.ForecastProjection     `json:"forecasts"`
	Evaluation      *schema.EvaluationScore         `json:"evaluation"`
}

func buildAnalysisRenderModel(ctx core.Context) *analysisRenderModel {
	return &analysisRenderModel{
		RunID:           ctx.RunID,
		SessionID:       ctx.SessionID,
		Intake:          ctx.Intake,
		Trends:          ctx.Trends,
		Anomalies:       ctx.Anomalies,
		KeyFindings:     ctx.KeyFindings,
		Correlations:    ctx.Correlations,
		Hypotheses:      ctx.Hypotheses,
		ChannelStats:    ctx.ChannelStats,
		Comparison:      ctx.Comparison,
		Recommendations: ctx.Recommendations,
		Risks:           ctx.Risks,
		Opportunities:   ctx.Opportunities,
		Forecasts:       ctx.Forecasts,
		Evaluation:      ctx.Evaluation,
	}
}

// WriteAnalysisResults prints the analysis summary, dispatching based on the
// output format configured.
func WriteAnalysisResults(ctx core.Context, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, buildAnalysisRenderModel(ctx))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisCSV(w, ctx, createFormatter(cfg.Precision))
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisText(w, ctx, cfg, duration)
		}, "Wrote summary")
	}
}

// writeAnalysisCSV emits one row per KPI with its trend and forecast.
func writeAnalysisCSV(w io.Writer, ctx core.Context, fmtFloat func(float64) string) error {
	header := []string{"kpi", "direction", "growth_pct", "volatility_pct", "avg_change_pct", "last_value", "projected_7d", "projected_30d", "confidence"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		forecasts := make(map[string]schema.ForecastProjection, len(ctx.Forecasts))
		for _, f := range ctx.Forecasts {
			forecasts[f.KPI] = f
		}
		for _, kpi := range sortedKeys(ctx.Trends) {
			t := ctx.Trends[kpi]
			f := forecasts[kpi]
			row := []string{
				kpi,
				string(t.Direction),
				fmtFloat(t.GrowthPct),
				fmtFloat(t.Volatility),
				fmtFloat(t.AvgChange),
				fmtFloat(t.LastValue),
				fmtFloat(f.Projected7d),
				fmtFloat(f.Projected30d),
				string(f.Confidence),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeAnalysisText renders the human-readable console summary.
func writeAnalysisText(w io.Writer, ctx core.Context, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	if _, err := fmt.Fprintf(w, "📊 KPI Analysis\n===============\n\n"); err != nil {
		return err
	}
	if ctx.Intake != nil {
		dr := ctx.Intake.DateRange
		if _, err := fmt.Fprintf(w, "Period %s to %s, %d rows, quality grade %s\n\n",
			dr.Start, dr.End, ctx.Intake.Rows, ctx.Intake.QualityGrade); err != nil {
			return err
		}
	}

	if err := writeTrendTable(w, ctx, cfg, fmtFloat); err != nil {
		return err
	}
	if err := writeRecommendationTable(w, ctx, cfg); err != nil {
		return err
	}
	if err := writeForecastTable(w, ctx, fmtFloat); err != nil {
		return err
	}

	if ctx.Evaluation != nil {
		if _, err := fmt.Fprintf(w, "Self-assessment: overall %.1f (clarity %.1f, consistency %.1f, actionability %.1f, confidence %.1f)\n",
			ctx.Evaluation.Overall, ctx.Evaluation.Clarity, ctx.Evaluation.Consistency,
			ctx.Evaluation.Actionability, ctx.Evaluation.Confidence); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v. Report: %s\n", duration.Round(time.Millisecond), cfg.ReportPath); err != nil {
		return err
	}
	return nil
}

func writeTrendTable(w io.Writer, ctx core.Context, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(ctx.Trends) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"KPI", "Direction", "Growth %", "Volatility %", "Last"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, kpi := range sortedKeys(ctx.Trends) {
		t := ctx.Trends[kpi]
		data = append(data, []string{
			kpi,
			contract.GetDirectionLabel(t.Direction, cfg.UseColors),
			fmtFloat(t.GrowthPct),
			fmtFloat(t.Volatility),
			fmtFloat(t.LastValue),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeRecommendationTable(w io.Writer, ctx core.Context, cfg *contract.Config) error {
	if len(ctx.Recommendations) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Priority", "Category", "KPI", "Recommendation"})

	descWidth := maxDescriptionWidth(cfg)
	var data [][]string
	for _, rec := range ctx.Recommendations {
		data = append(data, []string{
			contract.GetPriorityLabel(rec.Priority, cfg.UseColors),
			rec.Category,
			rec.KPI,
			truncate(rec.Description, descWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeForecastTable(w io.Writer, ctx core.Context, fmtFloat func(float64) string) error {
	if len(ctx.Forecasts) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"KPI", "Current Avg", "7-Day", "30-Day", "Confidence"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, f := range ctx.Forecasts {
		data = append(data, []string{
			f.KPI,
			fmtFloat(f.CurrentAvg),
			fmtFloat(f.Projected7d),
			fmtFloat(f.Projected30d),
			string(f.Confidence),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
