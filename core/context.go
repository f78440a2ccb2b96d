package core

import (
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// Context is the shared analysis record threaded through the pipeline.
// Stages receive it by value and return an enriched copy, so a stage can
// only ever add fields; nothing written by an earlier stage is mutated or
// removed. The full execution trace is reconstructable from the final
// value alone.
type Context struct {
	RunID  string
	Config *contract.Config

	// Intake
	Frame  *schema.Frame
	Intake *schema.IntakeReport

	// TrendDetection
	Trends      map[string]schema.TrendRecord
	Anomalies   []schema.AnomalyRecord
	TopTrends   []schema.TrendRecord
	KeyFindings []string

	// RootCause
	Correlations []schema.CorrelationRecord
	Hypotheses   []schema.Hypothesis
	ChannelStats map[string]schema.ChannelStat

	// Memory
	SessionID   string
	Comparison  map[string]schema.KPIComparison
	MemoryStats *schema.MemoryStats

	// Strategy
	Recommendations []schema.Recommendation
	Risks           []schema.Risk
	Opportunities   []schema.Opportunity
	Forecasts       []schema.ForecastProjection

	// Reporting
	Report string

	// Evaluation
	Evaluation *schema.EvaluationScore
}

// summary condenses the populated context fields into the trace record
// shape the log sink expects.
func (c Context) summary() map[string]any {
	out := make(map[string]any)
	if c.Frame != nil {
		out["rows"] = c.Frame.Rows()
		out["kpis"] = len(c.Frame.Columns)
	}
	if c.Intake != nil {
		out["quality_grade"] = c.Intake.QualityGrade
	}
	if c.Trends != nil {
		out["trends"] = len(c.Trends)
		out["anomalies"] = len(c.Anomalies)
	}
	if c.Correlations != nil {
		out["correlations"] = len(c.Correlations)
		out["hypotheses"] = len(c.Hypotheses)
	}
	if c.SessionID != "" {
		out["session_id"] = c.SessionID
		out["historical_kpis"] = len(c.Comparison)
	}
	if c.Recommendations != nil {
		out["recommendations"] = len(c.Recommendations)
		out["risks"] = len(c.Risks)
		out["forecasts"] = len(c.Forecasts)
	}
	if c.Report != "" {
		out["report_bytes"] = len(c.Report)
	}
	if c.Evaluation != nil {
		out["overall_score"] = c.Evaluation.Overall
	}
	return out
}
