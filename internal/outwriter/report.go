package outwriter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/autoops/kpiscope/core"
	"github.com/autoops/kpiscope/schema"
)

// BuildReport renders the executive markdown report from the analysis
// context. Section order is fixed; sections backed by empty data state the
// absence instead of disappearing, so readers can tell "nothing found"
// from "not analyzed".
func BuildReport(ctx core.Context) (string, error) {
	fmtFloat := createFormatter(ctx.Config.Precision)
	var b strings.Builder

	b.WriteString("# KPI Analysis Report\n\n")
	fmt.Fprintf(&b, "- **Generated:** %s\n", time.Now().Format("2006-01-02 15:04"))
	if ctx.SessionID != "" {
		fmt.Fprintf(&b, "- **Session:** %s\n", ctx.SessionID)
	}
	if ctx.Frame != nil {
		dr := ctx.Frame.DateRange()
		fmt.Fprintf(&b, "- **Period:** %s to %s (%d days of data)\n", dr.Start, dr.End, ctx.Frame.Rows())
	}
	b.WriteString("\n")

	writeExecutiveSummary(&b, ctx)
	writeKPISummary(&b, ctx, fmtFloat)
	writeTrendSection(&b, ctx, fmtFloat)
	writeAnomalySection(&b, ctx, fmtFloat)
	writeRootCauseSection(&b, ctx, fmtFloat)
	writeComparisonSection(&b, ctx, fmtFloat)
	writeRecommendationSection(&b, ctx)
	writeForecastSection(&b, ctx, fmtFloat)

	return b.String(), nil
}

// AppendEvaluation attaches the run's self-assessment below the report body.
func AppendEvaluation(report string, score *schema.EvaluationScore) string {
	if score == nil {
		return report
	}
	var b strings.Builder
	b.WriteString(report)
	if !strings.HasSuffix(report, "\n") {
		b.WriteString("\n")
	}

	b.WriteString("\n## Run Quality Self-Assessment\n\n")
	b.WriteString("| Dimension | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Clarity | %.1f |\n", score.Clarity)
	fmt.Fprintf(&b, "| Consistency | %.1f |\n", score.Consistency)
	fmt.Fprintf(&b, "| Actionability | %.1f |\n", score.Actionability)
	fmt.Fprintf(&b, "| Confidence | %.1f |\n", score.Confidence)
	fmt.Fprintf(&b, "| **Overall** | **%.1f** |\n", score.Overall)

	writeBulletList(&b, "Strengths", score.Strengths)
	writeBulletList(&b, "Weaknesses", score.Weaknesses)
	writeBulletList(&b, "Suggestions", score.Suggestions)
	return b.String()
}

func writeBulletList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s**\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func writeExecutiveSummary(b *strings.Builder, ctx core.Context) {
	b.WriteString("## Executive Summary\n\n")
	for _, finding := range ctx.KeyFindings {
		fmt.Fprintf(b, "- %s\n", finding)
	}
	if ctx.Intake != nil {
		fmt.Fprintf(b, "- Data quality grade %s (%.0f%% complete)\n",
			ctx.Intake.QualityGrade, ctx.Intake.QualityScore*100)
	}
	b.WriteString("\n")
}

func writeKPISummary(b *strings.Builder, ctx core.Context, fmtFloat func(float64) string) {
	b.WriteString("## KPI Summary\n\n")
	if len(ctx.Trends) == 0 {
		b.WriteString("No KPI had enough data to summarize.\n\n")
		return
	}

	b.WriteString("| KPI | Average | Last | Growth | Direction | Volatility |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, kpi := range sortedKeys(ctx.Trends) {
		t := ctx.Trends[kpi]
		fmt.Fprintf(b, "| %s | %s | %s | %s%% | %s | %s%% |\n",
			kpi, fmtFloat(t.MeanValue), fmtFloat(t.LastValue),
			fmtFloat(t.GrowthPct), t.Direction, fmtFloat(t.Volatility))
	}
	b.WriteString("\n")
}

func writeTrendSection(b *strings.Builder, ctx core.Context, fmtFloat func(float64) string) {
	b.WriteString("## Key Changes & Trends\n\n")
	if len(ctx.TopTrends) == 0 {
		b.WriteString("No notable movement in the analysis window.\n\n")
		return
	}
	for _, t := range ctx.TopTrends {
		fmt.Fprintf(b, "- **%s** moved %s%% over the period (%s, avg daily change %s%%)\n",
			t.KPI, fmtFloat(t.GrowthPct), t.Direction, fmtFloat(t.AvgChange))
	}
	b.WriteString("\n")
}

func writeAnomalySection(b *strings.Builder, ctx core.Context, fmtFloat func(float64) string) {
	b.WriteString("## Anomaly Detection\n\n")
	if len(ctx.Anomalies) == 0 {
		b.WriteString("No anomalies detected.\n\n")
		return
	}

	b.WriteString("| KPI | Date | Value | Score | Method |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, a := range ctx.Anomalies {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			a.KPI, a.Date.Format(schema.DateFormat), fmtFloat(a.Value), fmtFloat(a.Score), a.Method)
	}
	b.WriteString("\n")
}

func writeRootCauseSection(b *strings.Builder, ctx core.Context, fmtFloat func(float64) string) {
	b.WriteString("## Root Cause Analysis\n\n")
	if len(ctx.Correlations) == 0 {
		b.WriteString("No statistically meaningful correlations in this window.\n\n")
		return
	}

	b.WriteString("| KPI Pair | Coefficient | Strength |\n")
	b.WriteString("|---|---|---|\n")
	for _, c := range ctx.Correlations {
		fmt.Fprintf(b, "| %s / %s | %s | %s |\n",
			c.KPIA, c.KPIB, fmtFloat(c.Coefficient), c.Strength)
	}
	b.WriteString("\n")

	if len(ctx.Hypotheses) > 0 {
		b.WriteString("**Hypotheses**\n\n")
		for _, h := range ctx.Hypotheses {
			fmt.Fprintf(b, "- %s (confidence %.2f)\n", h.Narrative, h.Confidence)
		}
		b.WriteString("\n")
	}

	if len(ctx.ChannelStats) > 0 {
		b.WriteString("**Channel Performance**\n\n")
		b.WriteString("| Channel | Records | Avg Revenue | Avg Customers | Avg Conversion |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, name := range sortedKeys(ctx.ChannelStats) {
			s := ctx.ChannelStats[name]
			fmt.Fprintf(b, "| %s | %d | %s | %s | %.4f |\n",
				name, s.Records, fmtFloat(s.AvgRevenue), fmtFloat(s.AvgCustomers), s.AvgConversion)
		}
		b.WriteString("\n")
	}
}

func writeComparisonSection(b *strings.Builder, ctx core.Context, fmtFloat func(float64) string) {
	b.WriteString("## Historical Comparison\n\n")
	if len(ctx.Comparison) == 0 {
		b.WriteString("No prior history available for comparison.\n\n")
		return
	}

	b.WriteString("| KPI | Current | Historical Avg | Change | Data Points |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, kpi := range sortedKeys(ctx.Comparison) {
		c := ctx.Comparison[kpi]
		fmt.Fprintf(b, "| %s | %s | %s | %s%% | %d |\n",
			kpi, fmtFloat(c.Current), fmtFloat(c.HistoricalAvg), fmtFloat(c.ChangePct), c.DataPoints)
	}
	b.WriteString("\n")
}

func writeRecommendationSection(b *strings.Builder, ctx core.Context) {
	b.WriteString("## Recommendations\n\n")
	if len(ctx.Recommendations) == 0 {
		b.WriteString("No action required; all KPIs are stable.\n\n")
	}
	for i, rec := range ctx.Recommendations {
		fmt.Fprintf(b, "%d. **[%s] %s** (%s)\n", i+1, strings.ToUpper(string(rec.Priority)), rec.Description, rec.Category)
		fmt.Fprintf(b, "   - Expected impact: %s\n", rec.ExpectedImpact)
		fmt.Fprintf(b, "   - Timeframe: %s\n", rec.Timeframe)
		if rec.Plan != nil {
			for _, action := range rec.Plan.Actions {
				fmt.Fprintf(b, "   - Action: %s\n", action)
			}
			for _, metric := range rec.Plan.SuccessMetrics {
				fmt.Fprintf(b, "   - Success metric: %s\n", metric)
			}
		}
	}
	b.WriteString("\n")

	if len(ctx.Risks) > 0 {
		b.WriteString("### Risks\n\n")
		for _, r := range ctx.Risks {
			fmt.Fprintf(b, "- **[%s] %s**: %s. Mitigation: %s\n",
				strings.ToUpper(r.Severity), r.KPI, r.Description, r.Mitigation)
		}
		b.WriteString("\n")
	}

	if len(ctx.Opportunities) > 0 {
		b.WriteString("### Opportunities\n\n")
		for _, o := range ctx.Opportunities {
			fmt.Fprintf(b, "- **[%s potential]** %s. %s\n", o.Potential, o.Description, o.Recommendation)
		}
		b.WriteString("\n")
	}
}

func writeForecastSection(b *strings.Builder, ctx core.Context, fmtFloat func(float64) string) {
	b.WriteString("## Forecast\n\n")
	if len(ctx.Forecasts) == 0 {
		b.WriteString("Not enough data to project forward.\n")
		return
	}

	b.WriteString("| KPI | Current Avg | 7-Day | 30-Day | Confidence |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range ctx.Forecasts {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			f.KPI, fmtFloat(f.CurrentAvg), fmtFloat(f.Projected7d), fmtFloat(f.Projected30d), f.Confidence)
	}
}

// sortedKeys returns the map keys in lexical order for stable rendering.
func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
