package core

import (
	"errors"
	"fmt"

	"github.com/autoops/kpiscope/core/stats"
	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// topTrendCount caps the headline trends surfaced to later stages.
const topTrendCount = 3

// runTrendDetection derives a trend record and anomaly scan for every KPI
// column. A KPI too short to trend is skipped rather than failing the run;
// the whole stage fails only when no KPI could be analyzed at all.
func (r *runner) runTrendDetection(ctx Context) (Context, error) {
	trends := make(map[string]schema.TrendRecord)
	var anomalies []schema.AnomalyRecord

	for _, kpi := range ctx.Frame.KPINames() {
		values := ctx.Frame.Series(kpi)

		trend, err := stats.DescribeTrend(kpi, values, r.cfg.MAWindow, r.cfg.FlatThresholdPct)
		if err != nil {
			if errors.Is(err, contract.ErrInsufficientData) {
				continue
			}
			return ctx, err
		}
		trends[kpi] = trend

		anomalies = append(anomalies,
			stats.DetectAnomalies(kpi, ctx.Frame.Dates, values, r.cfg.AnomalyMethod, r.cfg.ZThreshold)...)
	}

	if len(trends) == 0 {
		return ctx, fmt.Errorf("%w: no KPI had enough data points to trend", contract.ErrInsufficientData)
	}

	ctx.Trends = trends
	ctx.Anomalies = anomalies
	ctx.TopTrends = stats.TopTrends(flattenTrends(trends), topTrendCount)
	ctx.KeyFindings = keyFindings(ctx.TopTrends, anomalies)
	return ctx, nil
}

func flattenTrends(trends map[string]schema.TrendRecord) []schema.TrendRecord {
	out := make([]schema.TrendRecord, 0, len(trends))
	for _, t := range trends {
		out = append(out, t)
	}
	return out
}

// keyFindings renders the headline trends and the anomaly tally as short
// executive sentences.
func keyFindings(topTrends []schema.TrendRecord, anomalies []schema.AnomalyRecord) []string {
	findings := make([]string, 0, len(topTrends)+1)
	for _, t := range topTrends {
		findings = append(findings, fmt.Sprintf("%s is trending %s (%.1f%% growth, %.1f%% volatility)",
			t.KPI, t.Direction, t.GrowthPct, t.Volatility))
	}

	if len(anomalies) == 0 {
		findings = append(findings, "No anomalies detected")
		return findings
	}
	affected := make(map[string]struct{})
	for _, a := range anomalies {
		affected[a.KPI] = struct{}{}
	}
	findings = append(findings, fmt.Sprintf("%d anomalous data points detected across %d KPIs",
		len(anomalies), len(affected)))
	return findings
}
