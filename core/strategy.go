package core

import (
	"fmt"
	"sort"

	"github.com/autoops/kpiscope/core/stats"
	"github.com/autoops/kpiscope/schema"
)

// Decision thresholds for the strategy stage, in percent.
const (
	riskGrowthFloor      = -10.0 // declines steeper than this become risks
	opportunityGrowthBar = 15.0  // growth above this becomes an opportunity
	volatilityCeiling    = 30.0  // series noisier than this need stabilizing
	forecastTailDays     = 7     // recent average fed into projections
)

// runStrategy converts the analytical record into prioritized actions:
// recommendations per KPI, risks, opportunities and short-horizon
// forecasts. KPIs are walked in lexical order so the output is
// deterministic for identical inputs.
func (r *runner) runStrategy(ctx Context) (Context, error) {
	kpis := sortedTrendKPIs(ctx.Trends)

	var recs []schema.Recommendation
	var risks []schema.Risk
	var opps []schema.Opportunity
	for _, kpi := range kpis {
		trend := ctx.Trends[kpi]
		if rec, ok := recommendationFor(trend); ok {
			recs = append(recs, rec)
		}
		if risk, ok := riskFor(trend); ok {
			risks = append(risks, risk)
		}
		if opp, ok := opportunityFor(trend); ok {
			opps = append(opps, opp)
		}
	}

	if best, ok := bestChannel(ctx.ChannelStats); ok {
		opps = append(opps, best)
	}

	windowDays := spanDays(ctx.Frame)
	forecasts := make([]schema.ForecastProjection, 0, len(kpis))
	for _, kpi := range kpis {
		forecasts = append(forecasts,
			stats.Project(kpi, ctx.Frame.TailAverage(kpi, forecastTailDays), ctx.Trends[kpi], windowDays))
	}

	ctx.Recommendations = recs
	ctx.Risks = risks
	ctx.Opportunities = opps
	ctx.Forecasts = forecasts
	return ctx, nil
}

func sortedTrendKPIs(trends map[string]schema.TrendRecord) []string {
	kpis := make([]string, 0, len(trends))
	for kpi := range trends {
		kpis = append(kpis, kpi)
	}
	sort.Strings(kpis)
	return kpis
}

// spanDays returns the number of days the frame covers, floored at one so
// forecast exponents stay defined for single-day spans.
func spanDays(frame *schema.Frame) int {
	if frame.Rows() < 2 {
		return 1
	}
	days := int(frame.Dates[frame.Rows()-1].Sub(frame.Dates[0]).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// recommendationFor maps one trend onto a prioritized suggestion. Declining
// KPIs get recovery actions, strong growers get scaling actions, noisy
// series get stabilization, and steady flat series need no action at all.
func recommendationFor(t schema.TrendRecord) (schema.Recommendation, bool) {
	switch {
	case t.Direction == schema.DownwardTrend:
		priority := schema.MediumPriority
		if t.GrowthPct < riskGrowthFloor {
			priority = schema.HighPriority
		}
		rec := schema.Recommendation{
			Priority: priority,
			Category: "recovery",
			KPI:      t.KPI,
			Description: fmt.Sprintf("Investigate and reverse the %.1f%% decline in %s",
				-t.GrowthPct, t.KPI),
			ExpectedImpact: fmt.Sprintf("Return %s to its prior level", t.KPI),
			Timeframe:      "2-4 weeks",
		}
		rec.Plan = actionPlanFor(rec)
		return rec, true

	case t.Direction == schema.UpwardTrend && t.GrowthPct > opportunityGrowthBar:
		rec := schema.Recommendation{
			Priority: schema.MediumPriority,
			Category: "growth",
			KPI:      t.KPI,
			Description: fmt.Sprintf("Scale the drivers behind the %.1f%% growth in %s",
				t.GrowthPct, t.KPI),
			ExpectedImpact: fmt.Sprintf("Sustain double-digit growth in %s", t.KPI),
			Timeframe:      "4-8 weeks",
		}
		rec.Plan = actionPlanFor(rec)
		return rec, true

	case t.Volatility > volatilityCeiling:
		rec := schema.Recommendation{
			Priority: schema.MediumPriority,
			Category: "optimization",
			KPI:      t.KPI,
			Description: fmt.Sprintf("Stabilize %s, currently swinging at %.1f%% volatility",
				t.KPI, t.Volatility),
			ExpectedImpact: fmt.Sprintf("Make %s predictable enough to plan against", t.KPI),
			Timeframe:      "2-4 weeks",
		}
		rec.Plan = actionPlanFor(rec)
		return rec, true

	case t.Direction == schema.UpwardTrend:
		return schema.Recommendation{
			Priority:       schema.LowPriority,
			Category:       "optimization",
			KPI:            t.KPI,
			Description:    fmt.Sprintf("Maintain the current approach for %s", t.KPI),
			ExpectedImpact: fmt.Sprintf("Preserve the %.1f%% upward trend", t.GrowthPct),
			Timeframe:      "Ongoing",
		}, true
	}

	return schema.Recommendation{}, false
}

// actionPlanFor attaches concrete follow-through to recommendations of
// medium priority or higher.
func actionPlanFor(rec schema.Recommendation) *schema.ActionPlan {
	switch rec.Category {
	case "recovery":
		return &schema.ActionPlan{
			Actions: []string{
				fmt.Sprintf("Audit the last 30 days of %s inputs for the inflection point", rec.KPI),
				"Interview channel owners about recent operational changes",
				"Ship one corrective experiment per week until the trend reverses",
			},
			SuccessMetrics: []string{
				fmt.Sprintf("%s week-over-week change turns positive", rec.KPI),
				"Decline arrested within two reporting cycles",
			},
			Timeline: rec.Timeframe,
		}
	case "growth":
		return &schema.ActionPlan{
			Actions: []string{
				fmt.Sprintf("Identify which segments contribute most to %s growth", rec.KPI),
				"Reallocate budget toward the highest-performing segments",
				"Set a stretch target 20% above the current trajectory",
			},
			SuccessMetrics: []string{
				fmt.Sprintf("%s growth rate holds or improves next period", rec.KPI),
				"No regression in adjacent KPIs",
			},
			Timeline: rec.Timeframe,
		}
	default:
		return &schema.ActionPlan{
			Actions: []string{
				fmt.Sprintf("Decompose %s variance by day of week and channel", rec.KPI),
				"Smooth demand-side spikes with pacing rules",
			},
			SuccessMetrics: []string{
				fmt.Sprintf("%s volatility drops below %.0f%%", rec.KPI, volatilityCeiling),
			},
			Timeline: rec.Timeframe,
		}
	}
}

// riskFor flags steep declines and unstable series for executive attention.
func riskFor(t schema.TrendRecord) (schema.Risk, bool) {
	if t.GrowthPct < riskGrowthFloor {
		return schema.Risk{
			Severity: "high",
			KPI:      t.KPI,
			Description: fmt.Sprintf("%s has declined %.1f%% over the analysis window",
				t.KPI, -t.GrowthPct),
			Impact:     "Continued decline threatens the quarterly target",
			Mitigation: fmt.Sprintf("Prioritize the %s recovery plan and review weekly", t.KPI),
		}, true
	}
	if t.Volatility > volatilityCeiling {
		return schema.Risk{
			Severity: "medium",
			KPI:      t.KPI,
			Description: fmt.Sprintf("%s volatility of %.1f%% makes forecasts unreliable",
				t.KPI, t.Volatility),
			Impact:     "Planning and budgeting accuracy degrades",
			Mitigation: "Identify and dampen the sources of variance",
		}, true
	}
	return schema.Risk{}, false
}

// opportunityFor surfaces strong growers worth additional investment.
func opportunityFor(t schema.TrendRecord) (schema.Opportunity, bool) {
	if t.Direction != schema.UpwardTrend || t.GrowthPct <= opportunityGrowthBar {
		return schema.Opportunity{}, false
	}
	potential := "medium"
	if t.GrowthPct > 2*opportunityGrowthBar {
		potential = "high"
	}
	return schema.Opportunity{
		Potential: potential,
		Description: fmt.Sprintf("%s is growing %.1f%% with momentum to spare",
			t.KPI, t.GrowthPct),
		Recommendation: fmt.Sprintf("Increase investment behind %s while the trend holds", t.KPI),
		ExpectedValue:  fmt.Sprintf("Compounding gains if the %.1f%% trajectory continues", t.GrowthPct),
	}, true
}

// bestChannel surfaces the highest-revenue channel as an opportunity when
// channel data was present in the input.
func bestChannel(channels map[string]schema.ChannelStat) (schema.Opportunity, bool) {
	if len(channels) == 0 {
		return schema.Opportunity{}, false
	}
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if channels[name].AvgRevenue > channels[best].AvgRevenue {
			best = name
		}
	}
	stat := channels[best]
	return schema.Opportunity{
		Potential: "medium",
		Description: fmt.Sprintf("%s is the strongest channel at %.2f average revenue across %d records",
			best, stat.AvgRevenue, stat.Records),
		Recommendation: fmt.Sprintf("Shift incremental spend toward %s", best),
		ExpectedValue:  "Higher blended return on the same budget",
	}, true
}
