package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/autoops/kpiscope/schema"
)

// runEvaluation scores the finished run on clarity, consistency,
// actionability and confidence. The evaluator only reads the context; a
// poor score never fails the run.
func (r *runner) runEvaluation(ctx Context) (Context, error) {
	score := evaluateRun(ctx)
	ctx.Evaluation = &score
	return ctx, nil
}

// Report sections the clarity scorer expects to find.
var expectedSections = []string{
	"Executive Summary",
	"Key Changes",
	"Anomal",
	"Root Cause",
	"Recommendations",
	"Forecast",
}

// evaluateRun grades the run's output on a 0-10 scale per dimension.
// Overall is the mean of clarity, consistency and actionability;
// confidence is reported alongside but kept out of the mean because it
// grades the input data rather than the run's own work.
func evaluateRun(ctx Context) schema.EvaluationScore {
	clarity := scoreClarity(ctx.Report)
	consistency := scoreConsistency(ctx)
	actionability := scoreActionability(ctx)
	confidence := scoreConfidence(ctx)

	score := schema.EvaluationScore{
		Clarity:       clarity,
		Consistency:   consistency,
		Actionability: actionability,
		Confidence:    confidence,
		Overall:       schema.RoundTo((clarity+consistency+actionability)/3, 1),
	}
	score.Strengths, score.Weaknesses, score.Suggestions = critique(score, ctx)
	return score
}

// scoreClarity grades the report's structure and readability: sensible
// length, all expected sections present, and markdown formatting in use.
func scoreClarity(report string) float64 {
	score := 5.0

	switch n := len(report); {
	case n >= 1000 && n <= 5000:
		score += 1.5
	case n > 500:
		score += 0.5
	}

	present := 0
	for _, section := range expectedSections {
		if strings.Contains(report, section) {
			present++
		}
	}
	score += 2 * float64(present) / float64(len(expectedSections))

	if strings.Contains(report, "|") {
		score += 0.5
	}
	if strings.Contains(report, "## ") {
		score += 0.5
	}
	if strings.Contains(report, "**") {
		score += 0.5
	}
	return clampScore(score)
}

// scoreConsistency checks that the report and recommendations actually
// follow from the analysis: every declining KPI must be answered by a
// recommendation or risk, headline trends and hypothesis KPIs must appear
// in the report text.
func scoreConsistency(ctx Context) float64 {
	score := 10.0

	for _, kpi := range sortedTrendKPIs(ctx.Trends) {
		t := ctx.Trends[kpi]
		if t.Direction != schema.DownwardTrend {
			continue
		}
		if !kpiAddressed(kpi, ctx.Recommendations, ctx.Risks) {
			score -= 1.5
		}
	}

	for _, t := range ctx.TopTrends {
		if !strings.Contains(ctx.Report, t.KPI) {
			score -= 1
		}
	}
	for _, h := range ctx.Hypotheses {
		if !strings.Contains(ctx.Report, h.Driver) || !strings.Contains(ctx.Report, h.Outcome) {
			score -= 1
		}
	}
	return clampScore(score)
}

func kpiAddressed(kpi string, recs []schema.Recommendation, risks []schema.Risk) bool {
	for _, rec := range recs {
		if rec.KPI == kpi {
			return true
		}
	}
	for _, risk := range risks {
		if risk.KPI == kpi {
			return true
		}
	}
	return false
}

// scoreActionability rewards concrete, plan-backed output over vague
// advice.
func scoreActionability(ctx Context) float64 {
	if len(ctx.Recommendations) == 0 {
		return 0
	}
	score := 3.0
	score += math.Min(4, float64(len(ctx.Recommendations)))

	var plans int
	for _, rec := range ctx.Recommendations {
		if rec.Plan != nil {
			plans++
		}
	}
	score += math.Min(2, 0.5*float64(plans))

	if len(ctx.Risks) > 0 {
		score += 0.5
	}
	if len(ctx.Opportunities) > 0 {
		score += 0.5
	}
	return clampScore(score)
}

// scoreConfidence grades how much the findings can be trusted: input data
// quality, the strength of the correlation evidence, and forecast
// stability. The correlation component drops out of the weighting when the
// run produced no hypotheses, because absence of strong correlations is
// not itself evidence of a weak run.
func scoreConfidence(ctx Context) float64 {
	const (
		qualityWeight     = 0.4
		correlationWeight = 0.3
		forecastWeight    = 0.3
	)

	var quality float64
	if ctx.Intake != nil {
		quality = ctx.Intake.QualityScore * 10
	}

	var forecast float64
	if len(ctx.Forecasts) > 0 {
		var sum float64
		for _, f := range ctx.Forecasts {
			sum += schema.ConfidenceNumeric(f.Confidence)
		}
		forecast = sum / float64(len(ctx.Forecasts))
	}

	if len(ctx.Hypotheses) == 0 {
		total := qualityWeight + forecastWeight
		return clampScore((qualityWeight*quality + forecastWeight*forecast) / total)
	}

	var rSum float64
	for _, h := range ctx.Hypotheses {
		rSum += h.Confidence
	}
	correlation := rSum / float64(len(ctx.Hypotheses)) * 10

	return clampScore(qualityWeight*quality + correlationWeight*correlation + forecastWeight*forecast)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return schema.RoundTo(v, 1)
}

// critique turns the numeric scores into named strengths, weaknesses and
// concrete suggestions.
func critique(score schema.EvaluationScore, ctx Context) (strengths, weaknesses, suggestions []string) {
	if score.Clarity >= 8 {
		strengths = append(strengths, "Report is well structured with all expected sections")
	} else if score.Clarity <= 5 {
		weaknesses = append(weaknesses, "Report is missing sections or hard to scan")
		suggestions = append(suggestions, "Add the missing report sections and use tables for KPI summaries")
	}

	if score.Consistency >= 8 {
		strengths = append(strengths, "Recommendations follow directly from the detected trends")
	} else if score.Consistency <= 5 {
		weaknesses = append(weaknesses, "Some findings are not reflected in the report or recommendations")
		suggestions = append(suggestions, "Address every steep decline with a recovery recommendation or risk")
	}

	if score.Actionability >= 8 {
		strengths = append(strengths, "Recommendations come with concrete action plans")
	} else if score.Actionability <= 5 {
		weaknesses = append(weaknesses, "Output is light on concrete next steps")
		suggestions = append(suggestions, "Attach action plans with success metrics to each recommendation")
	}

	if score.Confidence <= 5 {
		weaknesses = append(weaknesses,
			fmt.Sprintf("Confidence is limited by the underlying data (quality grade %s)", intakeGrade(ctx)))
		suggestions = append(suggestions, "Collect a longer or cleaner history before acting on forecasts")
	}
	return strengths, weaknesses, suggestions
}

func intakeGrade(ctx Context) string {
	if ctx.Intake == nil {
		return "unknown"
	}
	return ctx.Intake.QualityGrade
}
