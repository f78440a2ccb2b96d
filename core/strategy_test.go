package core

import (
	"testing"
	"time"

	"github.com/autoops/kpiscope/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendationForSteepDecline(t *testing.T) {
	rec, ok := recommendationFor(schema.TrendRecord{
		KPI: "Revenue", Direction: schema.DownwardTrend, GrowthPct: -18,
	})
	require.True(t, ok)

	assert.Equal(t, schema.HighPriority, rec.Priority)
	assert.Equal(t, "recovery", rec.Category)
	assert.Contains(t, rec.Description, "18.0% decline")
	require.NotNil(t, rec.Plan)
	assert.NotEmpty(t, rec.Plan.Actions)
	assert.NotEmpty(t, rec.Plan.SuccessMetrics)
}

func TestRecommendationForMildDecline(t *testing.T) {
	rec, ok := recommendationFor(schema.TrendRecord{
		KPI: "Customers", Direction: schema.DownwardTrend, GrowthPct: -5,
	})
	require.True(t, ok)
	assert.Equal(t, schema.MediumPriority, rec.Priority)
	assert.Equal(t, "recovery", rec.Category)
}

func TestRecommendationForStrongGrowth(t *testing.T) {
	rec, ok := recommendationFor(schema.TrendRecord{
		KPI: "Revenue", Direction: schema.UpwardTrend, GrowthPct: 25,
	})
	require.True(t, ok)
	assert.Equal(t, "growth", rec.Category)
	assert.Equal(t, schema.MediumPriority, rec.Priority)
	require.NotNil(t, rec.Plan)
}

func TestRecommendationForVolatileSeries(t *testing.T) {
	rec, ok := recommendationFor(schema.TrendRecord{
		KPI: "Conversion_Rate", Direction: schema.FlatTrend, GrowthPct: 0.5, Volatility: 45,
	})
	require.True(t, ok)
	assert.Equal(t, "optimization", rec.Category)
	assert.Contains(t, rec.Description, "Stabilize")
	require.NotNil(t, rec.Plan)
}

func TestRecommendationForModestGrowth(t *testing.T) {
	rec, ok := recommendationFor(schema.TrendRecord{
		KPI: "Customers", Direction: schema.UpwardTrend, GrowthPct: 8,
	})
	require.True(t, ok)
	assert.Equal(t, schema.LowPriority, rec.Priority)
	assert.Contains(t, rec.Description, "Maintain")
	// Low priority carries no action plan.
	assert.Nil(t, rec.Plan)
}

func TestRecommendationForStableFlat(t *testing.T) {
	_, ok := recommendationFor(schema.TrendRecord{
		KPI: "Marketing_Spend", Direction: schema.FlatTrend, GrowthPct: 0.2, Volatility: 3,
	})
	assert.False(t, ok)
}

func TestRiskFor(t *testing.T) {
	risk, ok := riskFor(schema.TrendRecord{KPI: "Revenue", GrowthPct: -15})
	require.True(t, ok)
	assert.Equal(t, "high", risk.Severity)
	assert.Contains(t, risk.Description, "declined 15.0%")

	risk, ok = riskFor(schema.TrendRecord{KPI: "Customers", GrowthPct: 2, Volatility: 40})
	require.True(t, ok)
	assert.Equal(t, "medium", risk.Severity)

	_, ok = riskFor(schema.TrendRecord{KPI: "Revenue", GrowthPct: 5, Volatility: 10})
	assert.False(t, ok)
}

func TestOpportunityFor(t *testing.T) {
	opp, ok := opportunityFor(schema.TrendRecord{
		KPI: "Revenue", Direction: schema.UpwardTrend, GrowthPct: 20,
	})
	require.True(t, ok)
	assert.Equal(t, "medium", opp.Potential)

	opp, ok = opportunityFor(schema.TrendRecord{
		KPI: "Customers", Direction: schema.UpwardTrend, GrowthPct: 45,
	})
	require.True(t, ok)
	assert.Equal(t, "high", opp.Potential)

	_, ok = opportunityFor(schema.TrendRecord{
		KPI: "Revenue", Direction: schema.UpwardTrend, GrowthPct: 10,
	})
	assert.False(t, ok)

	_, ok = opportunityFor(schema.TrendRecord{
		KPI: "Revenue", Direction: schema.DownwardTrend, GrowthPct: 20,
	})
	assert.False(t, ok)
}

func TestBestChannel(t *testing.T) {
	channels := map[string]schema.ChannelStat{
		"Online": {Records: 10, AvgRevenue: 1200},
		"Retail": {Records: 8, AvgRevenue: 900},
		"Direct": {Records: 5, AvgRevenue: 1500},
	}

	opp, ok := bestChannel(channels)
	require.True(t, ok)
	assert.Contains(t, opp.Description, "Direct")
	assert.Contains(t, opp.Recommendation, "Direct")

	_, ok = bestChannel(nil)
	assert.False(t, ok)
}

func TestSpanDays(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	frame := &schema.Frame{Dates: []time.Time{start, start.AddDate(0, 0, 9)}}
	assert.Equal(t, 9, spanDays(frame))

	// Single-row and empty frames floor at one day.
	assert.Equal(t, 1, spanDays(&schema.Frame{Dates: []time.Time{start}}))
	assert.Equal(t, 1, spanDays(&schema.Frame{}))
}

func TestRunStrategyDeterministicOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	frame := &schema.Frame{
		Dates: []time.Time{start, start.AddDate(0, 0, 1), start.AddDate(0, 0, 2)},
		Columns: map[string][]float64{
			"Revenue":   {100, 90, 80},
			"Customers": {50, 55, 60},
		},
	}
	ctx := Context{
		Frame: frame,
		Trends: map[string]schema.TrendRecord{
			"Revenue":   {KPI: "Revenue", Direction: schema.DownwardTrend, GrowthPct: -20},
			"Customers": {KPI: "Customers", Direction: schema.UpwardTrend, GrowthPct: 20},
		},
	}

	r := &runner{}
	out1, err := r.runStrategy(ctx)
	require.NoError(t, err)
	out2, err := r.runStrategy(ctx)
	require.NoError(t, err)

	assert.Equal(t, out1.Recommendations, out2.Recommendations)
	assert.Equal(t, out1.Forecasts, out2.Forecasts)

	// Forecasts follow the lexical KPI order.
	require.Len(t, out1.Forecasts, 2)
	assert.Equal(t, "Customers", out1.Forecasts[0].KPI)
	assert.Equal(t, "Revenue", out1.Forecasts[1].KPI)

	// The decline produced both a recommendation and a risk.
	require.NotEmpty(t, out1.Recommendations)
	require.NotEmpty(t, out1.Risks)
	assert.Equal(t, "Revenue", out1.Risks[0].KPI)
}
