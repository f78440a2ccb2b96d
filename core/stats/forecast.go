package stats

import (
	"math"

	"github.com/autoops/kpiscope/schema"
)

// Forecast horizons, in days.
const (
	ShortHorizonDays = 7
	LongHorizonDays  = 30
)

// Forecast projects a current value forward by compounding the observed
// growth rate over the elapsed window:
//
//	current * (1 + growthPct/100)^(horizonDays/totalWindowDays)
//
// A non-positive window yields the current value unchanged.
func Forecast(current, growthPct float64, horizonDays, totalWindowDays int) float64 {
	if totalWindowDays <= 0 || current == 0 {
		return current
	}
	base := 1 + growthPct/100
	if base <= 0 {
		// Growth of -100% or worse floors the projection at zero.
		return 0
	}
	exp := float64(horizonDays) / float64(totalWindowDays)
	return current * math.Pow(base, exp)
}

// Project builds the standard 7/30 day projection for one KPI. currentAvg
// is the recent average level, trend supplies the growth rate and the
// volatility that grades confidence, and windowDays is the span of the
// observed series.
func Project(kpi string, currentAvg float64, trend schema.TrendRecord, windowDays int) schema.ForecastProjection {
	return schema.ForecastProjection{
		KPI:          kpi,
		CurrentAvg:   schema.RoundTo(currentAvg, 2),
		Projected7d:  schema.RoundTo(Forecast(currentAvg, trend.GrowthPct, ShortHorizonDays, windowDays), 2),
		Projected30d: schema.RoundTo(Forecast(currentAvg, trend.GrowthPct, LongHorizonDays, windowDays), 2),
		Confidence:   schema.ConfidenceFor(trend.Volatility),
	}
}
