package schema

import "math"

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// Clamp01 limits v to the unit interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// StrengthFor labels a correlation coefficient by the fixed policy cutoffs.
func StrengthFor(coefficient float64) Strength {
	abs := math.Abs(coefficient)
	switch {
	case abs >= StrongThreshold:
		return StrongCorrelation
	case abs >= ModerateThreshold:
		return ModerateCorrelation
	default:
		return WeakCorrelation
	}
}

// ConfidenceFor grades a forecast by the volatility of its source series.
func ConfidenceFor(volatilityPct float64) ConfidenceLabel {
	switch {
	case volatilityPct < HighConfidenceVolatility:
		return HighConfidence
	case volatilityPct < MediumConfidenceVolatility:
		return MediumConfidence
	default:
		return LowConfidence
	}
}

// ConfidenceNumeric maps a confidence label to its numeric weight for
// evaluation scoring.
func ConfidenceNumeric(label ConfidenceLabel) float64 {
	switch label {
	case HighConfidence:
		return 10
	case MediumConfidence:
		return 6
	default:
		return 3
	}
}

// DirectionFor classifies a growth rate against the flat threshold.
func DirectionFor(growthPct, flatThresholdPct float64) TrendDirection {
	switch {
	case growthPct > flatThresholdPct:
		return UpwardTrend
	case growthPct < -flatThresholdPct:
		return DownwardTrend
	default:
		return FlatTrend
	}
}
