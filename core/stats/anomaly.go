package stats

import (
	"math"
	"time"

	"github.com/autoops/kpiscope/schema"
)

// IQRMultiplier is the fence width for IQR-based outlier detection.
const IQRMultiplier = 1.5

// DetectAnomalies flags outliers in one KPI series. The z-score method
// flags values whose standardized deviation exceeds zThreshold; the IQR
// method flags values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR]. An
// all-identical series yields no anomalies rather than an error.
//
// dates and values must be parallel slices; the result holds at most one
// record per (KPI, date) pair because input dates are unique.
func DetectAnomalies(kpi string, dates []time.Time, values []float64, method schema.AnomalyMethod, zThreshold float64) []schema.AnomalyRecord {
	if len(values) == 0 || len(dates) != len(values) {
		return nil
	}

	switch method {
	case schema.IQRMethod:
		return detectIQR(kpi, dates, values)
	default:
		return detectZScore(kpi, dates, values, zThreshold)
	}
}

func detectZScore(kpi string, dates []time.Time, values []float64, zThreshold float64) []schema.AnomalyRecord {
	mean := Mean(values)
	stddev := StdDev(values)
	if stddev == 0 {
		// All-identical values cannot be anomalous.
		return nil
	}

	var out []schema.AnomalyRecord
	for i, v := range values {
		z := (v - mean) / stddev
		if math.Abs(z) > zThreshold {
			out = append(out, schema.AnomalyRecord{
				KPI:    kpi,
				Date:   dates[i],
				Value:  v,
				Score:  schema.RoundTo(z, 2),
				Method: schema.ZScoreMethod,
			})
		}
	}
	return out
}

func detectIQR(kpi string, dates []time.Time, values []float64) []schema.AnomalyRecord {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - IQRMultiplier*iqr
	upper := q3 + IQRMultiplier*iqr

	var out []schema.AnomalyRecord
	for i, v := range values {
		if v < lower || v > upper {
			// Score is the distance beyond the violated fence in IQR
			// units. A zero IQR collapses both fences onto the quartiles,
			// so the score falls back to the raw distance.
			dist := v - upper
			if v < lower {
				dist = lower - v
			}
			score := dist
			if iqr != 0 {
				score = dist / iqr
			}
			out = append(out, schema.AnomalyRecord{
				KPI:    kpi,
				Date:   dates[i],
				Value:  v,
				Score:  schema.RoundTo(score, 2),
				Method: schema.IQRMethod,
				Lower:  schema.RoundTo(lower, 2),
				Upper:  schema.RoundTo(upper, 2),
			})
		}
	}
	return out
}
