package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// Correlate computes the correlation coefficient between two equal-length
// series. It fails with ErrInsufficientData for fewer than three paired
// points or when either series has zero variance, because the coefficient
// is undefined in both cases.
func Correlate(a, b []float64, method schema.CorrelationMethod) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: series lengths differ (%d vs %d)",
			contract.ErrInsufficientData, len(a), len(b))
	}
	if len(a) < schema.MinCorrelationPoints {
		return 0, fmt.Errorf("%w: correlation needs at least %d paired points, got %d",
			contract.ErrInsufficientData, schema.MinCorrelationPoints, len(a))
	}

	x, y := a, b
	if method == schema.SpearmanMethod {
		x, y = ranks(a), ranks(b)
	}

	sx, sy := StdDev(x), StdDev(y)
	if sx == 0 || sy == 0 {
		return 0, fmt.Errorf("%w: correlation undefined for a constant series",
			contract.ErrInsufficientData)
	}

	mx, my := Mean(x), Mean(y)
	var cov float64
	for i := range x {
		cov += (x[i] - mx) * (y[i] - my)
	}
	cov /= float64(len(x))

	return cov / (sx * sy), nil
}

// CorrelationMatrix computes every unordered KPI pair once and returns the
// records ordered by descending absolute coefficient, ties broken by the
// pair's lexical names, so downstream hypothesis generation deterministically
// sees the strongest relationships first. Pairs whose coefficient is
// undefined are omitted rather than propagated as errors.
func CorrelationMatrix(series map[string][]float64, method schema.CorrelationMethod) []schema.CorrelationRecord {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []schema.CorrelationRecord
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			r, err := Correlate(series[names[i]], series[names[j]], method)
			if err != nil {
				continue
			}
			out = append(out, schema.CorrelationRecord{
				KPIA:        names[i],
				KPIB:        names[j],
				Coefficient: schema.RoundTo(r, 3),
				Method:      method,
				Strength:    schema.StrengthFor(r),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Coefficient), math.Abs(out[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if out[i].KPIA != out[j].KPIA {
			return out[i].KPIA < out[j].KPIA
		}
		return out[i].KPIB < out[j].KPIB
	})
	return out
}

// TopHypotheses renders directional causal narratives from the strongest
// correlation records. Both directions of a strong pair are independent
// candidates; the result is capped at maxCount.
func TopHypotheses(matrix []schema.CorrelationRecord, maxCount int) []schema.Hypothesis {
	var out []schema.Hypothesis
	for _, rec := range matrix {
		if rec.Strength != schema.StrongCorrelation {
			// The matrix is sorted by |r|, so nothing further qualifies.
			break
		}
		for _, dir := range [][2]string{{rec.KPIA, rec.KPIB}, {rec.KPIB, rec.KPIA}} {
			if len(out) >= maxCount {
				return out
			}
			out = append(out, schema.Hypothesis{
				Driver:     dir[0],
				Outcome:    dir[1],
				Narrative:  hypothesisNarrative(dir[0], dir[1], rec.Coefficient),
				Confidence: math.Abs(rec.Coefficient),
			})
		}
	}
	return out
}

func hypothesisNarrative(driver, outcome string, r float64) string {
	if r >= 0 {
		return fmt.Sprintf("Changes in %s may drive %s (correlation: %.2f)", driver, outcome, r)
	}
	return fmt.Sprintf("%s shows an inverse relationship with %s (correlation: %.2f)", outcome, driver, r)
}
