package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/autoops/kpiscope/internal/contract"
	"github.com/autoops/kpiscope/schema"
)

// DescribeTrend computes the growth rate, direction, volatility and moving
// average for one KPI series. It needs at least two points; anything less
// is a data-insufficiency error rather than a fabricated trend.
//
// Growth is (last - first) / |first| * 100. A zero first value would divide
// by zero, so the computation falls back to the absolute delta instead.
func DescribeTrend(kpi string, values []float64, window int, flatThresholdPct float64) (schema.TrendRecord, error) {
	if len(values) < 2 {
		return schema.TrendRecord{}, fmt.Errorf("%w: trend for %s needs at least 2 points, got %d",
			contract.ErrInsufficientData, kpi, len(values))
	}
	if window < 1 {
		window = 1
	}

	first, last := values[0], values[len(values)-1]
	var growth float64
	if first == 0 {
		growth = last - first
	} else {
		growth = (last - first) / math.Abs(first) * 100
	}

	mean := Mean(values)
	var volatility float64
	if mean != 0 {
		volatility = StdDev(values) / math.Abs(mean) * 100
	}

	// Mean period-over-period percent change, skipping zero bases.
	var changeSum float64
	var changeCount int
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		changeSum += (values[i] - prev) / math.Abs(prev) * 100
		changeCount++
	}
	var avgChange float64
	if changeCount > 0 {
		avgChange = changeSum / float64(changeCount)
	}

	return schema.TrendRecord{
		KPI:        kpi,
		Direction:  schema.DirectionFor(growth, flatThresholdPct),
		GrowthPct:  schema.RoundTo(growth, 2),
		Volatility: schema.RoundTo(volatility, 2),
		MovingAvg:  movingAverage(values, window),
		Window:     window,
		AvgChange:  schema.RoundTo(avgChange, 2),
		LastValue:  last,
		MeanValue:  mean,
	}, nil
}

// TopTrends returns up to n trend records ranked by absolute growth,
// ties broken by KPI name for deterministic ordering.
func TopTrends(trends []schema.TrendRecord, n int) []schema.TrendRecord {
	out := make([]schema.TrendRecord, len(trends))
	copy(out, trends)
	sort.Slice(out, func(i, j int) bool {
		gi, gj := math.Abs(out[i].GrowthPct), math.Abs(out[j].GrowthPct)
		if gi != gj {
			return gi > gj
		}
		return out[i].KPI < out[j].KPI
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
