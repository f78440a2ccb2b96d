package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 0.001)
	assert.InDelta(t, -1, Mean([]float64{-2, 0}), 0.001)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	// Population stddev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 0.001)
	assert.Equal(t, 0.0, StdDev([]float64{3, 3, 3}))
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name     string
		q        float64
		expected float64
	}{
		{name: "minimum", q: 0, expected: 1},
		{name: "first quartile", q: 0.25, expected: 2},
		{name: "median", q: 0.5, expected: 3},
		{name: "third quartile", q: 0.75, expected: 4},
		{name: "maximum", q: 1, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Quantile(values, tt.q), 0.001)
		})
	}
}

func TestQuantileInterpolates(t *testing.T) {
	// Median of an even-length series interpolates between the middle pair.
	assert.InDelta(t, 2.5, Quantile([]float64{1, 2, 3, 4}, 0.5), 0.001)
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestRanks(t *testing.T) {
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{30, 10, 20}))
	// Ties share the average of their would-be ranks.
	assert.Equal(t, []float64{1.5, 1.5, 3}, ranks([]float64{5, 5, 9}))
}

func TestMovingAverage(t *testing.T) {
	out := movingAverage([]float64{1, 2, 3, 4, 5}, 3)

	assert.Len(t, out, 5)
	// Growing window at the head.
	assert.InDelta(t, 1, out[0], 0.001)
	assert.InDelta(t, 1.5, out[1], 0.001)
	assert.InDelta(t, 2, out[2], 0.001)
	// Full window afterwards.
	assert.InDelta(t, 3, out[3], 0.001)
	assert.InDelta(t, 4, out[4], 0.001)
}
