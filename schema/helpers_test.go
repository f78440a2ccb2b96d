package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRoundTo tests decimal rounding at various precisions.
func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		places   int
		expected float64
	}{
		{name: "two places", value: 3.14159, places: 2, expected: 3.14},
		{name: "rounds up", value: 2.675, places: 1, expected: 2.7},
		{name: "zero places", value: 9.5, places: 0, expected: 10},
		{name: "negative value", value: -1.005, places: 2, expected: -1.0},
		{name: "already exact", value: 5.25, places: 2, expected: 5.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RoundTo(tt.value, tt.places), 0.0001)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.42, Clamp01(0.42))
}

// TestStrengthFor checks the correlation strength cutoffs on both sides
// of each boundary.
func TestStrengthFor(t *testing.T) {
	tests := []struct {
		coefficient float64
		expected    Strength
	}{
		{0.9, StrongCorrelation},
		{0.7, StrongCorrelation},
		{-0.85, StrongCorrelation},
		{0.69, ModerateCorrelation},
		{0.4, ModerateCorrelation},
		{-0.5, ModerateCorrelation},
		{0.39, WeakCorrelation},
		{0.0, WeakCorrelation},
		{-0.1, WeakCorrelation},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StrengthFor(tt.coefficient), "coefficient %v", tt.coefficient)
	}
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, HighConfidence, ConfidenceFor(1.9))
	assert.Equal(t, MediumConfidence, ConfidenceFor(2.0))
	assert.Equal(t, MediumConfidence, ConfidenceFor(4.9))
	assert.Equal(t, LowConfidence, ConfidenceFor(5.0))
	assert.Equal(t, LowConfidence, ConfidenceFor(40))
}

func TestConfidenceNumeric(t *testing.T) {
	assert.Equal(t, 10.0, ConfidenceNumeric(HighConfidence))
	assert.Equal(t, 6.0, ConfidenceNumeric(MediumConfidence))
	assert.Equal(t, 3.0, ConfidenceNumeric(LowConfidence))
	assert.Equal(t, 3.0, ConfidenceNumeric(ConfidenceLabel("bogus")))
}

// TestDirectionFor checks classification against the flat threshold,
// including the boundary values which stay flat.
func TestDirectionFor(t *testing.T) {
	tests := []struct {
		name      string
		growth    float64
		threshold float64
		expected  TrendDirection
	}{
		{name: "clear growth", growth: 5, threshold: 1, expected: UpwardTrend},
		{name: "clear decline", growth: -5, threshold: 1, expected: DownwardTrend},
		{name: "within threshold", growth: 0.5, threshold: 1, expected: FlatTrend},
		{name: "at positive boundary", growth: 1, threshold: 1, expected: FlatTrend},
		{name: "at negative boundary", growth: -1, threshold: 1, expected: FlatTrend},
		{name: "zero threshold flags everything", growth: 0.01, threshold: 0, expected: UpwardTrend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DirectionFor(tt.growth, tt.threshold))
		})
	}
}
