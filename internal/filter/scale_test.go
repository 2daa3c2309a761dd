package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionToValue_Endpoints(t *testing.T) {
	assert.InDelta(t, 50000, PositionToValue(PositionMin, 50000, 2500000), 0.5)
	assert.InDelta(t, 2500000, PositionToValue(PositionMax, 50000, 2500000), 0.5)
}

func TestPositionToValue_LogarithmicFeel(t *testing.T) {
	// Equal position deltas move the value by a constant factor, so the
	// absolute step near the low end is far smaller than near the high end.
	min, max := 10000.0, 10000000.0
	lowStep := PositionToValue(10, min, max) - PositionToValue(0, min, max)
	highStep := PositionToValue(100, min, max) - PositionToValue(90, min, max)
	assert.Greater(t, highStep, lowStep*100)
}

func TestRoundTrip_WithinOneUnit(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
	}{
		{"typical residential", 120000, 3400000},
		{"zero floor", 0, 1850000},
		{"narrow", 990000, 1010000},
		{"small values", 1, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span := tt.max - tt.min
			for i := 0; i <= 20; i++ {
				v := tt.min + span*float64(i)/20
				got := PositionToValue(ValueToPosition(v, tt.min, tt.max), tt.min, tt.max)
				assert.InDelta(t, v, got, 1.0, "value %v", v)
			}
		})
	}
}

func TestDegenerateDomain(t *testing.T) {
	// A single-property selection collapses min and max onto one point.
	for _, pos := range []float64{0, 25, 100} {
		assert.Equal(t, 640000.0, PositionToValue(pos, 640000, 640000))
	}
	for _, v := range []float64{0, 640000, 999999} {
		assert.Equal(t, PositionMax, ValueToPosition(v, 640000, 640000))
	}
}

func TestValueToPosition_ZeroScaleFactor(t *testing.T) {
	// min=0 and max=1 both floor to ln(1): the scale factor is zero and the
	// guard returns the domain minimum instead of dividing by it.
	assert.Equal(t, PositionMin, ValueToPosition(1, 0, 1))
}

func TestPositionToValue_Monotonic(t *testing.T) {
	min, max := 0.0, 5600000.0
	prev := PositionToValue(0, min, max)
	for pos := 1.0; pos <= 100; pos++ {
		v := PositionToValue(pos, min, max)
		require.GreaterOrEqual(t, v, prev, "position %v", pos)
		prev = v
	}
}

func TestRangeToPositions_RoundTrip(t *testing.T) {
	b := Bounds{Min: 80000, Max: 4200000}
	r := Range{Low: 250000, High: 1100000}

	got := PositionsToRange(RangeToPositions(r, b), b)
	assert.InDelta(t, r.Low, got.Low, 1.0)
	assert.InDelta(t, r.High, got.High, 1.0)
}
