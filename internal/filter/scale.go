package filter

import "math"

// Slider position domain. Positions are abstract: the renderer maps them to
// pixels, the engine maps them to currency values.
const (
	PositionMin = 0.0
	PositionMax = 100.0
)

// logOne returns ln(v) with zero remapped to 1 first. Property values start
// at 0 and ln(0) is -Inf, so the low endpoint of the scale is floored at
// ln(1) = 0 instead.
func logOne(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Log(v)
}

// PositionToValue maps a slider position in [PositionMin, PositionMax] to a
// currency value in [min, max]. The position domain is linear in ln(value):
// equal position deltas move the value by small amounts near the low end and
// large amounts near the high end, which suits values spanning orders of
// magnitude. The result is rounded to the nearest whole currency unit.
//
// When min == max the domain is a single point and max is returned for any
// position.
func PositionToValue(pos, min, max float64) float64 {
	if min == max {
		return max
	}
	lmin := logOne(min)
	lmax := logOne(max)
	frac := (pos - PositionMin) / (PositionMax - PositionMin)
	return math.Round(math.Exp(lmin + frac*(lmax-lmin)))
}

// ValueToPosition maps a currency value in [min, max] to a slider position in
// [PositionMin, PositionMax]. The result is not rounded: sub-position
// precision keeps PositionToValue(ValueToPosition(v)) round-trips stable.
//
// When min == max the domain is a single point and PositionMax is returned
// for any value. When the log endpoints coincide after the zero-to-one floor
// (e.g. min=0, max=1) the scale factor is zero and PositionMin is returned
// rather than dividing by it.
func ValueToPosition(value, min, max float64) float64 {
	if min == max {
		return PositionMax
	}
	lmin := logOne(min)
	lmax := logOne(max)
	scale := lmax - lmin
	if scale == 0 {
		return PositionMin
	}
	return PositionMin + (logOne(value)-lmin)/scale*(PositionMax-PositionMin)
}

// PositionRange is a [low, high] slider position pair, low <= high.
type PositionRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// RangeToPositions converts a value range to slider positions under the given
// bounds.
func RangeToPositions(r Range, b Bounds) PositionRange {
	return PositionRange{
		Low:  ValueToPosition(r.Low, b.Min, b.Max),
		High: ValueToPosition(r.High, b.Min, b.Max),
	}
}

// PositionsToRange converts slider positions to a value range under the given
// bounds.
func PositionsToRange(p PositionRange, b Bounds) Range {
	return Range{
		Low:  PositionToValue(p.Low, b.Min, b.Max),
		High: PositionToValue(p.High, b.Min, b.Max),
	}
}
