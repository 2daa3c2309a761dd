// Package filter implements the value-range filter engine behind the property
// map: log-scale slider mapping, capital/land/improvements coupling, debounced
// commits, and evaluation of the visible record set.
package filter

import "github.com/rotisserie/eris"

// Field identifies one of the three coupled valuation fields.
type Field int

const (
	// FieldCapital is the total: capital value = land value + improvements value.
	FieldCapital Field = iota
	// FieldLand is the land value component.
	FieldLand
	// FieldImprovements is the improvements value component.
	FieldImprovements
)

// Fields lists all valuation fields in a fixed order.
var Fields = []Field{FieldCapital, FieldLand, FieldImprovements}

// String returns the wire/config name of the field.
func (f Field) String() string {
	switch f {
	case FieldCapital:
		return "capital"
	case FieldLand:
		return "land"
	case FieldImprovements:
		return "improvements"
	default:
		return "unknown"
	}
}

// ParseField converts a string into a Field.
func ParseField(s string) (Field, error) {
	switch s {
	case "capital":
		return FieldCapital, nil
	case "land":
		return FieldLand, nil
	case "improvements":
		return FieldImprovements, nil
	default:
		return 0, eris.Errorf("filter: unknown field %q (valid: capital, land, improvements)", s)
	}
}

// Mode records which slider pair was most recently edited. It is purely
// presentational: the renderer greys out the inactive pair, but evaluation
// always uses all three ranges.
type Mode int

const (
	// ModeComponents means the last edit targeted land or improvements.
	ModeComponents Mode = iota
	// ModeTotal means the last edit targeted capital value.
	ModeTotal
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	if m == ModeTotal {
		return "total"
	}
	return "components"
}

// Range is a [low, high] pair in real currency units, low <= high.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies within the range, inclusive on both ends.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Bounds is the [min, max] envelope of a field over the category-selected
// records. Both are zero when no records are selected.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Full returns the range spanning the entire bounds.
func (b Bounds) Full() Range {
	return Range{Low: b.Min, High: b.Max}
}

// Clamp restricts r to lie within the bounds, swapping low/high if inverted.
func (b Bounds) Clamp(r Range) Range {
	if r.Low > r.High {
		r.Low, r.High = r.High, r.Low
	}
	if r.Low < b.Min {
		r.Low = b.Min
	}
	if r.High > b.Max {
		r.High = b.Max
	}
	if r.Low > r.High {
		r.Low = r.High
	}
	return r
}

// Ranges holds one Range per valuation field.
type Ranges struct {
	Capital      Range `json:"capital"`
	Land         Range `json:"land"`
	Improvements Range `json:"improvements"`
}

// Get returns the range for the given field.
func (r Ranges) Get(f Field) Range {
	switch f {
	case FieldLand:
		return r.Land
	case FieldImprovements:
		return r.Improvements
	default:
		return r.Capital
	}
}

// Set returns a copy of r with the given field replaced.
func (r Ranges) Set(f Field, v Range) Ranges {
	switch f {
	case FieldLand:
		r.Land = v
	case FieldImprovements:
		r.Improvements = v
	default:
		r.Capital = v
	}
	return r
}

// FieldBounds holds one Bounds per valuation field.
type FieldBounds struct {
	Capital      Bounds `json:"capital"`
	Land         Bounds `json:"land"`
	Improvements Bounds `json:"improvements"`
}

// Get returns the bounds for the given field.
func (b FieldBounds) Get(f Field) Bounds {
	switch f {
	case FieldLand:
		return b.Land
	case FieldImprovements:
		return b.Improvements
	default:
		return b.Capital
	}
}

// FullRanges returns the ranges spanning each field's full bounds.
func (b FieldBounds) FullRanges() Ranges {
	return Ranges{
		Capital:      b.Capital.Full(),
		Land:         b.Land.Full(),
		Improvements: b.Improvements.Full(),
	}
}
