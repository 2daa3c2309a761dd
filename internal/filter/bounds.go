package filter

import "github.com/ratesmap/ratesmap/internal/property"

// ComputeBounds derives per-field [min, max] bounds from the records whose
// property type is in the selected set. Records with no property type never
// match any selection. An empty selected subset yields [0, 0] bounds for all
// three fields, which callers treat as "no data" rather than an error.
//
// Bounds must be recomputed synchronously whenever the selection changes:
// stale bounds silently mis-position the sliders.
func ComputeBounds(records []property.Record, selected map[string]bool) FieldBounds {
	var b FieldBounds
	first := true

	for _, rec := range records {
		if rec.PropertyType == "" || !selected[rec.PropertyType] {
			continue
		}
		if first {
			b.Capital = Bounds{Min: rec.CapitalValue, Max: rec.CapitalValue}
			b.Land = Bounds{Min: rec.LandValue, Max: rec.LandValue}
			b.Improvements = Bounds{Min: rec.ImprovementsValue, Max: rec.ImprovementsValue}
			first = false
			continue
		}
		b.Capital = widen(b.Capital, rec.CapitalValue)
		b.Land = widen(b.Land, rec.LandValue)
		b.Improvements = widen(b.Improvements, rec.ImprovementsValue)
	}

	return b
}

func widen(b Bounds, v float64) Bounds {
	if v < b.Min {
		b.Min = v
	}
	if v > b.Max {
		b.Max = v
	}
	return b
}
