package filter

import "github.com/ratesmap/ratesmap/internal/property"

// Evaluate applies the committed filter to the full record set and returns
// the visible subset, preserving input order. A record is kept iff its
// property type is in the selected set and each of its three valuation fields
// lies within the corresponding committed range, inclusive on both ends.
//
// Evaluation is O(len(records)), which is why the engine runs it once per
// debounced commit rather than once per edit.
func Evaluate(records []property.Record, selected map[string]bool, committed Ranges) []property.Record {
	visible := make([]property.Record, 0, len(records))
	for _, rec := range records {
		if rec.PropertyType == "" || !selected[rec.PropertyType] {
			continue
		}
		if !committed.Capital.Contains(rec.CapitalValue) {
			continue
		}
		if !committed.Land.Contains(rec.LandValue) {
			continue
		}
		if !committed.Improvements.Contains(rec.ImprovementsValue) {
			continue
		}
		visible = append(visible, rec)
	}
	return visible
}
