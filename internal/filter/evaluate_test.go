package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ratesmap/ratesmap/internal/property"
)

func TestEvaluate_CategoryAndRange(t *testing.T) {
	records := []property.Record{
		{ObjectID: 1, PropertyType: "R", CapitalValue: 100},
		{ObjectID: 2, PropertyType: "R", CapitalValue: 200},
		{ObjectID: 3, PropertyType: "C", CapitalValue: 100},
	}
	committed := Ranges{
		Capital:      Range{Low: 150, High: 250},
		Land:         Range{Low: 0, High: 1000},
		Improvements: Range{Low: 0, High: 1000},
	}

	visible := Evaluate(records, map[string]bool{"R": true}, committed)

	assert.Len(t, visible, 1)
	assert.Equal(t, int64(2), visible[0].ObjectID)
}

func TestEvaluate_InclusiveEndpoints(t *testing.T) {
	records := []property.Record{
		{ObjectID: 1, PropertyType: "R", CapitalValue: 150, LandValue: 100, ImprovementsValue: 50},
		{ObjectID: 2, PropertyType: "R", CapitalValue: 250, LandValue: 100, ImprovementsValue: 150},
	}
	committed := Ranges{
		Capital:      Range{Low: 150, High: 250},
		Land:         Range{Low: 100, High: 100},
		Improvements: Range{Low: 50, High: 150},
	}

	visible := Evaluate(records, map[string]bool{"R": true}, committed)

	assert.Len(t, visible, 2, "both endpoints are inclusive")
}

func TestEvaluate_AllFieldsMustMatch(t *testing.T) {
	records := []property.Record{
		{ObjectID: 1, PropertyType: "R", CapitalValue: 500, LandValue: 400, ImprovementsValue: 100},
	}
	committed := Ranges{
		Capital:      Range{Low: 0, High: 1000},
		Land:         Range{Low: 0, High: 300}, // land out of range
		Improvements: Range{Low: 0, High: 1000},
	}

	visible := Evaluate(records, map[string]bool{"R": true}, committed)

	assert.Empty(t, visible)
}

func TestEvaluate_PreservesOrder(t *testing.T) {
	records := []property.Record{
		{ObjectID: 9, PropertyType: "R"},
		{ObjectID: 3, PropertyType: "R"},
		{ObjectID: 7, PropertyType: "R"},
	}

	visible := Evaluate(records, map[string]bool{"R": true}, Ranges{})

	ids := make([]int64, len(visible))
	for i, r := range visible {
		ids[i] = r.ObjectID
	}
	assert.Equal(t, []int64{9, 3, 7}, ids)
}

func TestEvaluate_UnclassifiedRecordsNeverVisible(t *testing.T) {
	records := []property.Record{
		{ObjectID: 1, PropertyType: ""},
	}

	visible := Evaluate(records, map[string]bool{"": true}, Ranges{})

	assert.Empty(t, visible)
}
