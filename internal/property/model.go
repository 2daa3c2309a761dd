// Package property defines the property record model and its Postgres and
// SQLite stores.
package property

import "time"

// Record is a single rating unit from a council valuation roll. Records are
// immutable once loaded; the filter engine only ever reads them.
type Record struct {
	ObjectID          int64      `json:"object_id"`
	PropertyNo        string     `json:"property_no,omitempty"`
	Address           string     `json:"address,omitempty"`
	Street            string     `json:"street,omitempty"`
	Locality          string     `json:"locality,omitempty"`
	Postcode          string     `json:"postcode,omitempty"`
	LandValue         float64    `json:"land_value"`
	CapitalValue      float64    `json:"capital_value"`
	ImprovementsValue float64    `json:"improvements_value"`
	LandUse           string     `json:"land_use,omitempty"`
	PropertyType      string     `json:"property_type,omitempty"` // filter category; empty = unclassified
	SurveyArea        *float64   `json:"survey_area,omitempty"`
	CalculatedArea    *float64   `json:"calculated_area,omitempty"`
	ValuationDate     *time.Time `json:"valuation_date,omitempty"`
	District          string     `json:"district"`
	Geom              []byte     `json:"-"` // EWKB polygon, SRID 2193; opaque to the filter engine
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CategoryCount is a distinct property type with its record count.
type CategoryCount struct {
	PropertyType string `json:"property_type"`
	Count        int64  `json:"count"`
}
