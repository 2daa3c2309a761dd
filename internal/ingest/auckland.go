package ingest

import (
	"context"
	"time"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/property"
)

const aucklandURL = "https://mapspublic.aklc.govt.nz/arcgis/rest/services/Applications/ACWebsite/MapServer/3/query"

// Auckland syncs the Auckland Council rating roll. Auckland publishes a
// single formatted address per unit and dates as epoch milliseconds.
type Auckland struct{}

func (s *Auckland) Name() string     { return "auckland" }
func (s *Auckland) District() string { return "Auckland" }
func (s *Auckland) Cadence() Cadence { return Monthly }

func (s *Auckland) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return MonthlySchedule(now, lastSync)
}

// Sync downloads the Auckland roll and upserts it into the store.
func (s *Auckland) Sync(ctx context.Context, store property.Store, f fetcher.Fetcher) (*SyncResult, error) {
	outFields := []string{
		"OBJECTID", "RATESASSESSMENTNUM", "FORMATTEDADDRESS", "LCV",
		"LLV", "LIV", "LANDUSEDESCRIPTION", "IMPROVEMENT", "AREALABEL",
		"LATESTVALUATIONDATE",
	}

	return syncPaged(ctx, store, f, s.Name(), s.District(), aucklandURL, "LCV > 0", outFields, mapAucklandFeature)
}

func mapAucklandFeature(feat Feature) (property.Record, bool) {
	attrs := feat.Attributes

	objectID, ok := attrInt64(attrs, "OBJECTID")
	if !ok {
		return property.Record{}, false
	}

	address := attrString(attrs, "FORMATTEDADDRESS")
	parsed := ParseAucklandAddress(address)

	return property.Record{
		ObjectID:          objectID,
		PropertyNo:        attrString(attrs, "RATESASSESSMENTNUM"),
		Address:           address,
		Street:            parsed.Street,
		Locality:          parsed.Locality,
		Postcode:          parsed.Postcode,
		LandValue:         attrFloat(attrs, "LLV"),
		CapitalValue:      attrFloat(attrs, "LCV"),
		ImprovementsValue: attrFloat(attrs, "LIV"),
		LandUse:           attrString(attrs, "LANDUSEDESCRIPTION"),
		PropertyType:      attrString(attrs, "IMPROVEMENT"),
		SurveyArea:        ParseAreaLabel(attrString(attrs, "AREALABEL")),
		ValuationDate:     attrEpochDate(attrs, "LATESTVALUATIONDATE"),
		Geom:              feat.Geometry.EWKB(),
	}, true
}
