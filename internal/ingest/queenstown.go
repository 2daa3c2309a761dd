package ingest

import (
	"context"
	"time"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/property"
)

const queenstownURL = "https://services1.arcgis.com/9YyqaQtDdDR8tupG/arcgis/rest/services/Land_Parcels_and_Properties_Data/FeatureServer/0/query"

// Queenstown syncs the Queenstown-Lakes District Council rating roll. QLDC
// carries no valuation date and splits addresses into fields upstream.
type Queenstown struct{}

func (s *Queenstown) Name() string     { return "queenstown" }
func (s *Queenstown) District() string { return "Queenstown-Lakes" }
func (s *Queenstown) Cadence() Cadence { return Monthly }

func (s *Queenstown) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return MonthlySchedule(now, lastSync)
}

// Sync downloads the QLDC roll and upserts it into the store.
func (s *Queenstown) Sync(ctx context.Context, store property.Store, f fetcher.Fetcher) (*SyncResult, error) {
	where := "CAPITAL_VALUE > 0 AND PHYSADDRESS IS NOT NULL"
	outFields := []string{
		"OBJECTID", "PROPERTY_NO", "PHYSADDRESS", "STREET", "LOCALITY",
		"POSTCODE", "LAND_VALUE", "CAPITAL_VALUE", "IMPROVEMENTS_VALUE",
		"LANDUSEDESCRIPTION", "PROPERTY_TYPE_DESC", "survey_area", "calc_area",
	}

	return syncPaged(ctx, store, f, s.Name(), s.District(), queenstownURL, where, outFields, mapQueenstownFeature)
}

func mapQueenstownFeature(feat Feature) (property.Record, bool) {
	attrs := feat.Attributes

	objectID, ok := attrInt64(attrs, "OBJECTID")
	if !ok {
		return property.Record{}, false
	}

	return property.Record{
		ObjectID:          objectID,
		PropertyNo:        attrString(attrs, "PROPERTY_NO"),
		Address:           attrString(attrs, "PHYSADDRESS"),
		Street:            attrString(attrs, "STREET"),
		Locality:          attrString(attrs, "LOCALITY"),
		Postcode:          attrString(attrs, "POSTCODE"),
		LandValue:         attrFloat(attrs, "LAND_VALUE"),
		CapitalValue:      attrFloat(attrs, "CAPITAL_VALUE"),
		ImprovementsValue: attrFloat(attrs, "IMPROVEMENTS_VALUE"),
		LandUse:           attrString(attrs, "LANDUSEDESCRIPTION"),
		PropertyType:      attrString(attrs, "PROPERTY_TYPE_DESC"),
		SurveyArea:        attrFloatPtr(attrs, "survey_area"),
		CalculatedArea:    attrFloatPtr(attrs, "calc_area"),
		Geom:              feat.Geometry.EWKB(),
	}, true
}
