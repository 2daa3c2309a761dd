package ingest

import (
	"context"
	"time"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/property"
)

const wellingtonURL = "https://gis.wcc.govt.nz/arcgis/rest/services/PropertyAndBoundaries/Property/MapServer/0/query"

// wellingtonDateLayout is the dd/mm/yyyy format Wellington uses for
// valuation dates.
const wellingtonDateLayout = "02/01/2006"

// Wellington syncs the Wellington City Council rating roll.
type Wellington struct{}

func (s *Wellington) Name() string     { return "wellington" }
func (s *Wellington) District() string { return "Wellington" }
func (s *Wellington) Cadence() Cadence { return Weekly }

func (s *Wellington) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return WeeklySchedule(now, lastSync)
}

// Sync downloads the Wellington roll and upserts it into the store.
func (s *Wellington) Sync(ctx context.Context, store property.Store, f fetcher.Fetcher) (*SyncResult, error) {
	outFields := []string{
		"OBJECTID", "FullAddress", "ValuationID", "CapitalValue", "LandValue",
		"ImprovementsValue", "ValuationDate", "LegalDescription", "Title",
		"RollNumber", "AssessmentNumber", "StreetNumber", "StreetName",
		"Suburb", "PostCode", "LandArea",
	}

	return syncPaged(ctx, store, f, s.Name(), s.District(), wellingtonURL, "CapitalValue > 0", outFields, mapWellingtonFeature)
}

func mapWellingtonFeature(feat Feature) (property.Record, bool) {
	attrs := feat.Attributes

	objectID, ok := attrInt64(attrs, "OBJECTID")
	if !ok {
		return property.Record{}, false
	}

	var valuationDate *time.Time
	if raw := attrString(attrs, "ValuationDate"); raw != "" {
		if t, err := time.Parse(wellingtonDateLayout, raw); err == nil {
			valuationDate = &t
		}
	}

	return property.Record{
		ObjectID:          objectID,
		PropertyNo:        attrString(attrs, "AssessmentNumber"),
		Address:           attrString(attrs, "FullAddress"),
		Street:            attrString(attrs, "StreetName"),
		Locality:          attrString(attrs, "Suburb"),
		Postcode:          attrString(attrs, "PostCode"),
		LandValue:         attrFloat(attrs, "LandValue"),
		CapitalValue:      attrFloat(attrs, "CapitalValue"),
		ImprovementsValue: attrFloat(attrs, "ImprovementsValue"),
		LandUse:           attrString(attrs, "LegalDescription"),
		PropertyType:      attrString(attrs, "Title"),
		SurveyArea:        attrFloatPtr(attrs, "LandArea"),
		ValuationDate:     valuationDate,
		Geom:              feat.Geometry.EWKB(),
	}, true
}
