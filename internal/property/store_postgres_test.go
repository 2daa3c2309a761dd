package property

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_ListAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	valDate := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC)
	area := 512.0

	mock.ExpectQuery(`SELECT .+ FROM rates\.properties ORDER BY object_id`).
		WillReturnRows(pgxmock.NewRows([]string{
			"object_id", "property_no", "physical_address", "street", "locality",
			"postcode", "land_value", "capital_value", "improvements_value",
			"land_use_description", "property_type", "survey_area", "calculated_area",
			"valuation_date", "district", "geom", "last_updated",
		}).AddRow(
			int64(101), "12345", "7 Ward Street", "7 Ward Street", "Pukekohe",
			"2120", 450000.0, 820000.0, 370000.0,
			"Single Unit", "Residential", &area, (*float64)(nil),
			&valDate, "Auckland", []byte{0x01}, updated,
		))

	store := NewPostgresStore(mock, nil)
	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, int64(101), r.ObjectID)
	assert.Equal(t, "Residential", r.PropertyType)
	assert.Equal(t, 820000.0, r.CapitalValue)
	assert.Equal(t, "Pukekohe", r.Locality)
	require.NotNil(t, r.SurveyArea)
	assert.Equal(t, 512.0, *r.SurveyArea)
	assert.Nil(t, r.CalculatedArea)
	require.NotNil(t, r.ValuationDate)
	assert.Equal(t, valDate, *r.ValuationDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListByDistrict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE district = \$1 ORDER BY object_id`).
		WithArgs("Wellington").
		WillReturnRows(pgxmock.NewRows([]string{
			"object_id", "property_no", "physical_address", "street", "locality",
			"postcode", "land_value", "capital_value", "improvements_value",
			"land_use_description", "property_type", "survey_area", "calculated_area",
			"valuation_date", "district", "geom", "last_updated",
		}))

	store := NewPostgresStore(mock, nil)
	records, err := store.ListByDistrict(context.Background(), "Wellington")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Categories(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT property_type, COUNT\(\*\) FROM rates\.properties`).
		WillReturnRows(pgxmock.NewRows([]string{"property_type", "count"}).
			AddRow("Residential", int64(4200)).
			AddRow("Commercial", int64(310)))

	store := NewPostgresStore(mock, nil)
	cats, err := store.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, CategoryCount{PropertyType: "Residential", Count: 4200}, cats[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rates\.properties`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4510)))

	store := NewPostgresStore(mock, nil)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4510), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkUpsertEmpty(t *testing.T) {
	store := NewPostgresStore(nil, nil)
	n, err := store.BulkUpsert(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNullStr(t *testing.T) {
	assert.Nil(t, nullStr(""))
	assert.Equal(t, "Residential", nullStr("Residential"))
}
