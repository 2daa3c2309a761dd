package property

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ratesmap/ratesmap/internal/db"
)

// upsertColumns is the column order used for bulk upserts.
var upsertColumns = []string{
	"object_id", "property_no", "physical_address", "street", "locality",
	"postcode", "land_value", "capital_value", "improvements_value",
	"land_use_description", "property_type", "survey_area", "calculated_area",
	"valuation_date", "district", "geom", "last_updated",
}

// changeDetect skips the DO UPDATE when nothing meaningful changed, so
// last_updated only moves for real changes. Mirrors the IS DISTINCT FROM
// check the council sync has always done.
const changeDetect = `(t.physical_address, t.land_value, t.capital_value, t.improvements_value,
	t.land_use_description, t.property_type, t.valuation_date, t.geom)
	IS DISTINCT FROM
	(EXCLUDED.physical_address, EXCLUDED.land_value, EXCLUDED.capital_value, EXCLUDED.improvements_value,
	EXCLUDED.land_use_description, EXCLUDED.property_type, EXCLUDED.valuation_date, EXCLUDED.geom)`

const selectColumns = `object_id, COALESCE(property_no, ''), COALESCE(physical_address, ''),
	COALESCE(street, ''), COALESCE(locality, ''), COALESCE(postcode, ''),
	land_value, capital_value, improvements_value,
	COALESCE(land_use_description, ''), COALESCE(property_type, ''),
	survey_area, calculated_area, valuation_date, district, geom, last_updated`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgresStore wraps an existing pool. closeFn may be nil when the caller
// owns the pool's lifecycle.
func NewPostgresStore(pool db.Pool, closeFn func()) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: closeFn}
}

// BulkUpsert writes records via a temp table and INSERT ... ON CONFLICT with
// change detection.
func (s *PostgresStore) BulkUpsert(ctx context.Context, records []Record) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.ObjectID, nullStr(r.PropertyNo), nullStr(r.Address), nullStr(r.Street),
			nullStr(r.Locality), nullStr(r.Postcode), r.LandValue, r.CapitalValue,
			r.ImprovementsValue, nullStr(r.LandUse), nullStr(r.PropertyType),
			r.SurveyArea, r.CalculatedArea, r.ValuationDate, r.District, r.Geom,
			r.UpdatedAt,
		})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "rates.properties",
		Columns:      upsertColumns,
		ConflictKeys: []string{"object_id"},
		UpdateWhere:  changeDetect,
	}, rows)
}

// ListAll returns every record, ordered by object ID.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM rates.properties ORDER BY object_id`)
	if err != nil {
		return nil, eris.Wrap(err, "property: list all")
	}
	return scanRecords(rows)
}

// ListByDistrict returns all records for a district, ordered by object ID.
func (s *PostgresStore) ListByDistrict(ctx context.Context, district string) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM rates.properties WHERE district = $1 ORDER BY object_id`,
		district)
	if err != nil {
		return nil, eris.Wrapf(err, "property: list district %s", district)
	}
	return scanRecords(rows)
}

// Categories returns distinct property types with counts, descending.
func (s *PostgresStore) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT property_type, COUNT(*) FROM rates.properties
		 WHERE property_type IS NOT NULL AND property_type <> ''
		 GROUP BY property_type ORDER BY COUNT(*) DESC, property_type`)
	if err != nil {
		return nil, eris.Wrap(err, "property: list categories")
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.PropertyType, &c.Count); err != nil {
			return nil, eris.Wrap(err, "property: scan category")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the total number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rates.properties").Scan(&n); err != nil {
		return 0, eris.Wrap(err, "property: count")
	}
	return n, nil
}

// Close releases the pool if this store owns it.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r             Record
			valuationDate *time.Time
		)
		if err := rows.Scan(
			&r.ObjectID, &r.PropertyNo, &r.Address, &r.Street, &r.Locality,
			&r.Postcode, &r.LandValue, &r.CapitalValue, &r.ImprovementsValue,
			&r.LandUse, &r.PropertyType, &r.SurveyArea, &r.CalculatedArea,
			&valuationDate, &r.District, &r.Geom, &r.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "property: scan record")
		}
		r.ValuationDate = valuationDate
		out = append(out, r)
	}
	return out, rows.Err()
}

// nullStr maps empty strings to NULL so COALESCE round-trips cleanly.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
