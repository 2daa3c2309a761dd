package property

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on modernc.org/sqlite. It backs offline
// snapshots: the serve command can run from a local file when Postgres is
// unavailable.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at the given path and
// applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	s := &SQLiteStore{db: sdb}
	if err := s.migrate(); err != nil {
		sdb.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	object_id            INTEGER PRIMARY KEY,
	property_no          TEXT NOT NULL DEFAULT '',
	physical_address     TEXT NOT NULL DEFAULT '',
	street               TEXT NOT NULL DEFAULT '',
	locality             TEXT NOT NULL DEFAULT '',
	postcode             TEXT NOT NULL DEFAULT '',
	land_value           REAL NOT NULL DEFAULT 0,
	capital_value        REAL NOT NULL DEFAULT 0,
	improvements_value   REAL NOT NULL DEFAULT 0,
	land_use_description TEXT NOT NULL DEFAULT '',
	property_type        TEXT NOT NULL DEFAULT '',
	survey_area          REAL,
	calculated_area      REAL,
	valuation_date       TEXT,
	district             TEXT NOT NULL DEFAULT '',
	geom                 BLOB,
	last_updated         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_properties_district ON properties(district);
CREATE INDEX IF NOT EXISTS idx_properties_type ON properties(property_type);
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// BulkUpsert writes records in a single transaction.
func (s *SQLiteStore) BulkUpsert(ctx context.Context, records []Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO properties (
			object_id, property_no, physical_address, street, locality, postcode,
			land_value, capital_value, improvements_value, land_use_description,
			property_type, survey_area, calculated_area, valuation_date, district,
			geom, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(object_id) DO UPDATE SET
			property_no = excluded.property_no,
			physical_address = excluded.physical_address,
			street = excluded.street,
			locality = excluded.locality,
			postcode = excluded.postcode,
			land_value = excluded.land_value,
			capital_value = excluded.capital_value,
			improvements_value = excluded.improvements_value,
			land_use_description = excluded.land_use_description,
			property_type = excluded.property_type,
			survey_area = excluded.survey_area,
			calculated_area = excluded.calculated_area,
			valuation_date = excluded.valuation_date,
			district = excluded.district,
			geom = excluded.geom,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	var n int64
	for _, r := range records {
		var valuationDate any
		if r.ValuationDate != nil {
			valuationDate = r.ValuationDate.Format("2006-01-02")
		}
		if _, err := stmt.ExecContext(ctx,
			r.ObjectID, r.PropertyNo, r.Address, r.Street, r.Locality, r.Postcode,
			r.LandValue, r.CapitalValue, r.ImprovementsValue, r.LandUse,
			r.PropertyType, r.SurveyArea, r.CalculatedArea, valuationDate,
			r.District, r.Geom, r.UpdatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert object %d", r.ObjectID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

const sqliteSelect = `
	SELECT object_id, property_no, physical_address, street, locality, postcode,
	       land_value, capital_value, improvements_value, land_use_description,
	       property_type, survey_area, calculated_area, valuation_date, district,
	       geom, last_updated
	FROM properties`

// ListAll returns every record, ordered by object ID.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+" ORDER BY object_id")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list all")
	}
	return scanSQLiteRecords(rows)
}

// ListByDistrict returns all records for a district, ordered by object ID.
func (s *SQLiteStore) ListByDistrict(ctx context.Context, district string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelect+" WHERE district = ? ORDER BY object_id", district)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list district %s", district)
	}
	return scanSQLiteRecords(rows)
}

// Categories returns distinct property types with counts, descending.
func (s *SQLiteStore) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property_type, COUNT(*) FROM properties
		WHERE property_type <> ''
		GROUP BY property_type ORDER BY COUNT(*) DESC, property_type`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list categories")
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.PropertyType, &c.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the total number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}

// Close closes the database file.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r             Record
			valuationDate sql.NullString
			lastUpdated   string
		)
		if err := rows.Scan(
			&r.ObjectID, &r.PropertyNo, &r.Address, &r.Street, &r.Locality,
			&r.Postcode, &r.LandValue, &r.CapitalValue, &r.ImprovementsValue,
			&r.LandUse, &r.PropertyType, &r.SurveyArea, &r.CalculatedArea,
			&valuationDate, &r.District, &r.Geom, &lastUpdated,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		if valuationDate.Valid {
			if d, err := time.Parse("2006-01-02", valuationDate.String); err == nil {
				r.ValuationDate = &d
			}
		}
		if ts, err := time.Parse(time.RFC3339, lastUpdated); err == nil {
			r.UpdatedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
