package property

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/db"
)

// migrationLockID keys the advisory lock guarding concurrent migration runs.
const migrationLockID = 7452193

// migrations are applied in order; each entry runs at most once, tracked in
// rates.schema_migrations by name.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "001_properties",
		sql: `
			CREATE TABLE IF NOT EXISTS rates.properties (
				object_id            BIGINT PRIMARY KEY,
				property_no          TEXT,
				physical_address     TEXT,
				street               TEXT,
				locality             TEXT,
				postcode             TEXT,
				land_value           DOUBLE PRECISION NOT NULL DEFAULT 0,
				capital_value        DOUBLE PRECISION NOT NULL DEFAULT 0,
				improvements_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
				land_use_description TEXT,
				property_type        TEXT,
				survey_area          DOUBLE PRECISION,
				calculated_area      DOUBLE PRECISION,
				valuation_date       DATE,
				district             TEXT NOT NULL,
				geom                 BYTEA,
				last_updated         TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_properties_district ON rates.properties(district);
			CREATE INDEX IF NOT EXISTS idx_properties_type ON rates.properties(property_type);
		`,
	},
	{
		name: "002_sync_log",
		sql: `
			CREATE TABLE IF NOT EXISTS rates.sync_log (
				id           UUID PRIMARY KEY,
				source       TEXT NOT NULL,
				status       TEXT NOT NULL,
				started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				completed_at TIMESTAMPTZ,
				rows_synced  BIGINT NOT NULL DEFAULT 0,
				error        TEXT,
				metadata     JSONB
			);
			CREATE INDEX IF NOT EXISTS idx_sync_log_source ON rates.sync_log(source, started_at DESC);
		`,
	},
	{
		name: "003_district_boundaries",
		sql: `
			CREATE TABLE IF NOT EXISTS rates.district_boundaries (
				id   BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				geom BYTEA NOT NULL
			);
		`,
	},
}

// Migrate applies all pending migrations in order. An advisory lock prevents
// concurrent runs (e.g. overlapping deploys).
func Migrate(ctx context.Context, pool db.Pool) error {
	log := zap.L().With(zap.String("component", "property.migrate"))

	if _, err := pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "property: acquire migration advisory lock")
	}
	defer func() {
		if _, err := pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("property: failed to release migration advisory lock", zap.Error(err))
		}
	}()

	if err := ensureMigrationTable(ctx, pool); err != nil {
		return err
	}

	applied, err := appliedMigrations(ctx, pool)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}

		log.Info("applying migration", zap.String("name", m.name))

		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return eris.Wrapf(err, "property: apply migration %s", m.name)
		}
		if _, err := pool.Exec(ctx,
			"INSERT INTO rates.schema_migrations (name, applied_at) VALUES ($1, now())",
			m.name,
		); err != nil {
			return eris.Wrapf(err, "property: record migration %s", m.name)
		}
	}

	return nil
}

func ensureMigrationTable(ctx context.Context, pool db.Pool) error {
	sql := `
		CREATE SCHEMA IF NOT EXISTS rates;
		CREATE TABLE IF NOT EXISTS rates.schema_migrations (
			id         SERIAL PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := pool.Exec(ctx, sql); err != nil {
		return eris.Wrap(err, "property: ensure migration table")
	}
	return nil
}

func appliedMigrations(ctx context.Context, pool db.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, "SELECT name FROM rates.schema_migrations")
	if err != nil {
		return nil, eris.Wrap(err, "property: read applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "property: scan migration name")
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
