package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ratesmap/ratesmap/internal/property"
)

// pgPool opens and pings a Postgres connection pool from config.
func pgPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("store: no database_url configured (set store.database_url)")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping database")
	}

	fmt.Println("Connected to database")
	return pool, nil
}

// openStore builds the configured property store. For Postgres the pool is
// also returned so commands can share it with the sync log; it is nil for
// SQLite.
func openStore(ctx context.Context) (property.Store, *pgxpool.Pool, error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := pgPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := property.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return property.NewPostgresStore(pool, pool.Close), pool, nil
	case "sqlite":
		st, err := property.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	default:
		return nil, nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}
