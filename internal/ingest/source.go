// Package ingest downloads council valuation rolls from their ArcGIS
// endpoints and loads them into the property store.
package ingest

import (
	"context"
	"time"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/property"
)

// Cadence describes how often a council republishes its roll.
type Cadence string

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
)

// SyncResult holds the outcome of a source sync.
type SyncResult struct {
	RowsSynced int64          `json:"rows_synced"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Source defines the interface each council data source must implement.
type Source interface {
	// Name returns the unique identifier (e.g., "auckland", "wellington").
	Name() string

	// District returns the district label stamped on every record.
	District() string

	// Cadence returns how often the upstream roll is updated.
	Cadence() Cadence

	// ShouldRun decides if this source needs syncing given the current time
	// and the time of the last successful sync (nil if never synced).
	ShouldRun(now time.Time, lastSync *time.Time) bool

	// Sync downloads the roll and upserts it into the store.
	Sync(ctx context.Context, store property.Store, f fetcher.Fetcher) (*SyncResult, error)
}
