package property

import "context"

// Store defines persistence for property records.
type Store interface {
	// BulkUpsert inserts or updates records keyed by object ID, skipping
	// updates where nothing changed. Returns the number of rows written.
	BulkUpsert(ctx context.Context, records []Record) (int64, error)

	// ListAll returns every record, ordered by object ID.
	ListAll(ctx context.Context) ([]Record, error)

	// ListByDistrict returns all records for a district, ordered by object ID.
	ListByDistrict(ctx context.Context, district string) ([]Record, error)

	// Categories returns distinct property types with record counts,
	// descending by count. Unclassified records are excluded.
	Categories(ctx context.Context) ([]CategoryCount, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases the underlying connections.
	Close() error
}
