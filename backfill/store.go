package backfill

import (
	"context"

	"leadpipe/models"
)

// Store is the write side of the migration. The orchestrator issues exactly
// one bulk call per phase; implementations decide batching below that.
type Store interface {
	// FetchLegacyListings returns the whole foreclosure_data table ordered by
	// creation time ascending.
	FetchLegacyListings(ctx context.Context) ([]*models.LegacyListing, error)

	InsertProperties(ctx context.Context, properties []*models.Property) error
	InsertDistressEvents(ctx context.Context, events []*models.DistressEvent) error
	InsertContacts(ctx context.Context, contacts []*models.Contact) error
	InsertPropertyContacts(ctx context.Context, links []*models.PropertyContact) error
	UpsertLeadPipelines(ctx context.Context, rows []*models.LeadPipeline) error

	// TableCount reports the row count of a vNext table for post-run
	// validation.
	TableCount(ctx context.Context, table string) (int64, error)
}
