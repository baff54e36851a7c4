// Package ports defines the storage interfaces the analytics engine
// consumes. Adapters live under internal/eventstore and internal/catalog;
// wiring happens once in the composition root.
package ports

import (
	"context"
	"time"

	"github.com/courseloop/insights/internal/core/domain"
)

// ScanPage is one page of a partition range scan. NextCursor is empty when
// the partition's window has been exhausted.
type ScanPage struct {
	Events     []domain.InteractionEvent
	NextCursor string
}

// EventStore is the read-only interface to the partitioned interaction
// event store. The engine never writes through this interface; ingestion
// is an external collaborator.
type EventStore interface {
	// RangeScan reads events for one partition key within [start, end),
	// ordered by timestamp ascending, at most limit records per page.
	// Pass the returned NextCursor to continue; an empty cursor starts
	// from the beginning of the window.
	RangeScan(ctx context.Context, key domain.PartitionKey, start, end time.Time, limit int, cursor string) (ScanPage, error)

	// Close releases the underlying storage handles.
	Close() error
}

// CatalogStore is the read-only interface to the organizational catalog
// and unit-economics pricing tables. Each method is a single bulk read;
// the orchestrator snapshots the catalog once per request.
type CatalogStore interface {
	// GetHierarchy returns the full institution/course/module tree.
	GetHierarchy(ctx context.Context) (domain.Hierarchy, error)

	// GetAssignedCourses returns the course IDs explicitly assigned to an
	// instructor. An instructor with no assignments yields an empty
	// slice, not an error.
	GetAssignedCourses(ctx context.Context, instructorID string) ([]int64, error)

	// GetActivePricing returns every active pricing entry.
	GetActivePricing(ctx context.Context) ([]domain.PricingEntry, error)

	// Close releases the underlying database handle.
	Close() error
}
