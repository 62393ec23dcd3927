// Package catalog defines the storage contract for the product catalog.
// The catalog is a read-only tabular store reachable via column-filter
// queries; drivers compile the Query into their native predicate form.
package catalog

import (
	"context"
	"time"

	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Query is a driver-independent column-filter query.
type Query struct {
	// Must clauses are conjunctive constraints (facets and all-mode filters).
	Must []intent.Clause
	// Should clauses form a single OR-combined group, itself conjoined
	// with the Must clauses.
	Should []intent.Clause
	// Order optionally sorts results by one column.
	Order *intent.Ordering
	// Limit caps the row count; 0 means no cap.
	Limit int
}

// IsUnfiltered reports whether the query carries no predicates.
func (q Query) IsUnfiltered() bool {
	return len(q.Must) == 0 && len(q.Should) == 0
}

// Store is the catalog storage contract.
type Store interface {
	// Select executes a column-filter query and returns matching rows.
	Select(ctx context.Context, q Query) ([]record.Record, error)
	// Sample returns up to n representative rows for schema discovery.
	// An empty catalog yields an empty slice, not an error.
	Sample(ctx context.Context, n int) ([]record.Record, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// WaitForReady polls Ping until the store responds or timeout expires.
	WaitForReady(ctx context.Context, timeout time.Duration) error
	// Close releases the underlying connections.
	Close()
}
