package search

import (
	"context"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Selector executes column-filter queries against the catalog.
type Selector interface {
	Select(ctx context.Context, q catalog.Query) ([]record.Record, error)
}
