package facets

import (
	"context"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Selector reads catalog rows for facet value discovery.
type Selector interface {
	Select(ctx context.Context, q catalog.Query) ([]record.Record, error)
}
