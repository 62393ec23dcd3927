package probe

import (
	"context"

	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Sampler reads a small number of catalog rows for shape discovery.
type Sampler interface {
	Sample(ctx context.Context, limit int) ([]record.Record, error)
}
