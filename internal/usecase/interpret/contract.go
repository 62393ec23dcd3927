package interpret

import (
	"context"

	"github.com/prodex-cloud/prodex/internal/llm"
)

// Completer generates the structured interpretation of a query.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}
