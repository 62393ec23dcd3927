package answer

import (
	"context"

	"github.com/prodex-cloud/prodex/internal/llm"
)

// Completer generates prose answers over serialized catalog records.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.Response, error)
}
