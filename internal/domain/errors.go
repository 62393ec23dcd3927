package domain

import "errors"

var (
	// ErrCatalogUnavailable signals an unreachable catalog; fatal for the request.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrTokenLimit signals that a completion request exceeded the model's context window.
	ErrTokenLimit = errors.New("token limit exceeded")
	// ErrQuotaExceeded signals an exhausted provider quota.
	ErrQuotaExceeded = errors.New("completion quota exceeded")
)
