package llm

import (
	"fmt"
	"strings"

	"github.com/prodex-cloud/prodex/internal/domain"
)

// ClassifyError maps a raw provider error onto the domain sentinels so
// callers can branch on token-limit and quota conditions without knowing
// the provider. Providers report these conditions in message text rather
// than stable codes, so classification is substring-based.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "context_length_exceeded"),
		strings.Contains(lower, "maximum context length"),
		strings.Contains(lower, "context length exceeded"),
		strings.Contains(lower, "prompt is too long"),
		strings.Contains(lower, "max_tokens"):
		return fmt.Errorf("%w: %w", domain.ErrTokenLimit, err)

	case strings.Contains(lower, "insufficient_quota"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "429"):
		return fmt.Errorf("%w: %w", domain.ErrQuotaExceeded, err)

	default:
		return fmt.Errorf("%w: %w", domain.ErrCompletionProviderError, err)
	}
}
