// Package answer synthesizes prose over search results: analytical
// summaries across many records and targeted attribute answers for one.
// Summaries degrade rather than fail; a provider outage yields a fixed
// apology, never an error carried to the caller. Attribute extraction
// reports its failure so the caller can show the record instead.
package answer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/domain"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
	"github.com/prodex-cloud/prodex/internal/domain/textnorm"
	"github.com/prodex-cloud/prodex/internal/llm"
)

const (
	// maxRecords bounds how many records enter the synthesis prompt.
	maxRecords = 25
	// charBudget bounds each serialized record.
	charBudget = 3000

	// Prompts estimated above tokenEstimateCeiling are rebuilt smaller
	// before the first request is even attempted. Chars/4 approximates
	// tokens well enough for a guardrail.
	tokenEstimateCeiling = 20000
	tokenEstimateDivisor = 4
	trimmedRecords       = 15
	trimmedCharBudget    = 1500

	// retryRecords is the record count for the single retry after the
	// provider itself reports a token limit.
	retryRecords = 10

	fallbackSummary = "I found matching products but was unable to generate a summary. Please review the results below."
)

const summarySystem = `You are a product catalog assistant. Answer using only the product data provided. Be concise and concrete; cite products by their identifier. Structure the answer as: a direct answer to the question first, then specific product recommendations, key benefits, relevant technical details, typical applications, and finally a comparison when several products apply. When multiple products could serve, compare their trade-offs. If the data does not support an answer, say so.`

const extractSystem = `You answer one question about one product using only the product data provided. If the data does not contain the answer, reply that the information is not available. Do not guess.`

// Config holds the synthesis model settings.
type Config struct {
	Model     string
	MaxTokens int
}

// Service synthesizes answers from search results.
type Service struct {
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates an answer synthesis service.
func New(completer Completer, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, cfg: cfg, logger: logger.Named("answer")}
}

// Summarize produces an analytical answer over the ranked records. The
// prompt is pre-shrunk when its token estimate is excessive, retried once
// at ten records when the provider still reports a token limit, and
// replaced by a fixed fallback message on any other failure.
func (s *Service) Summarize(ctx context.Context, query string, records []record.Record, resolver *schema.Resolver) string {
	prompt := buildSummaryPrompt(query, records, maxRecords, charBudget, resolver)

	if len(prompt)/tokenEstimateDivisor > tokenEstimateCeiling {
		s.logger.Debug("synthesis prompt over token estimate, shrinking",
			zap.Int("prompt_chars", len(prompt)))
		prompt = buildSummaryPrompt(query, records, trimmedRecords, trimmedCharBudget, resolver)
	}

	text, err := s.complete(ctx, summarySystem, prompt)
	if errors.Is(err, domain.ErrTokenLimit) {
		s.logger.Warn("provider token limit, retrying with fewer records")
		prompt = buildSummaryPrompt(query, records, retryRecords, trimmedCharBudget, resolver)
		text, err = s.complete(ctx, summarySystem, prompt)
	}
	if err != nil {
		s.logger.Error("summary synthesis failed", zap.Error(err))
		return fallbackSummary
	}
	return textnorm.Clean(text)
}

// Extract answers a single attribute question about one record. Unlike
// Summarize, a provider failure is returned to the caller, which degrades
// to listing the record instead of answering.
func (s *Service) Extract(ctx context.Context, question string, rec record.Record, resolver *schema.Resolver) (string, error) {
	prompt := fmt.Sprintf("Product data:\n%s\nQuestion: %s",
		serializeRecords([]record.Record{rec}, 1, charBudget, resolver), question)

	text, err := s.complete(ctx, extractSystem, prompt)
	if err != nil {
		s.logger.Error("attribute extraction failed", zap.Error(err))
		return "", fmt.Errorf("extract attribute: %w", err)
	}
	return textnorm.Clean(text), nil
}

func (s *Service) complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := s.completer.Complete(ctx, llm.Request{
		Model:     s.cfg.Model,
		System:    system,
		Prompt:    prompt,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func buildSummaryPrompt(query string, records []record.Record, maxRecs, budget int, resolver *schema.Resolver) string {
	return fmt.Sprintf(
		"Matching products (%d shown):\n%s\nQuestion: %s\n\nAnswer the question based on these products.",
		min(len(records), maxRecs),
		serializeRecords(records, maxRecs, budget, resolver),
		query,
	)
}
