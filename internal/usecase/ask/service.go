// Package ask orchestrates the question pipeline: probe the catalog shape,
// interpret the question, execute the search, and shape the outcome by the
// question's classification.
package ask

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
	"github.com/prodex-cloud/prodex/internal/usecase/rank"
)

const (
	emptyResultsMessage    = "No matching products were found. Try broadening the question or removing filters."
	fallbackResultsMessage = "No products matched the filters exactly; showing related products instead."
	extractFailedMessage   = "The product was found but the requested detail could not be extracted. Review the product data below."
)

// Service runs the question answering pipeline.
type Service struct {
	prober      Prober
	interpreter Interpreter
	executor    Executor
	synth       Synthesizer
	logger      *zap.Logger
}

// New creates the question orchestrator.
func New(prober Prober, interpreter Interpreter, executor Executor, synth Synthesizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		prober:      prober,
		interpreter: interpreter,
		executor:    executor,
		synth:       synth,
		logger:      logger.Named("ask"),
	}
}

// Ask answers one question under the given facet constraints.
func (s *Service) Ask(ctx context.Context, query string, filters facet.Filter) (Response, error) {
	shape, err := s.prober.Probe(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("probe catalog: %w", err)
	}
	resolver := schema.NewResolver(shape.Schema)

	in := s.interpreter.Interpret(ctx, query, shape.Schema, shape.Summary, filters)
	s.logger.Debug("question interpreted",
		zap.String("classification", string(in.Classification)),
		zap.Int("clauses", len(in.Clauses)),
		zap.Int("keywords", len(in.Keywords)))

	found, err := s.executor.Execute(ctx, in, filters, resolver)
	if err != nil {
		return Response{}, fmt.Errorf("execute search: %w", err)
	}

	if len(found.Records) == 0 {
		return Response{Type: intent.List, Message: emptyResultsMessage}, nil
	}

	// Clients see the flattened view only: bag keys merged, internal
	// columns removed, text normalized to plaintext.
	records := flattenAll(found.Records)

	var message string
	if found.Fallback {
		message = fallbackResultsMessage
	}

	switch in.Classification {
	case intent.Comparison:
		return s.shapeComparison(in, records), nil
	case intent.Analytical:
		return s.shapeAnalytical(ctx, query, in, records, message, resolver), nil
	case intent.Specific:
		return s.shapeSpecific(ctx, query, in, records, resolver), nil
	default:
		return Response{
			Type:    intent.List,
			Results: records,
			Count:   len(records),
			Message: message,
		}, nil
	}
}

func flattenAll(records []record.Record) []record.Record {
	flat := make([]record.Record, len(records))
	for i, r := range records {
		flat[i] = record.Flatten(r)
	}
	return flat
}

// shapeComparison isolates exactly two products aligned to the requested
// identifiers. Fewer than two results cannot be compared and degrade to a
// plain list.
func (s *Service) shapeComparison(in intent.Intent, records []record.Record) Response {
	if len(records) < 2 {
		s.logger.Debug("too few results to compare, degrading to list")
		return Response{
			Type:    intent.List,
			Results: records,
			Count:   len(records),
			Message: "Only one matching product was found, so there is nothing to compare.",
		}
	}

	products := alignCompareTargets(in.CompareIDs, records)
	return Response{
		Type:       intent.Comparison,
		Products:   products,
		CompareIDs: in.CompareIDs,
		TotalFound: len(records),
	}
}

func (s *Service) shapeAnalytical(
	ctx context.Context, query string, in intent.Intent,
	records []record.Record, message string, resolver *schema.Resolver,
) Response {
	ranked := rank.Rank(records, in.Keywords, resolver)
	summary := s.synth.Summarize(ctx, query, ranked, resolver)
	return Response{
		Type:    intent.Analytical,
		Summary: summary,
		Results: ranked,
		Count:   len(ranked),
		Message: message,
	}
}

// shapeSpecific answers an attribute question about one record: the one
// aligned to the extraction target's identifier, or the first result.
func (s *Service) shapeSpecific(
	ctx context.Context, query string, in intent.Intent,
	records []record.Record, resolver *schema.Resolver,
) Response {
	target := records[0]
	extracted := in.Extract
	if extracted != nil && extracted.SKU != "" {
		if idx, ok := findByIdentifier(extracted.SKU, records, nil); ok {
			target = records[idx]
		}
	}

	question := query
	if extracted != nil && extracted.Question != "" {
		question = extracted.Question
	}
	if extracted == nil {
		extracted = &intent.Extract{Question: question}
	}

	answer, err := s.synth.Extract(ctx, question, target, resolver)
	if err != nil {
		s.logger.Warn("attribute extraction failed, degrading to list", zap.Error(err))
		return Response{
			Type:    intent.List,
			Results: []record.Record{target},
			Count:   1,
			Message: extractFailedMessage,
		}
	}
	return Response{
		Type:      intent.Specific,
		Answer:    answer,
		Extracted: extracted,
		Product:   &target,
	}
}
