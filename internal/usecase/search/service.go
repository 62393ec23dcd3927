// Package search executes an interpreted intent against the catalog:
// facets and filters become predicates where the schema allows, the rest is
// enforced in memory, and an empty primary pass degrades to a broad keyword
// search so over-narrow interpretations still surface candidates.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

// minTermLength drops fallback terms too short to discriminate.
const minTermLength = 2

// Config bounds the executor's result sets.
type Config struct {
	// AnalyticalLimit caps analytical queries that carry no explicit limit.
	AnalyticalLimit int
	// FallbackLimit caps the broad keyword fallback.
	FallbackLimit int
}

// Result is the outcome of one search pass.
type Result struct {
	Records []record.Record
	// Fallback reports that the primary filtered pass found nothing and
	// the records come from the broad keyword search.
	Fallback bool
}

// Service executes interpreted intents against the catalog.
type Service struct {
	store  Selector
	cfg    Config
	logger *zap.Logger
}

// New creates a search execution service.
func New(store Selector, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cfg: cfg, logger: logger.Named("search")}
}

// Execute runs the primary filtered search and, when it comes back empty
// despite having had at least one filter clause, the broad fallback search.
// Facets whose attribute has no physical column are enforced in memory on
// both passes.
func (s *Service) Execute(
	ctx context.Context, in intent.Intent, filters facet.Filter, resolver *schema.Resolver,
) (Result, error) {
	facetMust, postFilter := s.compileFacets(filters, resolver)
	query := s.buildPrimary(in, facetMust, resolver)

	records, err := s.store.Select(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("primary search: %w", err)
	}
	records = applyPostFilter(records, postFilter)

	if len(records) > 0 || !in.HasFilters() {
		return Result{Records: records}, nil
	}

	fallback := s.buildFallback(in, facetMust, resolver)
	if fallback == nil {
		return Result{Records: records}, nil
	}

	s.logger.Info("primary search empty, running keyword fallback",
		zap.Int("dropped_clauses", len(in.Clauses)))

	records, err = s.store.Select(ctx, *fallback)
	if err != nil {
		return Result{}, fmt.Errorf("fallback search: %w", err)
	}
	records = applyPostFilter(records, postFilter)

	return Result{Records: records, Fallback: true}, nil
}

// compileFacets splits facet selections into predicates for schema-present
// attributes and in-memory post-filters for the rest.
func (s *Service) compileFacets(
	filters facet.Filter, resolver *schema.Resolver,
) ([]intent.Clause, []facet.Selection) {
	var must []intent.Clause
	var post []facet.Selection

	for _, sel := range filters.Selections() {
		col, ok := resolver.Resolve(sel.Attr)
		if !ok {
			s.logger.Debug("facet attribute has no column, filtering in memory",
				zap.String("attribute", string(sel.Attr)))
			post = append(post, sel)
			continue
		}
		must = append(must, intent.Clause{Column: col, Operator: intent.OpEq, Value: sel.Value})
	}
	return must, post
}

// buildPrimary compiles the intent's clauses into a catalog query. Clauses
// naming columns absent from the schema are dropped with a warning; the
// model occasionally invents column names.
func (s *Service) buildPrimary(
	in intent.Intent, facetMust []intent.Clause, resolver *schema.Resolver,
) catalog.Query {
	q := catalog.Query{Must: facetMust}

	for _, c := range in.Clauses {
		col, ok := resolver.Schema().Canonical(c.Column)
		if !ok {
			s.logger.Warn("dropping filter on unknown column", zap.String("column", c.Column))
			continue
		}
		c.Column = col
		if in.Mode == intent.ModeAll {
			q.Must = append(q.Must, c)
		} else {
			q.Should = append(q.Should, c)
		}
	}

	if in.Ordering != nil {
		if col, ok := resolver.Schema().Canonical(in.Ordering.Column); ok {
			q.Order = &intent.Ordering{Column: col, Desc: in.Ordering.Desc}
		} else {
			s.logger.Warn("dropping ordering on unknown column",
				zap.String("column", in.Ordering.Column))
		}
	}

	q.Limit = in.Limit
	if q.Limit == 0 && in.Classification == intent.Analytical {
		q.Limit = s.cfg.AnalyticalLimit
	}
	return q
}

// buildFallback turns the failed intent's filter values and keywords into a
// disjunctive contains query over the identity columns. Returns nil when no
// usable term or target column survives.
func (s *Service) buildFallback(
	in intent.Intent, facetMust []intent.Clause, resolver *schema.Resolver,
) *catalog.Query {
	terms := fallbackTerms(in)
	if len(terms) == 0 {
		return nil
	}

	var columns []string
	for _, attr := range []schema.Attribute{schema.AttrIdentifier, schema.AttrName, schema.AttrDescription} {
		if col, ok := resolver.Resolve(attr); ok {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil
	}

	q := &catalog.Query{Must: facetMust, Limit: s.cfg.FallbackLimit}
	for _, term := range terms {
		for _, col := range columns {
			q.Should = append(q.Should, intent.Clause{
				Column: col, Operator: intent.OpContains, Value: term,
			})
		}
	}
	return q
}

// fallbackTerms extracts broad search terms from the intent: each clause
// value stripped of wildcard, whitespace, and hyphen characters, plus the
// extracted keywords, deduplicated case-insensitively.
func fallbackTerms(in intent.Intent) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(raw string) {
		term := stripNoise(raw)
		if len(term) <= minTermLength {
			return
		}
		key := strings.ToLower(term)
		if seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, term)
	}

	for _, c := range in.Clauses {
		add(c.Value)
	}
	for _, kw := range in.Keywords {
		add(kw)
	}
	return terms
}

// stripNoise removes characters that would distort a substring match.
func stripNoise(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '%', '*', '?', '-', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

// applyPostFilter keeps records matching every in-memory facet selection.
func applyPostFilter(records []record.Record, post []facet.Selection) []record.Record {
	if len(post) == 0 {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		flat := record.Flatten(r)
		ok := true
		for _, sel := range post {
			if !sel.Matches(flat) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept
}
