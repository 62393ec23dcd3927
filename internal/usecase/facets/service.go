// Package facets enumerates the distinct facet values present in the
// catalog so the UI can offer them as filter options.
package facets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

// Options are the distinct facet values found in the catalog, sorted
// case-insensitively.
type Options struct {
	Families       []string
	ProductTypes   []string
	Specifications []string
}

// Config bounds the discovery scan.
type Config struct {
	// ScanLimit caps how many rows are inspected.
	ScanLimit int
}

// Service discovers filter options from the catalog.
type Service struct {
	store  Selector
	cfg    Config
	logger *zap.Logger
}

// New creates a facet discovery service.
func New(store Selector, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cfg: cfg, logger: logger.Named("facets")}
}

// Options scans up to the configured row count and collects the distinct
// family, product type, and specification values across physical columns
// and attribute bags alike.
func (s *Service) Options(ctx context.Context) (Options, error) {
	rows, err := s.store.Select(ctx, catalog.Query{Limit: s.cfg.ScanLimit})
	if err != nil {
		return Options{}, fmt.Errorf("scan catalog: %w", err)
	}

	families := newValueSet()
	productTypes := newValueSet()
	specifications := newValueSet()

	for _, r := range rows {
		flat := record.Flatten(r)
		families.collect(flat, schema.AttrFamily)
		productTypes.collect(flat, schema.AttrProductType)
		specifications.collect(flat, schema.AttrSpecification)
	}

	opts := Options{
		Families:       families.sorted(),
		ProductTypes:   productTypes.sorted(),
		Specifications: specifications.sorted(),
	}
	s.logger.Debug("facet options discovered",
		zap.Int("rows_scanned", len(rows)),
		zap.Int("families", len(opts.Families)),
		zap.Int("product_types", len(opts.ProductTypes)),
		zap.Int("specifications", len(opts.Specifications)))
	return opts, nil
}

// valueSet deduplicates case-insensitively, keeping the first-seen casing.
type valueSet struct {
	seen   map[string]bool
	values []string
}

func newValueSet() *valueSet {
	return &valueSet{seen: make(map[string]bool)}
}

func (vs *valueSet) collect(flat record.Record, attr schema.Attribute) {
	for _, candidate := range schema.Candidates(attr) {
		stored, ok := flat.HasFold(candidate)
		if !ok {
			continue
		}
		value := strings.TrimSpace(flat.GetText(stored))
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if vs.seen[key] {
			continue
		}
		vs.seen[key] = true
		vs.values = append(vs.values, value)
	}
}

func (vs *valueSet) sorted() []string {
	out := vs.values
	sort.Slice(out, func(a, b int) bool {
		return strings.ToLower(out[a]) < strings.ToLower(out[b])
	})
	return out
}
