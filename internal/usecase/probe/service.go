// Package probe discovers the catalog's effective column set and a compact
// data-shape summary from a handful of sampled rows.
package probe

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

const (
	// sampleRows is how many rows are inspected for shape discovery.
	sampleRows = 2

	// maxValueChars truncates sampled values in the shape summary.
	maxValueChars = 100
)

// Result is the discovered catalog shape.
type Result struct {
	Schema schema.Schema
	// Summary is a human-readable sketch of the sampled rows, suitable
	// for inclusion in an interpretation prompt.
	Summary string
}

// Service discovers the catalog shape by sampling rows.
type Service struct {
	sampler Sampler
	logger  *zap.Logger
}

// New creates a schema probing service.
func New(sampler Sampler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sampler: sampler, logger: logger.Named("probe")}
}

// Probe samples up to two rows and derives the top-level column set.
// Attribute-bag keys are not columns: they appear in the shape summary
// via the flattened view but never in the schema, so filters compiled
// against the schema always reference real table columns.
// An empty catalog yields an empty schema without error.
func (s *Service) Probe(ctx context.Context) (Result, error) {
	rows, err := s.sampler.Sample(ctx, sampleRows)
	if err != nil {
		return Result{}, fmt.Errorf("sample catalog: %w", err)
	}
	if len(rows) == 0 {
		s.logger.Warn("catalog returned no sample rows")
		return Result{Schema: schema.New(nil)}, nil
	}

	var columns []string
	var summary strings.Builder
	for i, row := range rows {
		for _, key := range row.Keys() {
			if record.IsInternal(key) {
				continue
			}
			columns = append(columns, key)
		}

		flat := record.Flatten(row)
		fmt.Fprintf(&summary, "Sample row %d:\n", i+1)
		for _, key := range flat.Keys() {
			fmt.Fprintf(&summary, "  %s: %s\n", key, truncate(flat.GetText(key)))
		}
	}

	sch := schema.New(columns)
	s.logger.Debug("catalog shape discovered",
		zap.Int("rows_sampled", len(rows)),
		zap.Int("columns", len(sch.Columns())))

	return Result{Schema: sch, Summary: summary.String()}, nil
}

func truncate(v string) string {
	if len(v) <= maxValueChars {
		return v
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := maxValueChars
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return v[:cut] + "..."
}
