package probe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// --- Mocks ---

type mockSampler struct {
	rows      []record.Record
	err       error
	lastLimit int
}

func (m *mockSampler) Sample(_ context.Context, limit int) ([]record.Record, error) {
	m.lastLimit = limit
	return m.rows, m.err
}

func makeRecord(t *testing.T, pairs map[string]any) record.Record {
	t.Helper()
	return record.FromMap(pairs)
}

// --- Tests ---

func TestProbe_DiscoversColumnsAcrossRows(t *testing.T) {
	sampler := &mockSampler{rows: []record.Record{
		makeRecord(t, map[string]any{"sku": "A-100", "name": "Widget"}),
		makeRecord(t, map[string]any{"sku": "B-200", "voltage": "24V"}),
	}}
	svc := New(sampler, nil)

	res, err := svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sampler.lastLimit != 2 {
		t.Errorf("sample limit = %d, want 2", sampler.lastLimit)
	}
	for _, col := range []string{"sku", "name", "voltage"} {
		if !res.Schema.Has(col) {
			t.Errorf("schema missing column %q", col)
		}
	}
}

func TestProbe_EmptyCatalog(t *testing.T) {
	svc := New(&mockSampler{}, nil)

	res, err := svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Schema.IsEmpty() {
		t.Errorf("expected empty schema, got %v", res.Schema.Columns())
	}
	if res.Summary != "" {
		t.Errorf("expected empty summary, got %q", res.Summary)
	}
}

func TestProbe_SamplerError(t *testing.T) {
	wantErr := errors.New("catalog down")
	svc := New(&mockSampler{err: wantErr}, nil)

	_, err := svc.Probe(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}

func TestProbe_SummaryTruncatesLongValues(t *testing.T) {
	long := strings.Repeat("x", 250)
	sampler := &mockSampler{rows: []record.Record{
		makeRecord(t, map[string]any{"description": long}),
	}}
	svc := New(sampler, nil)

	res, err := svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.Summary, long) {
		t.Error("summary contains untruncated value")
	}
	if !strings.Contains(res.Summary, strings.Repeat("x", 100)+"...") {
		t.Error("summary missing truncated value with ellipsis")
	}
}

func TestProbe_TruncationKeepsValidUTF8(t *testing.T) {
	// 99 ASCII bytes followed by multi-byte runes puts the 100-byte cut
	// inside a rune.
	long := strings.Repeat("x", 99) + strings.Repeat("é", 40)
	sampler := &mockSampler{rows: []record.Record{
		makeRecord(t, map[string]any{"description": long}),
	}}
	svc := New(sampler, nil)

	res, err := svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(res.Summary) {
		t.Error("summary contains invalid UTF-8 after truncation")
	}
	if !strings.Contains(res.Summary, strings.Repeat("x", 99)+"...") {
		t.Error("cut should back off to the rune boundary before the split")
	}
}

func TestProbe_BagKeysSummaryOnly(t *testing.T) {
	sampler := &mockSampler{rows: []record.Record{
		makeRecord(t, map[string]any{
			"sku":        "A-100",
			"embedding":  "[0.1, 0.2]",
			"attributes": `{"family": "ProLine", "color": "red"}`,
		}),
	}}
	svc := New(sampler, nil)

	res, err := svc.Probe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Bag keys are data shape, not table columns: they belong in the
	// summary but must never become filterable schema columns.
	for _, bagKey := range []string{"family", "color"} {
		if res.Schema.Has(bagKey) {
			t.Errorf("schema exposes bag key %q as a column", bagKey)
		}
		if !strings.Contains(res.Summary, bagKey) {
			t.Errorf("summary missing bag key %q", bagKey)
		}
	}
	for _, internal := range []string{"attributes", "embedding"} {
		if res.Schema.Has(internal) {
			t.Errorf("schema exposes internal column %q", internal)
		}
	}
	if !res.Schema.Has("sku") {
		t.Error("schema missing top-level column sku")
	}
}
