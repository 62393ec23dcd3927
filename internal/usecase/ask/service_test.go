package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
	"github.com/prodex-cloud/prodex/internal/usecase/probe"
	"github.com/prodex-cloud/prodex/internal/usecase/search"
)

// --- Mocks ---

type mockProber struct {
	result probe.Result
	err    error
}

func (m *mockProber) Probe(_ context.Context) (probe.Result, error) {
	return m.result, m.err
}

type mockInterpreter struct {
	intent intent.Intent
}

func (m *mockInterpreter) Interpret(
	_ context.Context, _ string, _ schema.Schema, _ string, _ facet.Filter,
) intent.Intent {
	return m.intent
}

type mockExecutor struct {
	result search.Result
	err    error
}

func (m *mockExecutor) Execute(
	_ context.Context, _ intent.Intent, _ facet.Filter, _ *schema.Resolver,
) (search.Result, error) {
	return m.result, m.err
}

type mockSynth struct {
	summary       string
	answer        string
	extractErr    error
	extractTarget record.Record
}

func (m *mockSynth) Summarize(_ context.Context, _ string, _ []record.Record, _ *schema.Resolver) string {
	return m.summary
}

func (m *mockSynth) Extract(_ context.Context, _ string, rec record.Record, _ *schema.Resolver) (string, error) {
	m.extractTarget = rec
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return m.answer, nil
}

func row(m map[string]any) record.Record { return record.FromMap(m) }

func testShape() probe.Result {
	return probe.Result{Schema: schema.New([]string{"sku", "name", "description"})}
}

func newService(in intent.Intent, found search.Result, synth *mockSynth) *Service {
	if synth == nil {
		synth = &mockSynth{}
	}
	return New(
		&mockProber{result: testShape()},
		&mockInterpreter{intent: in},
		&mockExecutor{result: found},
		synth,
		nil,
	)
}

// --- Tests ---

func TestAsk_ListShape(t *testing.T) {
	records := []record.Record{
		row(map[string]any{"sku": "A-100"}),
		row(map[string]any{"sku": "B-200"}),
	}
	svc := newService(intent.Default(), search.Result{Records: records}, nil)

	resp, err := svc.Ask(context.Background(), "show relays", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.List {
		t.Fatalf("type = %q, want list", resp.Type)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Errorf("count = %d, results = %d, want 2", resp.Count, len(resp.Results))
	}
	if resp.Message != "" {
		t.Errorf("message = %q, want empty", resp.Message)
	}
}

func TestAsk_ResultsAreFlattenedAndNormalized(t *testing.T) {
	records := []record.Record{
		row(map[string]any{
			"sku":        "A-100",
			"name":       "<b>PS 870</b> Sealant",
			"embedding":  "[0.1, 0.2]",
			"attributes": `{"color": "red"}`,
		}),
	}
	svc := newService(intent.Default(), search.Result{Records: records}, nil)

	resp, err := svc.Ask(context.Background(), "q", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resp.Results[0]
	if got.GetText("name") != "PS 870 Sealant" {
		t.Errorf("name = %q, want markup stripped", got.GetText("name"))
	}
	if _, ok := got.Get("embedding"); ok {
		t.Error("embedding must not reach the client")
	}
	if _, ok := got.Get("attributes"); ok {
		t.Error("raw attribute bag must not reach the client")
	}
	if got.GetText("color") != "red" {
		t.Error("bag keys should be merged into the record")
	}
}

func TestAsk_EmptyResultsBecomeGuidedList(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Analytical
	svc := newService(in, search.Result{}, nil)

	resp, err := svc.Ask(context.Background(), "anything", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.List {
		t.Errorf("type = %q, empty results must degrade to list", resp.Type)
	}
	if resp.Count != 0 || resp.Message == "" {
		t.Errorf("expected zero count with guidance message, got count=%d message=%q",
			resp.Count, resp.Message)
	}
}

func TestAsk_FallbackCarriesMessage(t *testing.T) {
	records := []record.Record{row(map[string]any{"sku": "A-100"})}
	svc := newService(intent.Default(), search.Result{Records: records, Fallback: true}, nil)

	resp, err := svc.Ask(context.Background(), "q", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message == "" {
		t.Error("fallback results should carry an explanatory message")
	}
}

func TestAsk_ComparisonAlignsRequestedProducts(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Comparison
	in.CompareIDs = []string{"B-200", "C-300"}

	records := []record.Record{
		row(map[string]any{"sku": "A-100", "name": "Widget A"}),
		row(map[string]any{"sku": "B-200", "name": "Widget B"}),
		row(map[string]any{"sku": "C-300", "name": "Widget C"}),
	}
	svc := newService(in, search.Result{Records: records}, nil)

	resp, err := svc.Ask(context.Background(), "compare B-200 and C-300", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.Comparison {
		t.Fatalf("type = %q, want comparison", resp.Type)
	}
	if len(resp.Products) != 2 {
		t.Fatalf("products = %d, want exactly 2", len(resp.Products))
	}
	if resp.Products[0].GetText("sku") != "B-200" || resp.Products[1].GetText("sku") != "C-300" {
		t.Errorf("aligned products = %s, %s",
			resp.Products[0].GetText("sku"), resp.Products[1].GetText("sku"))
	}
	if resp.TotalFound != 3 {
		t.Errorf("total found = %d, want 3", resp.TotalFound)
	}
}

func TestAsk_ComparisonNormalizesIdentifiers(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Comparison
	in.CompareIDs = []string{"b 200", "MIL-DTL-38999"}

	records := []record.Record{
		row(map[string]any{"sku": "B-200"}),
		row(map[string]any{"sku": "X-1", "specification": "MILDTL 38999"}),
	}
	svc := newService(in, search.Result{Records: records}, nil)

	resp, err := svc.Ask(context.Background(), "q", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Products[0].GetText("sku") != "B-200" || resp.Products[1].GetText("sku") != "X-1" {
		t.Errorf("alignment ignored normalization: %s, %s",
			resp.Products[0].GetText("sku"), resp.Products[1].GetText("sku"))
	}
}

func TestAsk_ComparisonUnmatchedFillsInOrder(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Comparison
	in.CompareIDs = []string{"ZZZ-999"}

	records := []record.Record{
		row(map[string]any{"sku": "A-100"}),
		row(map[string]any{"sku": "B-200"}),
	}
	svc := newService(in, search.Result{Records: records}, nil)

	resp, err := svc.Ask(context.Background(), "q", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Products[0].GetText("sku") != "A-100" || resp.Products[1].GetText("sku") != "B-200" {
		t.Errorf("fill order wrong: %s, %s",
			resp.Products[0].GetText("sku"), resp.Products[1].GetText("sku"))
	}
}

func TestAsk_ComparisonWithOneResultDegradesToList(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Comparison
	in.CompareIDs = []string{"A-100", "B-200"}

	records := []record.Record{row(map[string]any{"sku": "A-100"})}
	svc := newService(in, search.Result{Records: records}, nil)

	resp, err := svc.Ask(context.Background(), "q", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.List {
		t.Errorf("type = %q, want degraded list", resp.Type)
	}
	if resp.Message == "" {
		t.Error("degraded comparison should explain itself")
	}
}

func TestAsk_AnalyticalShape(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Analytical
	in.Keywords = []string{"rugged"}

	records := []record.Record{
		row(map[string]any{"sku": "A-100", "description": "standard duty"}),
		row(map[string]any{"sku": "B-200", "description": "rugged sealed housing"}),
	}
	synth := &mockSynth{summary: "B-200 is the rugged choice."}
	svc := newService(in, search.Result{Records: records}, synth)

	resp, err := svc.Ask(context.Background(), "which is most rugged?", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.Analytical {
		t.Fatalf("type = %q, want analytical", resp.Type)
	}
	if resp.Summary != "B-200 is the rugged choice." {
		t.Errorf("summary = %q", resp.Summary)
	}
	// Ranking should move the keyword hit first.
	if resp.Results[0].GetText("sku") != "B-200" {
		t.Errorf("first ranked = %s, want B-200", resp.Results[0].GetText("sku"))
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestAsk_SpecificShape(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Specific
	in.Extract = &intent.Extract{SKU: "B-200", Question: "operating temperature"}

	records := []record.Record{
		row(map[string]any{"sku": "A-100"}),
		row(map[string]any{"sku": "B-200", "temp": "-55C"}),
	}
	synth := &mockSynth{answer: "-55C"}
	svc := newService(in, search.Result{Records: records}, synth)

	resp, err := svc.Ask(context.Background(), "temp of B-200?", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.Specific {
		t.Fatalf("type = %q, want specific", resp.Type)
	}
	if resp.Answer != "-55C" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.Product == nil || resp.Product.GetText("sku") != "B-200" {
		t.Error("product should align to the extraction target")
	}
	if synth.extractTarget.GetText("sku") != "B-200" {
		t.Error("synthesizer received the wrong record")
	}
	if resp.Extracted == nil || resp.Extracted.Question != "operating temperature" {
		t.Errorf("extracted = %+v", resp.Extracted)
	}
}

func TestAsk_SpecificWithoutExtractUsesFirstRecordAndQuery(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Specific

	records := []record.Record{row(map[string]any{"sku": "A-100"})}
	synth := &mockSynth{answer: "answer"}
	svc := newService(in, search.Result{Records: records}, synth)

	resp, err := svc.Ask(context.Background(), "what is the weight?", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Product == nil || resp.Product.GetText("sku") != "A-100" {
		t.Error("expected first record as target")
	}
	if resp.Extracted == nil || resp.Extracted.Question != "what is the weight?" {
		t.Errorf("extracted = %+v, want query as question", resp.Extracted)
	}
}

func TestAsk_SpecificExtractionFailureDegradesToList(t *testing.T) {
	in := intent.Default()
	in.Classification = intent.Specific
	in.Extract = &intent.Extract{SKU: "A-100", Question: "weight"}

	records := []record.Record{row(map[string]any{"sku": "A-100"})}
	synth := &mockSynth{extractErr: errors.New("provider down")}
	svc := newService(in, search.Result{Records: records}, synth)

	resp, err := svc.Ask(context.Background(), "weight of A-100?", facet.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Type != intent.List {
		t.Fatalf("type = %q, failed extraction must degrade to list", resp.Type)
	}
	if len(resp.Results) != 1 || resp.Results[0].GetText("sku") != "A-100" {
		t.Error("degraded list should carry the single target record")
	}
	if resp.Message == "" {
		t.Error("degraded response should explain itself")
	}
	if resp.Answer != "" || resp.Product != nil {
		t.Error("degraded response must not carry specific-shape fields")
	}
}

func TestAsk_ProbeErrorPropagates(t *testing.T) {
	wantErr := errors.New("catalog down")
	svc := New(&mockProber{err: wantErr}, &mockInterpreter{}, &mockExecutor{}, &mockSynth{}, nil)

	if _, err := svc.Ask(context.Background(), "q", facet.Filter{}); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}

func TestAsk_ExecuteErrorPropagates(t *testing.T) {
	wantErr := errors.New("query failed")
	svc := New(
		&mockProber{result: testShape()},
		&mockInterpreter{intent: intent.Default()},
		&mockExecutor{err: wantErr},
		&mockSynth{},
		nil,
	)

	if _, err := svc.Ask(context.Background(), "q", facet.Filter{}); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want wrapped %v", err, wantErr)
	}
}
