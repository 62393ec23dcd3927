package rank

import (
	"fmt"
	"testing"

	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

func testResolver() *schema.Resolver {
	return schema.NewResolver(schema.New([]string{"sku", "name", "description", "application"}))
}

func row(m map[string]any) record.Record { return record.FromMap(m) }

func TestRank_NoKeywordsReturnsInputOrder(t *testing.T) {
	records := []record.Record{
		row(map[string]any{"sku": "A"}),
		row(map[string]any{"sku": "B"}),
	}

	got := Rank(records, nil, testResolver())
	if len(got) != 2 || got[0].GetText("sku") != "A" {
		t.Errorf("expected input order preserved, got %v", got[0].GetText("sku"))
	}
}

func TestRank_FieldBonusesOrderResults(t *testing.T) {
	records := []record.Record{
		row(map[string]any{"sku": "X-1", "description": "a sealed relay"}),
		row(map[string]any{"sku": "X-2", "name": "power relay"}),
		row(map[string]any{"sku": "RELAY-3", "name": "misc part"}),
		row(map[string]any{"sku": "X-4", "name": "gasket"}),
	}

	got := Rank(records, []string{"relay"}, testResolver())

	// Identifier hit (50) beats name hit (30) beats description hit (10).
	wantOrder := []string{"RELAY-3", "X-2", "X-1", "X-4"}
	for i, want := range wantOrder {
		if sku := got[i].GetText("sku"); sku != want {
			t.Errorf("position %d = %s, want %s", i, sku, want)
		}
	}
}

func TestRank_OccurrencesAccumulate(t *testing.T) {
	records := []record.Record{
		row(map[string]any{"sku": "A", "description": "valve valve valve"}),
		row(map[string]any{"sku": "B", "description": "valve"}),
	}

	got := Rank(records, []string{"valve"}, testResolver())
	if got[0].GetText("sku") != "A" {
		t.Errorf("expected repeated occurrences to rank first, got %s", got[0].GetText("sku"))
	}
}

func TestRank_StableForTies(t *testing.T) {
	records := []record.Record{
		row(map[string]any{"sku": "A", "description": "pump"}),
		row(map[string]any{"sku": "B", "description": "pump"}),
	}

	got := Rank(records, []string{"pump"}, testResolver())
	if got[0].GetText("sku") != "A" || got[1].GetText("sku") != "B" {
		t.Error("tie order not stable")
	}
}

func TestRank_TruncatesToTopFifty(t *testing.T) {
	var records []record.Record
	for i := 0; i < 80; i++ {
		records = append(records, row(map[string]any{
			"sku":         fmt.Sprintf("P-%03d", i),
			"description": "pump",
		}))
	}

	got := Rank(records, []string{"pump"}, testResolver())
	if len(got) != 50 {
		t.Errorf("ranked = %d, want 50", len(got))
	}
}

func TestRank_BagFieldsScoreWithoutColumns(t *testing.T) {
	// No application column in the schema; the bonus still applies when
	// the flattened attribute bag carries the field.
	resolver := schema.NewResolver(schema.New([]string{"sku", "attributes"}))
	records := []record.Record{
		row(map[string]any{"sku": "A", "attributes": `{"application": "aerospace sealing"}`}),
		row(map[string]any{"sku": "B", "attributes": `{"notes": "aerospace"}`}),
	}

	got := Rank(records, []string{"aerospace"}, resolver)
	if got[0].GetText("sku") != "A" {
		t.Errorf("expected bag application bonus to rank A first, got %s", got[0].GetText("sku"))
	}
}
