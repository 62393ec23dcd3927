// Package facet models the user-chosen hard constraints (family, product
// type, specification) layered on top of the LLM-derived filters.
package facet

import (
	"strings"

	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

// Filter holds up to three user selections. Empty strings mean "no
// constraint". Facets combine conjunctively with each other and with the
// search intent's filters.
type Filter struct {
	Family        string
	ProductType   string
	Specification string
}

// Selection pairs a logical attribute with the value the user picked.
type Selection struct {
	Attr  schema.Attribute
	Value string
}

// IsEmpty reports whether no facet is active.
func (f Filter) IsEmpty() bool {
	return f.Family == "" && f.ProductType == "" && f.Specification == ""
}

// Selections returns the active facets in a stable order.
func (f Filter) Selections() []Selection {
	var out []Selection
	if f.Family != "" {
		out = append(out, Selection{Attr: schema.AttrFamily, Value: f.Family})
	}
	if f.ProductType != "" {
		out = append(out, Selection{Attr: schema.AttrProductType, Value: f.ProductType})
	}
	if f.Specification != "" {
		out = append(out, Selection{Attr: schema.AttrSpecification, Value: f.Specification})
	}
	return out
}

// Matches reports whether a record satisfies a selection, for in-memory
// post-filtering when the attribute has no physical column. The attribute
// is looked up across the flattened record (top level plus attribute bag)
// under every synonym candidate; values compare case-insensitively after
// trimming.
func (s Selection) Matches(flat record.Record) bool {
	want := strings.TrimSpace(s.Value)
	for _, candidate := range schema.Candidates(s.Attr) {
		stored, ok := flat.HasFold(candidate)
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(flat.GetText(stored)), want) {
			return true
		}
	}
	return false
}
