// Package intent models the LLM-interpreted representation of a user query:
// filter clauses, combination mode, question classification, caps, and
// extracted keywords.
package intent

import "strings"

// Operator is a filter clause operator.
type Operator string

const (
	// OpContains is a case-insensitive substring match (the default).
	OpContains Operator = "contains"
	// OpEq is an exact match.
	OpEq Operator = "eq"
	// OpNeq is an exact mismatch.
	OpNeq Operator = "neq"
	// OpGt is a greater-than comparison.
	OpGt Operator = "gt"
	// OpGte is a greater-or-equal comparison.
	OpGte Operator = "gte"
	// OpLt is a less-than comparison.
	OpLt Operator = "lt"
	// OpLte is a less-or-equal comparison.
	OpLte Operator = "lte"
)

// ParseOperator maps free-form operator spellings from LLM output onto the
// closed operator set, defaulting to contains.
func ParseOperator(s string) Operator {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "=", "==", "equals", "exact":
		return OpEq
	case "neq", "!=", "<>", "not_equals":
		return OpNeq
	case "gt", ">":
		return OpGt
	case "gte", ">=":
		return OpGte
	case "lt", "<":
		return OpLt
	case "lte", "<=":
		return OpLte
	default:
		return OpContains
	}
}

// Clause is a single column filter predicate.
type Clause struct {
	Column   string
	Operator Operator
	Value    string
}

// Mode is the clause combination mode.
type Mode string

const (
	// ModeAll combines clauses conjunctively.
	ModeAll Mode = "all"
	// ModeAny combines clauses disjunctively.
	ModeAny Mode = "any"
)

// ParseMode maps free-form mode spellings onto the closed set, defaulting
// to any (the safer, broader combination).
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "and":
		return ModeAll
	default:
		return ModeAny
	}
}

// Classification is the question shape governing response assembly.
type Classification string

const (
	// List is the default: emit matching records with a count.
	List Classification = "list"
	// Comparison isolates the requested products side by side.
	Comparison Classification = "comparison"
	// Analytical synthesizes prose over ranked candidates.
	Analytical Classification = "analytical"
	// Specific extracts one attribute from one record.
	Specific Classification = "specific"
)

// ParseClassification maps free-form classification spellings onto the
// closed set, defaulting to list.
func ParseClassification(s string) Classification {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comparison", "compare":
		return Comparison
	case "analytical", "analysis":
		return Analytical
	case "specific", "attribute", "attribute-extraction", "attribute_extraction":
		return Specific
	default:
		return List
	}
}

// Ordering is an optional result ordering directive.
type Ordering struct {
	Column string
	Desc   bool
}

// Extract carries the attribute-extraction target for specific questions.
type Extract struct {
	SKU      string
	Question string
}

// Intent is the structured interpretation of a free-text query.
type Intent struct {
	Clauses        []Clause
	Mode           Mode
	Classification Classification
	// Limit caps the result count; 0 means uncapped.
	Limit    int
	Ordering *Ordering
	// Keywords drive the fallback broad search and relevance scoring.
	Keywords []string
	// CompareIDs lists product identifiers for comparison questions.
	CompareIDs []string
	// Extract is set for specific (attribute-extraction) questions.
	Extract *Extract
}

// Default returns the safe fallback intent used when interpretation fails:
// no filters, disjunctive combination, list classification, no cap. The
// pipeline can always proceed with it as an unfiltered query.
func Default() Intent {
	return Intent{
		Mode:           ModeAny,
		Classification: List,
	}
}

// HasFilters reports whether the intent carries at least one filter clause.
func (i Intent) HasFilters() bool { return len(i.Clauses) > 0 }
