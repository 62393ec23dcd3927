package redis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/prodex-cloud/prodex/internal/catalog"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// matchQuery evaluates the driver-independent query against one record:
// all Must clauses hold, and at least one Should clause when any exist.
func matchQuery(r record.Record, q catalog.Query) bool {
	for _, c := range q.Must {
		if !matchClause(r, c) {
			return false
		}
	}
	if len(q.Should) > 0 {
		for _, c := range q.Should {
			if matchClause(r, c) {
				return true
			}
		}
		return false
	}
	return true
}

// matchClause mirrors the Postgres driver's predicate semantics: contains
// is a case-insensitive substring match, eq/neq compare rendered text, and
// ordering operators compare numerically.
func matchClause(r record.Record, c intent.Clause) bool {
	col, ok := r.HasFold(c.Column)
	if !ok {
		return false
	}
	have := r.GetText(col)

	switch c.Operator {
	case intent.OpEq:
		return have == c.Value
	case intent.OpNeq:
		return have != c.Value
	case intent.OpGt, intent.OpGte, intent.OpLt, intent.OpLte:
		a, errA := strconv.ParseFloat(strings.TrimSpace(have), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
		if errA != nil || errB != nil {
			return false
		}
		switch c.Operator {
		case intent.OpGt:
			return a > b
		case intent.OpGte:
			return a >= b
		case intent.OpLt:
			return a < b
		default:
			return a <= b
		}
	default: // contains
		return strings.Contains(strings.ToLower(have), strings.ToLower(c.Value))
	}
}

// sortRecords orders records by one column, numerically when both sides
// parse as numbers and lexicographically otherwise. The sort is stable so
// scan order breaks ties.
func sortRecords(records []record.Record, ord intent.Ordering) {
	less := func(a, b record.Record) bool {
		var av, bv string
		if col, ok := a.HasFold(ord.Column); ok {
			av = a.GetText(col)
		}
		if col, ok := b.HasFold(ord.Column); ok {
			bv = b.GetText(col)
		}

		an, errA := strconv.ParseFloat(strings.TrimSpace(av), 64)
		bn, errB := strconv.ParseFloat(strings.TrimSpace(bv), 64)
		if errA == nil && errB == nil {
			return an < bn
		}
		return av < bv
	}

	sort.SliceStable(records, func(i, j int) bool {
		if ord.Desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
