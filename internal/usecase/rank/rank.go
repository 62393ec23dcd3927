// Package rank orders analytical search candidates by keyword relevance so
// the synthesizer sees the most pertinent records within its budget.
package rank

import (
	"sort"
	"strings"

	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

const (
	// maxRanked caps the candidate set handed to synthesis.
	maxRanked = 50

	occurrencePoints  = 2
	identifierPoints  = 50
	namePoints        = 30
	applicationPoints = 20
	descriptionPoints = 10
)

// fieldWeights awards extra points when a keyword appears in a
// high-signal field.
var fieldWeights = []struct {
	attr   schema.Attribute
	points int
}{
	{schema.AttrIdentifier, identifierPoints},
	{schema.AttrName, namePoints},
	{schema.AttrApplication, applicationPoints},
	{schema.AttrDescription, descriptionPoints},
}

// Rank scores records against the keywords and returns them in descending
// score order, truncated to the top candidates. Ties keep their original
// order. With no keywords the input is returned unchanged.
func Rank(records []record.Record, keywords []string, resolver *schema.Resolver) []record.Record {
	if len(keywords) == 0 || len(records) == 0 {
		return records
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if len(lowered) == 0 {
		return records
	}

	scores := make([]int, len(records))
	for i, r := range records {
		scores[i] = score(record.Flatten(r), lowered, resolver)
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]record.Record, 0, len(records))
	for _, i := range idx {
		out = append(out, records[i])
	}
	if len(out) > maxRanked {
		out = out[:maxRanked]
	}
	return out
}

// score totals keyword occurrences across the whole record plus field
// bonuses for identifier, name, application, and description hits.
func score(flat record.Record, keywords []string, resolver *schema.Resolver) int {
	serialized := strings.ToLower(flat.Serialize())

	total := 0
	for _, kw := range keywords {
		total += strings.Count(serialized, kw) * occurrencePoints

		for _, fw := range fieldWeights {
			if fieldContains(flat, fw.attr, kw, resolver) {
				total += fw.points
			}
		}
	}
	return total
}

// fieldContains checks the keyword against the attribute's resolved column
// or, failing that, any synonym key present on the flattened record.
func fieldContains(flat record.Record, attr schema.Attribute, kw string, resolver *schema.Resolver) bool {
	if col, ok := resolver.Resolve(attr); ok {
		return strings.Contains(strings.ToLower(flat.GetText(col)), kw)
	}
	for _, candidate := range schema.Candidates(attr) {
		if stored, ok := flat.HasFold(candidate); ok {
			if strings.Contains(strings.ToLower(flat.GetText(stored)), kw) {
				return true
			}
		}
	}
	return false
}
