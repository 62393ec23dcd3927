package ask

import (
	"strings"
	"unicode"

	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// alignCompareTargets picks exactly two records for a comparison: for each
// requested identifier, the first not-yet-chosen record whose serialized
// form contains it after normalization. Unmatched slots fill with the
// earliest remaining records. Callers guarantee at least two records.
func alignCompareTargets(ids []string, records []record.Record) []record.Record {
	chosen := make(map[int]bool)
	var picks []int

	for _, id := range ids {
		if len(picks) == 2 {
			break
		}
		if idx, ok := findByIdentifier(id, records, chosen); ok {
			chosen[idx] = true
			picks = append(picks, idx)
		}
	}

	for i := 0; len(picks) < 2 && i < len(records); i++ {
		if !chosen[i] {
			chosen[i] = true
			picks = append(picks, i)
		}
	}

	out := make([]record.Record, 0, 2)
	for _, idx := range picks {
		out = append(out, records[idx])
	}
	return out
}

// findByIdentifier locates the first record not in skip whose serialized
// form contains the identifier, comparing case-insensitively with
// whitespace and hyphens removed from both sides.
func findByIdentifier(id string, records []record.Record, skip map[int]bool) (int, bool) {
	want := normalizeID(id)
	if want == "" {
		return 0, false
	}
	for i, r := range records {
		if skip[i] {
			continue
		}
		if strings.Contains(normalizeID(r.Serialize()), want) {
			return i, true
		}
	}
	return 0, false
}

func normalizeID(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
