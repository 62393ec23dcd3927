package record

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/prodex-cloud/prodex/internal/domain/textnorm"
)

// Internal columns never surfaced to callers: the raw attribute bag (merged
// during flattening) and embedding vectors.
var internalColumns = map[string]struct{}{
	"attributes": {},
	"embedding":  {},
	"vector":     {},
}

// IsInternal reports whether a top-level column is internal-only, never
// surfaced to callers nor offered for filtering.
func IsInternal(column string) bool {
	_, ok := internalColumns[strings.ToLower(column)]
	return ok
}

// AttributeBagColumn is the column holding the nested attribute bag,
// stored either as a JSON-encoded string or an already-parsed object.
const AttributeBagColumn = "attributes"

// Flatten merges a record's top-level columns with its parsed attribute bag
// into one flat record. Internal columns are excluded, string values are
// normalized to plaintext, empty values are dropped, and duplicate keys are
// deduplicated case-insensitively with the top level winning (first seen).
func Flatten(r Record) Record {
	flat := New()
	seen := make(map[string]struct{}, r.Len())

	add := func(key string, v Value) {
		lower := strings.ToLower(key)
		if _, dup := seen[lower]; dup {
			return
		}
		if v.Kind() == KindString {
			v = String(textnorm.Clean(v.Str()))
		}
		if v.IsEmpty() {
			return
		}
		seen[lower] = struct{}{}
		flat.Set(key, v)
	}

	for _, key := range r.Keys() {
		if _, internal := internalColumns[strings.ToLower(key)]; internal {
			continue
		}
		v, _ := r.Get(key)
		add(key, v)
	}

	bag := parseAttributeBag(r)
	bagKeys := make([]string, 0, len(bag))
	for k := range bag {
		bagKeys = append(bagKeys, k)
	}
	sort.Strings(bagKeys)
	for _, key := range bagKeys {
		add(key, bag[key])
	}

	return flat
}

// parseAttributeBag extracts the nested attribute bag. A malformed bag is
// swallowed: the record still flattens from its top-level columns alone.
func parseAttributeBag(r Record) map[string]Value {
	raw, ok := r.Get(AttributeBagColumn)
	if !ok {
		return nil
	}

	switch raw.Kind() {
	case KindObject:
		return raw.Obj()
	case KindString:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw.Str()), &decoded); err != nil {
			return nil
		}
		bag := make(map[string]Value, len(decoded))
		for k, v := range decoded {
			if val, ok := FromAny(v); ok {
				bag[k] = val
			}
		}
		return bag
	default:
		return nil
	}
}
