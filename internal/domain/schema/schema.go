// Package schema models the discovered column set of a catalog and resolves
// logical attributes to whichever physically-present column encodes them.
package schema

import "strings"

// Schema is the set of column names discovered from sampled rows,
// in discovery order.
type Schema struct {
	columns []string
	lower   map[string]string // lowercase -> stored casing
}

// New creates a schema from discovered column names, deduplicating
// case-insensitively and preserving first-seen order and casing.
func New(columns []string) Schema {
	s := Schema{lower: make(map[string]string, len(columns))}
	for _, c := range columns {
		key := strings.ToLower(c)
		if _, seen := s.lower[key]; seen {
			continue
		}
		s.lower[key] = c
		s.columns = append(s.columns, c)
	}
	return s
}

// Columns returns column names in discovery order.
func (s Schema) Columns() []string { return s.columns }

// IsEmpty reports whether no columns were discovered.
func (s Schema) IsEmpty() bool { return len(s.columns) == 0 }

// Has reports whether a column exists, compared case-insensitively.
func (s Schema) Has(column string) bool {
	_, ok := s.lower[strings.ToLower(column)]
	return ok
}

// Canonical returns the stored casing for a column name, case-insensitively.
func (s Schema) Canonical(column string) (string, bool) {
	c, ok := s.lower[strings.ToLower(column)]
	return c, ok
}
