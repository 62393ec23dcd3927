package ask

import (
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// Response is the shaped outcome of one question. Type selects which
// fields are meaningful; transport maps each shape onto its wire form.
type Response struct {
	Type intent.Classification

	// List and analytical shapes.
	Results []record.Record
	Count   int
	// Message carries user-facing guidance (empty results, fallback hits).
	Message string

	// Analytical shape.
	Summary string

	// Comparison shape: exactly two products plus the identifiers the
	// user asked about and the total match count before isolation.
	Products   []record.Record
	CompareIDs []string
	TotalFound int

	// Specific shape.
	Answer    string
	Extracted *intent.Extract
	Product   *record.Record
}
