package chi

import (
	"github.com/prodex-cloud/prodex/internal/domain/record"
)

// filterOptionsSentinel in the query field short-circuits to facet
// discovery, for clients that cannot set the boolean flag.
const filterOptionsSentinel = "__GET_FILTER_OPTIONS__"

type searchRequest struct {
	Query            string       `json:"query"`
	Filters          *facetFilter `json:"filters,omitempty"`
	GetFilterOptions bool         `json:"getFilterOptions,omitempty"`
}

type facetFilter struct {
	Family        string `json:"family,omitempty"`
	ProductType   string `json:"productType,omitempty"`
	Specification string `json:"specification,omitempty"`
}

type listResponse struct {
	Success      bool            `json:"success"`
	QuestionType string          `json:"questionType"`
	Results      []record.Record `json:"results"`
	Count        int             `json:"count"`
	Message      string          `json:"message,omitempty"`
}

type comparisonResponse struct {
	Success         bool            `json:"success"`
	QuestionType    string          `json:"questionType"`
	Products        []record.Record `json:"products"`
	CompareProducts []string        `json:"compareProducts"`
	TotalFound      int             `json:"totalFound"`
}

type analyticalResponse struct {
	Success      bool            `json:"success"`
	QuestionType string          `json:"questionType"`
	Summary      string          `json:"summary"`
	Results      []record.Record `json:"results"`
	Count        int             `json:"count"`
	Message      string          `json:"message,omitempty"`
}

type extractedData struct {
	SKU      string `json:"sku"`
	Question string `json:"question"`
}

type specificResponse struct {
	Success       bool          `json:"success"`
	QuestionType  string        `json:"questionType"`
	Answer        string        `json:"answer"`
	ExtractedData extractedData `json:"extractedData"`
	FullProduct   record.Record `json:"fullProduct"`
}

type filterOptionsResponse struct {
	Success       bool          `json:"success"`
	FilterOptions filterOptions `json:"filterOptions"`
}

type filterOptions struct {
	Families       []string `json:"families"`
	ProductTypes   []string `json:"productTypes"`
	Specifications []string `json:"specifications"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
