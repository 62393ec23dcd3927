package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/domain"
	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	askuc "github.com/prodex-cloud/prodex/internal/usecase/ask"
	facetsuc "github.com/prodex-cloud/prodex/internal/usecase/facets"
)

// --- Mocks ---

type mockAsker struct {
	resp        askuc.Response
	err         error
	lastQuery   string
	lastFilters facet.Filter
}

func (m *mockAsker) Ask(_ context.Context, query string, filters facet.Filter) (askuc.Response, error) {
	m.lastQuery = query
	m.lastFilters = filters
	return m.resp, m.err
}

type mockOptions struct {
	opts facetsuc.Options
	err  error
}

func (m *mockOptions) Options(_ context.Context) (facetsuc.Options, error) {
	return m.opts, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestServer(ask *mockAsker, options *mockOptions, pinger *mockPinger) *Server {
	if ask == nil {
		ask = &mockAsker{}
	}
	if options == nil {
		options = &mockOptions{}
	}
	if pinger == nil {
		pinger = &mockPinger{}
	}
	return NewServer(ask, options, pinger, zap.NewNop())
}

func doSearch(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/search", strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.Search(rr, req)
	return rr
}

func row(m map[string]any) record.Record { return record.FromMap(m) }

// --- Tests ---

func TestSearch_ListResponse(t *testing.T) {
	ask := &mockAsker{resp: askuc.Response{
		Type:    intent.List,
		Results: []record.Record{row(map[string]any{"sku": "A-100"})},
		Count:   1,
	}}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "relays", "filters": {"family": "ProLine"}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ask.lastQuery != "relays" || ask.lastFilters.Family != "ProLine" {
		t.Errorf("ask called with query=%q filters=%+v", ask.lastQuery, ask.lastFilters)
	}

	var resp struct {
		Success      bool             `json:"success"`
		QuestionType string           `json:"questionType"`
		Results      []map[string]any `json:"results"`
		Count        int              `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.QuestionType != "list" || resp.Count != 1 {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0]["sku"] != "A-100" {
		t.Errorf("results = %v", resp.Results)
	}
}

func TestSearch_EmptyListSerializesAsArray(t *testing.T) {
	ask := &mockAsker{resp: askuc.Response{Type: intent.List, Message: "nothing found"}}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "nothing"}`)

	body := rr.Body.String()
	if !strings.Contains(body, `"results":[]`) {
		t.Errorf("empty results must serialize as [], got:\n%s", body)
	}
	if !strings.Contains(body, `"message":"nothing found"`) {
		t.Errorf("guidance message missing:\n%s", body)
	}
}

func TestSearch_ComparisonResponse(t *testing.T) {
	ask := &mockAsker{resp: askuc.Response{
		Type: intent.Comparison,
		Products: []record.Record{
			row(map[string]any{"sku": "A-100"}),
			row(map[string]any{"sku": "B-200"}),
		},
		CompareIDs: []string{"A-100", "B-200"},
		TotalFound: 7,
	}}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "compare A-100 and B-200"}`)

	var resp struct {
		QuestionType    string           `json:"questionType"`
		Products        []map[string]any `json:"products"`
		CompareProducts []string         `json:"compareProducts"`
		TotalFound      int              `json:"totalFound"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.QuestionType != "comparison" || len(resp.Products) != 2 || resp.TotalFound != 7 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearch_AnalyticalResponse(t *testing.T) {
	ask := &mockAsker{resp: askuc.Response{
		Type:    intent.Analytical,
		Summary: "B-200 fits best.",
		Results: []record.Record{row(map[string]any{"sku": "B-200"})},
		Count:   1,
	}}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "which fits best?"}`)

	var resp struct {
		QuestionType string `json:"questionType"`
		Summary      string `json:"summary"`
		Count        int    `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.QuestionType != "analytical" || resp.Summary == "" || resp.Count != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearch_SpecificResponse(t *testing.T) {
	product := row(map[string]any{"sku": "A-100", "temp": "-55C"})
	ask := &mockAsker{resp: askuc.Response{
		Type:      intent.Specific,
		Answer:    "-55C",
		Extracted: &intent.Extract{SKU: "A-100", Question: "temperature"},
		Product:   &product,
	}}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "temp of A-100?"}`)

	var resp struct {
		QuestionType  string `json:"questionType"`
		Answer        string `json:"answer"`
		ExtractedData struct {
			SKU      string `json:"sku"`
			Question string `json:"question"`
		} `json:"extractedData"`
		FullProduct map[string]any `json:"fullProduct"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.QuestionType != "specific" || resp.Answer != "-55C" {
		t.Errorf("response = %+v", resp)
	}
	if resp.ExtractedData.SKU != "A-100" || resp.FullProduct["sku"] != "A-100" {
		t.Errorf("extracted = %+v, product = %v", resp.ExtractedData, resp.FullProduct)
	}
}

func TestSearch_FilterOptionsSentinel(t *testing.T) {
	options := &mockOptions{opts: facetsuc.Options{
		Families:     []string{"EcoLine", "ProLine"},
		ProductTypes: []string{"Valve"},
	}}
	s := newTestServer(nil, options, nil)

	for _, body := range []string{
		`{"query": "__GET_FILTER_OPTIONS__"}`,
		`{"getFilterOptions": true}`,
	} {
		rr := doSearch(t, s, body)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		var resp struct {
			Success       bool `json:"success"`
			FilterOptions struct {
				Families       []string `json:"families"`
				ProductTypes   []string `json:"productTypes"`
				Specifications []string `json:"specifications"`
			} `json:"filterOptions"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Success || len(resp.FilterOptions.Families) != 2 {
			t.Errorf("response = %+v", resp)
		}
		if resp.FilterOptions.Specifications == nil {
			t.Error("empty option list must serialize as [], not null")
		}
	}
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rr := doSearch(t, s, `{"query": ""}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSearch_MalformedBodyRejected(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rr := doSearch(t, s, `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("error response = %+v", resp)
	}
}

func TestSearch_CatalogUnavailable503(t *testing.T) {
	ask := &mockAsker{err: domain.ErrCatalogUnavailable}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "anything"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestSearch_PipelineError500(t *testing.T) {
	ask := &mockAsker{err: errors.New("query failed")}
	s := newTestServer(ask, nil, nil)

	rr := doSearch(t, s, `{"query": "anything"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(nil, nil, &mockPinger{})

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	s.HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}

	s = newTestServer(nil, nil, &mockPinger{err: errors.New("connection refused")})
	rr = httptest.NewRecorder()
	s.HealthCheck(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d, want 503", rr.Code)
	}
}
