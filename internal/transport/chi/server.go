// Package chi exposes the question pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/domain"
	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/record"
	askuc "github.com/prodex-cloud/prodex/internal/usecase/ask"
	facetsuc "github.com/prodex-cloud/prodex/internal/usecase/facets"
)

// Asker answers one question under facet constraints.
type Asker interface {
	Ask(ctx context.Context, query string, filters facet.Filter) (askuc.Response, error)
}

// OptionsProvider enumerates the available facet values.
type OptionsProvider interface {
	Options(ctx context.Context) (facetsuc.Options, error)
}

// Pinger checks catalog connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	ask     Asker
	options OptionsProvider
	pinger  Pinger
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(ask Asker, options OptionsProvider, pinger Pinger, logger *zap.Logger) *Server {
	return &Server{ask: ask, options: options, pinger: pinger, logger: logger}
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.GetFilterOptions || req.Query == filterOptionsSentinel {
		s.filterOptions(w, r)
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	filters := facet.Filter{}
	if req.Filters != nil {
		filters = facet.Filter{
			Family:        req.Filters.Family,
			ProductType:   req.Filters.ProductType,
			Specification: req.Filters.Specification,
		}
	}

	resp, err := s.ask.Ask(r.Context(), req.Query, filters)
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shapeResponse(resp))
}

func (s *Server) filterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options.Options(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filterOptionsResponse{
		Success: true,
		FilterOptions: filterOptions{
			Families:       emptyIfNil(opts.Families),
			ProductTypes:   emptyIfNil(opts.ProductTypes),
			Specifications: emptyIfNil(opts.Specifications),
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"catalog": "ok"}
	status := "ok"
	httpStatus := http.StatusOK

	if err := s.pinger.Ping(r.Context()); err != nil {
		checks["catalog"] = err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// shapeResponse maps the pipeline outcome onto its wire form.
func shapeResponse(resp askuc.Response) any {
	switch resp.Type {
	case intent.Comparison:
		return comparisonResponse{
			Success:         true,
			QuestionType:    string(intent.Comparison),
			Products:        emptyRecordsIfNil(resp.Products),
			CompareProducts: emptyIfNil(resp.CompareIDs),
			TotalFound:      resp.TotalFound,
		}
	case intent.Analytical:
		return analyticalResponse{
			Success:      true,
			QuestionType: string(intent.Analytical),
			Summary:      resp.Summary,
			Results:      emptyRecordsIfNil(resp.Results),
			Count:        resp.Count,
			Message:      resp.Message,
		}
	case intent.Specific:
		extracted := extractedData{}
		if resp.Extracted != nil {
			extracted = extractedData{SKU: resp.Extracted.SKU, Question: resp.Extracted.Question}
		}
		var product record.Record
		if resp.Product != nil {
			product = *resp.Product
		}
		return specificResponse{
			Success:       true,
			QuestionType:  string(intent.Specific),
			Answer:        resp.Answer,
			ExtractedData: extracted,
			FullProduct:   product,
		}
	default:
		return listResponse{
			Success:      true,
			QuestionType: string(intent.List),
			Results:      emptyRecordsIfNil(resp.Results),
			Count:        resp.Count,
			Message:      resp.Message,
		}
	}
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrCatalogUnavailable) {
		s.logger.Error("catalog unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyRecordsIfNil(s []record.Record) []record.Record {
	if s == nil {
		return []record.Record{}
	}
	return s
}
