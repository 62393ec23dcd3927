// Package interpret turns a free-text product question into a structured
// search intent via an LLM, degrading to an unfiltered broad search whenever
// the model or its output cannot be trusted.
package interpret

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/domain/facet"
	"github.com/prodex-cloud/prodex/internal/domain/intent"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
	"github.com/prodex-cloud/prodex/internal/llm"
)

// Config holds the interpretation model settings.
type Config struct {
	Model       string
	Temperature float64
}

// Service interprets user queries into search intents.
type Service struct {
	completer Completer
	cfg       Config
	logger    *zap.Logger
}

// New creates a query interpretation service.
func New(completer Completer, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{completer: completer, cfg: cfg, logger: logger.Named("interpret")}
}

// wire is the JSON shape the model is instructed to emit. Every field is
// optional; absent or malformed fields degrade individually.
type wire struct {
	Filters []struct {
		Column   string `json:"column"`
		Operator string `json:"operator"`
		Value    any    `json:"value"`
	} `json:"filters"`
	SearchType   string   `json:"searchType"`
	QuestionType string   `json:"questionType"`
	Limit        *int     `json:"limit"`
	OrderBy      *struct {
		Column    string `json:"column"`
		Direction string `json:"direction"`
	} `json:"orderBy"`
	Keywords        []string `json:"keywords"`
	CompareProducts []string `json:"compareProducts"`
	Extract         *struct {
		SKU      string `json:"sku"`
		Question string `json:"question"`
	} `json:"extract"`
}

// Interpret asks the model for a structured intent. It never fails: any
// provider or parse error yields the default unfiltered intent so the
// pipeline can still answer from a broad search.
func (s *Service) Interpret(
	ctx context.Context, query string, sch schema.Schema, summary string, filters facet.Filter,
) intent.Intent {
	prompt := buildPrompt(query, sch, summary, filters)

	resp, err := s.completer.Complete(ctx, llm.Request{
		Model:       s.cfg.Model,
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("interpretation request failed, using default intent", zap.Error(err))
		return intent.Default()
	}

	parsed, err := llm.ParseJSON[wire](resp.Text)
	if err != nil {
		s.logger.Warn("interpretation output unparseable, using default intent",
			zap.Error(err), zap.Int("response_len", len(resp.Text)))
		return intent.Default()
	}

	return s.toIntent(parsed)
}

// toIntent maps the wire shape onto the domain intent, field by field.
// Each malformed field falls back to its own default rather than discarding
// the whole interpretation.
func (s *Service) toIntent(w wire) intent.Intent {
	out := intent.Default()
	out.Mode = intent.ParseMode(w.SearchType)
	out.Classification = intent.ParseClassification(w.QuestionType)

	for _, f := range w.Filters {
		column := strings.TrimSpace(f.Column)
		value := strings.TrimSpace(valueText(f.Value))
		if column == "" || value == "" {
			continue
		}
		out.Clauses = append(out.Clauses, intent.Clause{
			Column:   column,
			Operator: intent.ParseOperator(f.Operator),
			Value:    value,
		})
	}

	if w.Limit != nil && *w.Limit > 0 {
		out.Limit = *w.Limit
	}

	if w.OrderBy != nil && strings.TrimSpace(w.OrderBy.Column) != "" {
		out.Ordering = &intent.Ordering{
			Column: strings.TrimSpace(w.OrderBy.Column),
			Desc:   strings.EqualFold(strings.TrimSpace(w.OrderBy.Direction), "desc"),
		}
	}

	for _, kw := range w.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out.Keywords = append(out.Keywords, kw)
		}
	}

	for _, id := range w.CompareProducts {
		if id = strings.TrimSpace(id); id != "" {
			out.CompareIDs = append(out.CompareIDs, id)
		}
	}

	if w.Extract != nil {
		sku := strings.TrimSpace(w.Extract.SKU)
		question := strings.TrimSpace(w.Extract.Question)
		if sku != "" || question != "" {
			out.Extract = &intent.Extract{SKU: sku, Question: question}
		}
	}

	return out
}

// valueText renders a filter value that the model may emit as a string,
// number, or boolean.
func valueText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
