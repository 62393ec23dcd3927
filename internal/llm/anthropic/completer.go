// Package anthropic is a completion provider using the Anthropic Messages
// API.
package anthropic

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/llm"
	"github.com/prodex-cloud/prodex/internal/metrics"
)

// defaultMaxTokens bounds generation when the request does not.
const defaultMaxTokens = 2000

// Completer implements llm.Completer over go-anthropic.
type Completer struct {
	client       *anthropic.Client
	defaultModel string
	provider     string
	logger       *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

// New creates an Anthropic completion provider.
func New(cfg *Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:       anthropic.NewClient(cfg.APIKey),
		defaultModel: cfg.Model,
		provider:     "anthropic",
		logger:       logger.Named("llm.anthropic"),
	}, nil
}

// Complete implements llm.Completer with transport-level metrics.
func (c *Completer) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	msgReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		temperature := float32(req.Temperature)
		msgReq.Temperature = &temperature
	}

	c.logger.Debug("completion request",
		zap.String("model", model),
		zap.Int("prompt_len", len(req.Prompt)))

	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, msgReq)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, "api_error").Inc()
		return llm.Response{}, llm.ClassifyError(err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, "empty_response").Inc()
		return llm.Response{}, llm.ClassifyError(fmt.Errorf("no content in response"))
	}

	inputTokens := resp.Usage.InputTokens
	outputTokens := resp.Usage.OutputTokens

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())
	metrics.CompletionTokensTotal.WithLabelValues(c.provider, model, "prompt").Add(float64(inputTokens))
	metrics.CompletionTokensTotal.WithLabelValues(c.provider, model, "completion").Add(float64(outputTokens))

	c.logger.Info("completion request completed",
		zap.String("model", model),
		zap.Int("input_tokens", inputTokens),
		zap.Int("output_tokens", outputTokens),
		zap.Duration("elapsed", duration))

	return llm.Response{
		Text:             text,
		PromptTokens:     inputTokens,
		CompletionTokens: outputTokens,
		TotalTokens:      inputTokens + outputTokens,
	}, nil
}
