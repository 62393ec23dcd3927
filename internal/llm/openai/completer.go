// Package openai is a completion provider using the OpenAI-compatible chat
// API (OpenAI itself or any compatible gateway).
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prodex-cloud/prodex/internal/llm"
	"github.com/prodex-cloud/prodex/internal/metrics"
)

// Completer implements llm.Completer over go-openai.
type Completer struct {
	client       *openai.Client
	defaultModel string
	provider     string
	logger       *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// New creates an OpenAI-compatible completion provider.
func New(cfg *Config) (*Completer, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.Model,
		provider:     "openai",
		logger:       logger.Named("llm.openai"),
	}, nil
}

// Complete implements llm.Completer with transport-level metrics.
func (c *Completer) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	c.logger.Debug("completion request",
		zap.String("model", model),
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Float64("temperature", req.Temperature))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, "api_error").Inc()
		return llm.Response{}, llm.ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, model, "empty_response").Inc()
		return llm.Response{}, llm.ClassifyError(fmt.Errorf("no choices in response"))
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())
	metrics.CompletionTokensTotal.WithLabelValues(c.provider, model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.CompletionTokensTotal.WithLabelValues(c.provider, model, "completion").Add(float64(resp.Usage.CompletionTokens))

	c.logger.Info("completion request completed",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", duration))

	return llm.Response{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
