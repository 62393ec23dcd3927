// Package llm defines the text-completion contract shared by the query
// interpreter and the answer synthesizer, plus helpers for classifying
// provider errors and extracting structured JSON from model output.
package llm

import "context"

// Request is a role-structured completion request.
type Request struct {
	// Model overrides the provider's default model when non-empty.
	Model string
	// System is the system message framing the task.
	System string
	// Prompt is the user message.
	Prompt string
	// Temperature controls sampling; 0 keeps provider defaults low.
	Temperature float64
	// MaxTokens caps the generated output length; 0 uses the provider default.
	MaxTokens int
}

// Response carries generated text plus usage accounting.
type Response struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer is the text-completion service contract.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
