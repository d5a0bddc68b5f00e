// Package llm provides interfaces and implementations for text generation.
package llm

import "context"

// Request describes a single completion request.
type Request struct {
	// System is the system prompt establishing behavior and constraints.
	System string

	// Prompt is the user-facing prompt, typically context plus a question.
	Prompt string

	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int
}

// Generator produces completions from a language model.
type Generator interface {
	// Complete generates a single text completion for the request.
	Complete(ctx context.Context, req Request) (string, error)

	// Model returns the name of the model producing the completions.
	Model() string

	// Close releases any resources held by the generator.
	Close() error
}
