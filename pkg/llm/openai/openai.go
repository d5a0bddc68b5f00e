// Package openai implements pkg/llm's Generator client for OpenAI's chat API
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/thinkbooklabs/thinkbook/pkg/llm"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"
)

// Generator wraps OpenAI's chat completions API.
type Generator struct {
	client openai.Client
	model  string
}

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey is the OpenAI API key. Falls back to OPENAI_API_KEY if empty.
	APIKey string

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string
}

// NewGenerator creates a new generator using OpenAI's chat completions API.
func NewGenerator(cfg Config) (*Generator, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Generator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Complete generates a single text completion for the request.
func (g *Generator) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrGeneration, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured chat model name.
func (g *Generator) Model() string {
	return g.model
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)
