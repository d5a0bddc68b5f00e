// Package openai implements pkg/tts's Synthesizer client for OpenAI's speech API
package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/thinkbooklabs/thinkbook/pkg/tts"
)

const (
	// DefaultModel is the default speech model.
	DefaultModel = "tts-1"

	// DefaultVoice is used when the caller does not name one.
	DefaultVoice = "alloy"
)

// Synthesizer wraps OpenAI's speech API.
type Synthesizer struct {
	client openai.Client
	model  string
}

// Config holds configuration for the OpenAI synthesizer.
type Config struct {
	// APIKey is the OpenAI API key. Falls back to OPENAI_API_KEY if empty.
	APIKey string

	// BaseURL overrides the API endpoint for OpenAI-compatible servers.
	BaseURL string

	// Model is the speech model to use. Defaults to DefaultModel if empty.
	Model string
}

// NewSynthesizer creates a new synthesizer using OpenAI's speech API.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
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

	return &Synthesizer{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Synthesize renders the text as a PCM WAV file using the given voice.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = DefaultVoice
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrSynthesis, err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audio: %v", tts.ErrSynthesis, err)
	}

	return audio, nil
}

// Close releases resources held by the synthesizer.
func (s *Synthesizer) Close() error {
	return nil
}

// Ensure Synthesizer implements tts.Synthesizer
var _ tts.Synthesizer = (*Synthesizer)(nil)
