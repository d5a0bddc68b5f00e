// Package tts provides interfaces and implementations for speech synthesis.
package tts

import (
	"context"
	"errors"
)

var (
	// ErrSynthesis is returned when the speech provider fails.
	ErrSynthesis = errors.New("speech synthesis failed")

	// ErrInvalidWAV is returned when audio data is not a usable PCM WAV file.
	ErrInvalidWAV = errors.New("invalid wav data")
)

// Synthesizer converts text to spoken audio.
type Synthesizer interface {
	// Synthesize renders the text as a PCM WAV file using the given voice.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}
