// Package transcribe provides interfaces and implementations for audio transcription.
package transcribe

import (
	"context"
	"errors"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
)

var (
	// ErrTranscription is returned when the transcription provider fails.
	ErrTranscription = errors.New("transcription failed")

	// ErrUpload is returned when the audio file cannot be uploaded.
	ErrUpload = errors.New("audio upload failed")
)

// Transcript is the result of transcribing one audio file.
type Transcript struct {
	// ID is the provider's identifier for the transcription job.
	ID string

	// Text is the full transcript without speaker labels.
	Text string

	// Utterances are the diarized speech spans in playback order.
	Utterances []chunk.Utterance

	// DurationSeconds is the length of the source audio.
	DurationSeconds float64

	// Confidence is the provider's overall confidence, 0 to 1.
	Confidence float64

	// AudioURL is where the provider stored the uploaded audio.
	AudioURL string
}

// Transcriber converts audio files to diarized transcripts.
type Transcriber interface {
	// Transcribe uploads and transcribes the audio file at path.
	// It blocks until the transcript is ready or ctx is done.
	Transcribe(ctx context.Context, path string) (*Transcript, error)

	// Close releases any resources held by the transcriber.
	Close() error
}
