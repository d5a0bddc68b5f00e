package llm

import "errors"

var (
	// ErrGeneration is returned when the model fails to produce a completion.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyResponse is returned when the model returns no content.
	ErrEmptyResponse = errors.New("empty model response")
)
