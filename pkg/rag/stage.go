// Package rag implements retrieval-augmented answering with citation tracking.
package rag

import (
	"errors"
	"fmt"
)

// Stage names a step in the answer pipeline's state machine:
// QueryReceived -> Embedded -> Retrieved -> Assembled -> Generated -> Resolved.
type Stage string

const (
	StageQueryReceived Stage = "query_received"
	StageEmbedded      Stage = "embedded"
	StageRetrieved     Stage = "retrieved"
	StageAssembled     Stage = "assembled"
	StageGenerated     Stage = "generated"
	StageResolved      Stage = "resolved"
)

var (
	// ErrEmptyQuery is returned when a query is blank after trimming.
	ErrEmptyQuery = errors.New("empty query")

	// ErrRetrieval is returned when the vector index search fails.
	ErrRetrieval = errors.New("retrieval failed")
)

// StageError wraps a collaborator failure with the stage the pipeline could
// not complete, so callers can present a stage-specific message.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the failed stage from an error, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
