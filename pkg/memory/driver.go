// Package memory provides a pluggable conversation memory layer.
//
// Memory drivers persist completed question/answer turns and recall the
// turns most relevant to a new query. Memory is optional: callers check for
// a configured driver at the orchestration boundary, and the retrieval core
// never depends on it.
//
// Drivers are pluggable via configuration:
//
//	[memory]
//	provider = "local"
package memory

import (
	"context"
	"time"

	"github.com/thinkbooklabs/thinkbook/pkg/rag"
)

// Turn is one completed question/answer exchange.
type Turn struct {
	// ID uniquely identifies the turn.
	ID string `json:"id"`

	// Query is the user's question as asked.
	Query string `json:"query"`

	// Answer is the generated answer with resolved citation markers.
	Answer string `json:"answer"`

	// Citations are the source records backing the answer.
	Citations []rag.CitationRecord `json:"citations,omitempty"`

	// CreatedAt is when the turn completed.
	CreatedAt time.Time `json:"created_at"`
}

// Driver handles storage and recall of conversation turns.
type Driver interface {
	// Store persists one completed turn.
	Store(ctx context.Context, turn Turn) error

	// Recall retrieves up to limit past turns relevant to the query,
	// most relevant first.
	Recall(ctx context.Context, query string, limit int) ([]Turn, error)

	// History returns all stored turns in insertion order.
	History(ctx context.Context) ([]Turn, error)

	// Close releases driver resources.
	Close() error
}
