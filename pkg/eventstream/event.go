package eventstream

import (
	"time"

	"github.com/thinkbooklabs/thinkbook/pkg/rag"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSourceIngested is emitted after a source is chunked and indexed.
	EventTypeSourceIngested = "thinkbook.source.ingested"

	// EventTypeTurnCompleted is emitted after an answer turn resolves.
	EventTypeTurnCompleted = "thinkbook.turn.completed"
)

// SourceIngestedEvent is a transport-neutral event payload for an indexed source.
type SourceIngestedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	SessionID     string    `json:"session_id"`
	SourceFile    string    `json:"source_file"`
	SourceType    string    `json:"source_type"`
	ChunkCount    int       `json:"chunk_count"`
}

// TurnCompletedEvent is a transport-neutral event payload for a completed
// question/answer turn.
type TurnCompletedEvent struct {
	SchemaVersion int                  `json:"schema_version"`
	EventType     string               `json:"event_type"`
	EventID       string               `json:"event_id"`
	EmittedAt     time.Time            `json:"emitted_at"`
	SessionID     string               `json:"session_id"`
	Query         string               `json:"query"`
	Answer        string               `json:"answer"`
	Citations     []rag.CitationRecord `json:"citations,omitempty"`
	RetrievalHits int                  `json:"retrieval_hits"`
	DurationMs    int64                `json:"duration_ms"`
}
