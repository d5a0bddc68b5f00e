// Package vector provides interfaces and implementations for vector storage.
package vector

import "context"

// Document represents a stored chunk with its embedding and retrieval payload.
type Document struct {
	// ID is the content-addressed chunk identifier.
	ID string

	// Content is the chunk text that gets assembled into answer context.
	Content string

	// SourceFile is the originating file name or URL.
	SourceFile string

	// SourceType categorizes the source ("document", "audio", "web", "youtube").
	SourceType string

	// PageNumber is the 1-based page for paginated sources, 0 otherwise.
	PageNumber int

	// ChunkIndex is the chunk's position within its source.
	ChunkIndex int

	// StartChar and EndChar are character offsets into the source text,
	// or -1 when offsets do not apply.
	StartChar int
	EndChar   int

	// Metadata holds source-specific extras (speakers, timestamps, titles).
	Metadata map[string]any

	// EmbeddingModel records which model produced the embedding.
	EmbeddingModel string

	// Embedding is the vector representation of the chunk content.
	Embedding []float32
}

// QueryResult represents a search result with its distance from the query.
type QueryResult struct {
	Document

	// Score is the raw distance reported by the store (lower = closer).
	Score float64
}

// VectorDriver handles storage and retrieval of chunk embeddings.
type VectorDriver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK nearest documents to the given embedding,
	// ordered by ascending distance.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Drop removes the entire collection and every document in it.
	Drop(ctx context.Context) error

	// Close releases any resources held by the driver.
	Close() error
}
