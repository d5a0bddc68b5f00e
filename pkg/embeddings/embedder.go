// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts into vector embeddings in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the name of the model producing the embeddings.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}
