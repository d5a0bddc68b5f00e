// Package ingest turns source material into embedded chunks in a vector store.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
	"github.com/thinkbooklabs/thinkbook/pkg/embeddings"
	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

// embedBatchSize bounds how many chunk bodies go to the embedder per call.
const embedBatchSize = 64

// Config holds the collaborators and chunking parameters for an Ingestor.
type Config struct {
	// Embedder converts chunk content into vectors.
	Embedder embeddings.Embedder

	// Store receives the embedded chunks.
	Store vector.VectorDriver

	// ChunkSize is the target chunk length in characters.
	// Defaults to chunk.DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the character overlap between adjacent chunks.
	// Defaults to chunk.DefaultChunkOverlap if zero.
	ChunkOverlap int
}

// Ingestor chunks, embeds, and stores source material.
type Ingestor struct {
	splitter *chunk.Splitter
	embedder embeddings.Embedder
	store    vector.VectorDriver
	logger   *zap.Logger
}

// NewIngestor creates an ingestor from the given collaborators.
func NewIngestor(c Config, logger *zap.Logger) (*Ingestor, error) {
	if c.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if c.Store == nil {
		return nil, fmt.Errorf("vector store is required")
	}

	size := c.ChunkSize
	if size == 0 {
		size = chunk.DefaultChunkSize
	}
	overlap := c.ChunkOverlap
	if overlap == 0 && c.ChunkSize == 0 {
		overlap = chunk.DefaultChunkOverlap
	}

	splitter, err := chunk.NewSplitter(size, overlap)
	if err != nil {
		return nil, err
	}

	return &Ingestor{
		splitter: splitter,
		embedder: c.Embedder,
		store:    c.Store,
		logger:   logger,
	}, nil
}

// DocumentFromChunk converts a chunk into its vector store payload.
func DocumentFromChunk(c chunk.Chunk, embedding []float32, model string) vector.Document {
	return vector.Document{
		ID:             c.ChunkID,
		Content:        c.Content,
		SourceFile:     c.SourceFile,
		SourceType:     string(c.SourceType),
		PageNumber:     c.PageNumber,
		ChunkIndex:     c.ChunkIndex,
		StartChar:      c.StartChar,
		EndChar:        c.EndChar,
		Metadata:       c.Metadata,
		EmbeddingModel: model,
		Embedding:      embedding,
	}
}

// IngestChunks embeds the chunks in batches and upserts them into the store.
// Returns the number of chunks stored.
func (g *Ingestor) IngestChunks(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	model := g.embedder.Model()

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		embs, err := g.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding batch: %w", err)
		}

		docs := make([]vector.Document, len(batch))
		for i, c := range batch {
			docs[i] = DocumentFromChunk(c, embs[i], model)
		}

		if err := g.store.Add(ctx, docs); err != nil {
			return 0, fmt.Errorf("storing batch: %w", err)
		}
	}

	g.logger.Info("ingested chunks",
		zap.Int("count", len(chunks)),
	)

	return len(chunks), nil
}

// IngestText chunks plain text with sentence-boundary snapping and stores it.
func (g *Ingestor) IngestText(ctx context.Context, text string, src chunk.Source) (int, error) {
	return g.IngestChunks(ctx, g.splitter.Split(text, src))
}

// IngestWebPage chunks scraped page text, preferring paragraph boundaries.
func (g *Ingestor) IngestWebPage(ctx context.Context, text, url string, metadata map[string]any) (int, error) {
	src := chunk.Source{
		File:     url,
		Type:     chunk.SourceWeb,
		Metadata: metadata,
	}
	return g.IngestChunks(ctx, g.splitter.SplitParagraphs(text, src))
}

// IngestTranscript chunks diarized utterances with speaker metadata.
func (g *Ingestor) IngestTranscript(ctx context.Context, utterances []chunk.Utterance, label string) (int, error) {
	src := chunk.Source{
		File: label,
		Type: chunk.SourceAudio,
	}
	return g.IngestChunks(ctx, g.splitter.SplitTranscript(utterances, src))
}

// IngestYouTube stores one chunk per caption utterance, recording the
// utterance's millisecond offsets as its character span.
func (g *Ingestor) IngestYouTube(ctx context.Context, utterances []chunk.Utterance, videoURL string, metadata map[string]any) (int, error) {
	chunks := make([]chunk.Chunk, 0, len(utterances))
	for _, u := range utterances {
		if u.Text == "" {
			continue
		}
		src := chunk.Source{
			File:     videoURL,
			Type:     chunk.SourceYouTube,
			Metadata: metadata,
		}
		c := chunk.New(u.Text, src, len(chunks), u.Start, u.End)
		if c.Metadata == nil {
			c.Metadata = make(map[string]any, 2)
		}
		c.Metadata["start_ms"] = u.Start
		c.Metadata["end_ms"] = u.End
		chunks = append(chunks, c)
	}
	return g.IngestChunks(ctx, chunks)
}
