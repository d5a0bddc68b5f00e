package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

// SearchHit is one ranked result from a vector index query.
type SearchHit struct {
	ChunkID    string
	Score      float64
	Content    string
	SourceFile string
	SourceType string
	PageNumber int
	StartChar  int
	EndChar    int
	Metadata   map[string]any
}

// Retriever issues query-vector searches against a vector store and returns
// ranked hits, best match first.
type Retriever struct {
	store  vector.VectorDriver
	logger *zap.Logger
}

// NewRetriever creates a retriever over the given vector store.
func NewRetriever(store vector.VectorDriver, logger *zap.Logger) *Retriever {
	return &Retriever{
		store:  store,
		logger: logger,
	}
}

// Search returns up to limit hits ordered by ascending distance. An empty
// result is a valid outcome, not an error.
func (r *Retriever) Search(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error) {
	results, err := r.store.Query(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, SearchHit{
			ChunkID:    res.ID,
			Score:      res.Score,
			Content:    res.Content,
			SourceFile: res.SourceFile,
			SourceType: res.SourceType,
			PageNumber: res.PageNumber,
			StartChar:  res.StartChar,
			EndChar:    res.EndChar,
			Metadata:   res.Metadata,
		})
	}

	r.logger.Debug("retrieved hits",
		zap.Int("count", len(hits)),
		zap.Int("limit", limit),
	)

	return hits, nil
}
