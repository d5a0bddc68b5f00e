package rag

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

const (
	// PreviewUnavailable is returned when a chunk preview cannot be fetched.
	// Preview failure must never block answer display.
	PreviewUnavailable = "unavailable"

	// previewLimit caps how much chunk content a preview returns.
	previewLimit = 300
)

// markerPattern matches bracketed-integer reference markers like "[3]".
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// Resolve decorates every reference marker in the answer that matches a
// citation with a chunk lookup anchor, turning "[n]" into a markdown link
// "[n](#chunk-<chunkId>)". Bracketed integers with no matching citation are
// left verbatim, since they are not guaranteed to be model-generated
// citations.
func Resolve(answer string, citations []CitationRecord) string {
	if len(citations) == 0 {
		return answer
	}

	byReference := make(map[string]CitationRecord, len(citations))
	for _, c := range citations {
		byReference[c.Reference] = c
	}

	return markerPattern.ReplaceAllStringFunc(answer, func(marker string) string {
		c, ok := byReference[marker]
		if !ok {
			return marker
		}
		return marker + "(#chunk-" + c.ChunkID + ")"
	})
}

// Resolver performs chunk content lookups for citation drill-down.
type Resolver struct {
	store  vector.VectorDriver
	logger *zap.Logger
}

// NewResolver creates a resolver over the given vector store.
func NewResolver(store vector.VectorDriver, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// PreviewChunk fetches a chunk's content by ID for tooltip rendering,
// truncated to a preview length. Any lookup failure returns the
// PreviewUnavailable sentinel instead of an error.
func (r *Resolver) PreviewChunk(ctx context.Context, chunkID string) string {
	if chunkID == "" {
		return PreviewUnavailable
	}

	docs, err := r.store.Get(ctx, []string{chunkID})
	if err != nil {
		r.logger.Debug("chunk preview lookup failed",
			zap.String("chunk_id", chunkID),
			zap.Error(err),
		)
		return PreviewUnavailable
	}
	if len(docs) == 0 || strings.TrimSpace(docs[0].Content) == "" {
		return PreviewUnavailable
	}

	return truncate(docs[0].Content, previewLimit)
}
