package rag

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxChunks caps how many hits are admitted into one context.
	DefaultMaxChunks = 8

	// DefaultMaxContextChars is the character budget for assembled context.
	DefaultMaxContextChars = 4000

	// contextSeparator joins admitted chunk bodies in the context text.
	contextSeparator = "\n\n"
)

// CitationRecord binds one inline reference marker to its source chunk.
type CitationRecord struct {
	Reference      string  `json:"reference"`
	SourceFile     string  `json:"source_file"`
	SourceType     string  `json:"source_type"`
	PageNumber     int     `json:"page_number,omitempty"`
	ChunkID        string  `json:"chunk_id"`
	RelevanceScore float64 `json:"relevance_score"`
}

// AssembledContext is a citation-annotated prompt section built from ranked hits.
type AssembledContext struct {
	Text      string           `json:"text"`
	Citations []CitationRecord `json:"citations"`
}

// Assemble packs ranked hits into a bounded context. Hits are admitted in
// order up to maxChunks; each is tagged "[n] content" with a 1-based
// reference. Before admitting a chunk the joined-text length is checked
// against maxContextChars, and packing stops once the budget would be
// exceeded, except that the first chunk is always admitted so the context
// is never empty when hits exist.
func Assemble(hits []SearchHit, maxChunks, maxContextChars int) AssembledContext {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}

	var parts []string
	var citations []CitationRecord
	total := 0

	for i, hit := range hits {
		if i >= maxChunks {
			break
		}

		reference := fmt.Sprintf("[%d]", len(parts)+1)
		part := reference + " " + hit.Content

		candidate := total + len(part)
		if len(parts) > 0 {
			candidate += len(contextSeparator)
		}
		if candidate > maxContextChars && len(parts) > 0 {
			break
		}

		parts = append(parts, part)
		total = candidate

		citations = append(citations, CitationRecord{
			Reference:      reference,
			SourceFile:     hit.SourceFile,
			SourceType:     hit.SourceType,
			PageNumber:     hit.PageNumber,
			ChunkID:        hit.ChunkID,
			RelevanceScore: hit.Score,
		})
	}

	return AssembledContext{
		Text:      strings.Join(parts, contextSeparator),
		Citations: citations,
	}
}
