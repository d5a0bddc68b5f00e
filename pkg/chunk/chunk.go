// Package chunk defines the addressable unit of retrievable text and the
// splitters that produce it. A chunk carries enough positional metadata to
// be cited precisely: its origin, its order within that origin, and the
// character span it was cut from.
package chunk

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// SourceType identifies the kind of material a chunk was extracted from.
type SourceType string

const (
	SourceDocument SourceType = "document"
	SourceAudio    SourceType = "audio"
	SourceWeb      SourceType = "web"
	SourceYouTube  SourceType = "youtube"
)

// NoPage marks a chunk that did not come from a paginated source.
const NoPage = 0

// NoOffset marks a chunk whose character offsets are not meaningful.
const NoOffset = -1

// Chunk is an immutable unit of retrievable text.
//
// ChunkID is content-addressed: it is a pure function of the source type,
// the chunk's order within its source, and the content itself. Two chunks
// with identical type, index, and content collide by design — identity is
// not source-path-addressed. The ID is the sole external handle used for
// citation drill-down.
type Chunk struct {
	// Content is the chunk text, non-empty after trimming.
	Content string `json:"content"`

	// SourceFile is a human-readable origin label: a filename, a URL, or a
	// synthetic label for transcripts.
	SourceFile string `json:"source_file"`

	// SourceType is the kind of source the chunk came from.
	SourceType SourceType `json:"source_type"`

	// PageNumber is the 1-based page for paginated sources, NoPage otherwise.
	PageNumber int `json:"page_number,omitempty"`

	// ChunkIndex is the zero-based order of the chunk within its source.
	ChunkIndex int `json:"chunk_index"`

	// StartChar and EndChar are character offsets into the originating text,
	// NoOffset when not meaningful.
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`

	// Metadata holds source-specific extras (speaker labels, timestamps,
	// page dimensions, word counts). Opaque pass-through for this package.
	Metadata map[string]any `json:"metadata,omitempty"`

	// ChunkID is the content-derived identifier, assigned at creation.
	ChunkID string `json:"chunk_id"`
}

// Source describes where a piece of text came from, for stamping onto the
// chunks split out of it.
type Source struct {
	File       string
	Type       SourceType
	PageNumber int
	Metadata   map[string]any
}

// ID derives the deterministic chunk identifier for the given type, index,
// and content. Identical inputs always produce identical IDs.
func ID(sourceType SourceType, index int, content string) string {
	return fmt.Sprintf("%s_%d_%s", sourceType, index, hash8(content))
}

// hash8 is an 8-character hex digest of the content.
func hash8(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:8]
}

// New builds a Chunk for the given source, assigning its content-addressed
// ChunkID. The source's metadata map is copied so later splits cannot alias
// each other's entries.
func New(content string, src Source, index, startChar, endChar int) Chunk {
	var meta map[string]any
	if src.Metadata != nil {
		meta = make(map[string]any, len(src.Metadata))
		for k, v := range src.Metadata {
			meta[k] = v
		}
	}

	return Chunk{
		Content:    content,
		SourceFile: src.File,
		SourceType: src.Type,
		PageNumber: src.PageNumber,
		ChunkIndex: index,
		StartChar:  startChar,
		EndChar:    endChar,
		Metadata:   meta,
		ChunkID:    ID(src.Type, index, content),
	}
}
