package chunk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is returned for malformed size/overlap parameters.
	ErrInvalidConfig = errors.New("invalid chunking configuration")
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters carried between
	// adjacent chunks.
	DefaultChunkOverlap = 200

	// boundaryThreshold is the fraction of the window a sentence or line
	// boundary must lie past for the right edge to snap to it. Tunable;
	// 0.5 keeps snapped chunks from degenerating into tiny fragments.
	boundaryThreshold = 0.5

	// paragraphThreshold is the looser fraction used for paragraph breaks
	// when splitting markdown-ish web content.
	paragraphThreshold = 0.3
)

// Splitter cuts raw text into bounded-length chunks using a sliding window
// with boundary-aware right edges.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter validates the window parameters and returns a Splitter.
// chunkSize must be positive and chunkOverlap must satisfy
// 0 <= chunkOverlap < chunkSize.
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidConfig, chunkOverlap, chunkSize)
	}

	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// ChunkSize returns the configured window length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap length.
func (s *Splitter) ChunkOverlap() int { return s.chunkOverlap }

// Split scans text in windows of the configured size, snapping each window's
// right edge back to the last sentence period or newline when one lands past
// the boundary threshold. Empty or whitespace-only text yields no chunks.
//
// Windows are measured in runes, not bytes, so multi-byte text is never cut
// mid-character and StartChar/EndChar are character offsets.
//
// The next window start advances by at least chunkSize-chunkOverlap per
// iteration, so splitting always terminates and emits at most
// ceil(runeCount/(chunkSize-chunkOverlap)) chunks.
func (s *Splitter) Split(text string, src Source) []Chunk {
	return s.split(text, src, s.snapSentence)
}

// SplitParagraphs is the variant used for scraped web content: it prefers
// paragraph breaks (blank lines) at a looser threshold before falling back
// to sentence boundaries.
func (s *Splitter) SplitParagraphs(text string, src Source) []Chunk {
	return s.split(text, src, s.snapParagraph)
}

// snapFunc inspects the window [start, end) and returns a possibly earlier
// right edge, or end unchanged when no acceptable boundary exists.
type snapFunc func(runes []rune, start, end int) int

func (s *Splitter) split(text string, src Source, snap snapFunc) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []Chunk
	start := 0
	index := 0

	for start < len(runes) {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		// Only snap when the window edge falls inside the text; the final
		// window keeps everything that remains.
		if end < len(runes) {
			end = snap(runes, start, end)
		}

		if content := strings.TrimSpace(string(runes[start:end])); content != "" {
			chunks = append(chunks, New(content, src, index, start, end-1))
			index++
		}

		// Forward progress even when snapping shortened the slice.
		next := start + s.chunkSize - s.chunkOverlap
		if end > next {
			next = end
		}
		start = next
	}

	return chunks
}

// snapSentence moves the right edge to just after the last period or newline
// in the window, provided that boundary lies past half the window.
func (s *Splitter) snapSentence(runes []rune, start, end int) int {
	boundary := -1
	for i := end - 1; i >= start; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			boundary = i - start
			break
		}
	}

	if boundary > int(float64(s.chunkSize)*boundaryThreshold) {
		return start + boundary + 1
	}
	return end
}

// snapParagraph prefers a blank-line break past 30% of the window, then a
// sentence period past 50%.
func (s *Splitter) snapParagraph(runes []rune, start, end int) int {
	for i := end - 2; i >= start; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			if para := i - start; para > int(float64(s.chunkSize)*paragraphThreshold) {
				return start + para + 2
			}
			break
		}
	}

	for i := end - 1; i >= start; i-- {
		if runes[i] == '.' {
			if period := i - start; period > int(float64(s.chunkSize)*boundaryThreshold) {
				return start + period + 1
			}
			break
		}
	}
	return end
}
