package chunk

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Utterance is one diarized span of speech from a transcription provider.
// Start and End are offsets in milliseconds from the beginning of the audio.
type Utterance struct {
	Speaker    string
	Start      int
	End        int
	Text       string
	Confidence float64
}

// Label returns the display label used for the utterance's speaker.
func (u Utterance) Label() string {
	return "Speaker " + u.Speaker
}

// SplitTranscript is the speaker-segmented variant of Split: it accumulates
// speaker-tagged utterance lines until the accumulated text would exceed the
// chunk size, closes the chunk, and carries the last chunkOverlap characters
// forward as a prefix for the next one. Each chunk records the set of
// distinct speakers and the first/last utterance timestamps in its metadata.
// An utterance is never split across two chunks.
func (s *Splitter) SplitTranscript(utterances []Utterance, src Source) []Chunk {
	var chunks []Chunk

	var current string
	var speakers []string
	var firstStart, lastEnd int
	index := 0
	startChar := 0

	flush := func() {
		content := strings.TrimSpace(current)
		if content == "" {
			return
		}

		meta := make(map[string]any, len(src.Metadata)+4)
		for k, v := range src.Metadata {
			meta[k] = v
		}
		distinct := distinctSpeakers(speakers)
		meta["speakers"] = distinct
		meta["speaker_count"] = len(distinct)
		meta["start_timestamp"] = firstStart
		meta["end_timestamp"] = lastEnd

		chunkSrc := src
		chunkSrc.Metadata = meta
		chunks = append(chunks, New(content, chunkSrc, index, startChar, startChar+utf8.RuneCountInString(content)-1))
		index++
	}

	for _, u := range utterances {
		line := fmt.Sprintf("[%s] %s: %s\n", FormatMillis(u.Start), u.Label(), u.Text)

		if current != "" && utf8.RuneCountInString(current)+utf8.RuneCountInString(line) > s.chunkSize {
			flush()

			carry := ""
			if s.chunkOverlap > 0 {
				carry = tailRunes(current, s.chunkOverlap)
			}

			startChar += utf8.RuneCountInString(current) - utf8.RuneCountInString(carry)
			current = carry + line
			speakers = []string{u.Label()}
			firstStart, lastEnd = u.Start, u.End
			continue
		}

		if current == "" {
			firstStart = u.Start
		}
		current += line
		speakers = append(speakers, u.Label())
		lastEnd = u.End
	}

	flush()

	return chunks
}

// tailRunes returns the last n runes of s, or all of s when it holds fewer.
// The cut always lands on a rune boundary.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0
	for i := len(s); i > 0; {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
		if count == n {
			return s[i:]
		}
	}
	return s
}

// FormatMillis renders a millisecond offset as mm:ss for transcript lines.
func FormatMillis(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// distinctSpeakers preserves first-seen order while deduplicating labels.
func distinctSpeakers(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
