package chunk_test

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
)

var _ = Describe("Splitter", func() {
	docSrc := chunk.Source{File: "doc.txt", Type: chunk.SourceDocument}

	Describe("NewSplitter", func() {
		It("rejects a non-positive chunk size", func() {
			_, err := chunk.NewSplitter(0, 0)
			Expect(err).To(MatchError(chunk.ErrInvalidConfig))

			_, err = chunk.NewSplitter(-5, 0)
			Expect(err).To(MatchError(chunk.ErrInvalidConfig))
		})

		It("rejects overlap outside [0, chunkSize)", func() {
			_, err := chunk.NewSplitter(10, 10)
			Expect(err).To(MatchError(chunk.ErrInvalidConfig))

			_, err = chunk.NewSplitter(10, -1)
			Expect(err).To(MatchError(chunk.ErrInvalidConfig))
		})

		It("accepts zero overlap", func() {
			s, err := chunk.NewSplitter(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ChunkOverlap()).To(Equal(0))
		})
	})

	Describe("Split", func() {
		It("snaps to sentence boundaries near the window edge", func() {
			s, err := chunk.NewSplitter(20, 5)
			Expect(err).NotTo(HaveOccurred())

			chunks := s.Split("Sentence one. Sentence two. Sentence three.", docSrc)

			Expect(chunks).To(HaveLen(3))
			Expect(chunks[0].ChunkIndex).To(Equal(0))
			Expect(chunks[1].ChunkIndex).To(Equal(1))
			Expect(chunks[2].ChunkIndex).To(Equal(2))
			Expect(chunks[0].Content).To(Equal("Sentence one."))
			Expect(chunks[0].Content).To(HaveSuffix("."))
			Expect(chunks[1].Content).To(HaveSuffix("."))
		})

		It("returns no chunks for empty text", func() {
			s, err := chunk.NewSplitter(100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Split("", docSrc)).To(BeEmpty())
		})

		It("returns no chunks for whitespace-only text", func() {
			s, err := chunk.NewSplitter(100, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Split("   \n\t  ", docSrc)).To(BeEmpty())
		})

		It("yields exactly one chunk for text shorter than the window", func() {
			s, err := chunk.NewSplitter(100, 10)
			Expect(err).NotTo(HaveOccurred())

			chunks := s.Split("short text", docSrc)
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Content).To(Equal("short text"))
			Expect(chunks[0].StartChar).To(Equal(0))
		})

		It("covers boundary-free text contiguously with no gaps", func() {
			s, err := chunk.NewSplitter(10, 3)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("abcdefghij", 5) // no periods or newlines
			chunks := s.Split(text, docSrc)

			Expect(chunks).NotTo(BeEmpty())
			Expect(chunks[0].StartChar).To(Equal(0))
			for i := 1; i < len(chunks); i++ {
				Expect(chunks[i].StartChar).To(Equal(chunks[i-1].EndChar + 1))
			}
			Expect(chunks[len(chunks)-1].EndChar).To(Equal(len(text) - 1))
		})

		It("terminates and respects the chunk-count bound for all inputs", func() {
			sizes := []struct{ size, overlap int }{
				{5, 0}, {5, 4}, {20, 10}, {1, 0}, {100, 99},
			}
			text := "One. Two. Three. Four. Five. Six. Seven. Eight. Nine. Ten.\nEleven twelve."

			for _, p := range sizes {
				s, err := chunk.NewSplitter(p.size, p.overlap)
				Expect(err).NotTo(HaveOccurred())

				chunks := s.Split(text, docSrc)
				bound := (len(text) + p.size - p.overlap - 1) / (p.size - p.overlap)
				Expect(len(chunks)).To(BeNumerically("<=", bound))
			}
		})

		It("is deterministic across runs, including chunk IDs", func() {
			s, err := chunk.NewSplitter(25, 5)
			Expect(err).NotTo(HaveOccurred())

			text := "First sentence here. Second sentence here. Third one."
			a := s.Split(text, docSrc)
			b := s.Split(text, docSrc)

			Expect(a).To(HaveLen(len(b)))
			for i := range a {
				Expect(a[i].Content).To(Equal(b[i].Content))
				Expect(a[i].ChunkID).To(Equal(b[i].ChunkID))
				Expect(a[i].StartChar).To(Equal(b[i].StartChar))
				Expect(a[i].EndChar).To(Equal(b[i].EndChar))
			}
		})

		It("never cuts multi-byte characters at window edges", func() {
			s, err := chunk.NewSplitter(10, 0)
			Expect(err).NotTo(HaveOccurred())

			text := "日本語のテキストです。全ての文字が三バイトで構成されている。"
			chunks := s.Split(text, docSrc)

			Expect(chunks).NotTo(BeEmpty())
			var rebuilt strings.Builder
			for _, c := range chunks {
				Expect(utf8.ValidString(c.Content)).To(BeTrue(),
					"chunk %d contains invalid UTF-8: %q", c.ChunkIndex, c.Content)
				rebuilt.WriteString(c.Content)
			}
			Expect(rebuilt.String()).To(Equal(text))
		})

		It("measures windows and offsets in characters, not bytes", func() {
			s, err := chunk.NewSplitter(10, 0)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("あ", 25) // 75 bytes, 25 characters
			chunks := s.Split(text, docSrc)

			Expect(chunks).To(HaveLen(3))
			for _, c := range chunks {
				Expect(utf8.RuneCountInString(c.Content)).To(BeNumerically("<=", 10))
			}
			Expect(chunks[0].StartChar).To(Equal(0))
			Expect(chunks[0].EndChar).To(Equal(9))
			Expect(chunks[1].StartChar).To(Equal(10))
			Expect(chunks[2].EndChar).To(Equal(24))
		})

		It("keeps overlapping windows rune-aligned", func() {
			s, err := chunk.NewSplitter(8, 3)
			Expect(err).NotTo(HaveOccurred())

			chunks := s.Split("Résumé naïve café Zürich fiancée déjà vu über", docSrc)
			Expect(chunks).NotTo(BeEmpty())
			for _, c := range chunks {
				Expect(utf8.ValidString(c.Content)).To(BeTrue())
			}
		})

		It("assigns strictly increasing chunk indexes starting at zero", func() {
			s, err := chunk.NewSplitter(15, 0)
			Expect(err).NotTo(HaveOccurred())

			chunks := s.Split(strings.Repeat("word and more. ", 10), docSrc)
			for i, c := range chunks {
				Expect(c.ChunkIndex).To(Equal(i))
			}
		})
	})

	Describe("SplitParagraphs", func() {
		It("prefers paragraph breaks over sentence breaks", func() {
			s, err := chunk.NewSplitter(40, 5)
			Expect(err).NotTo(HaveOccurred())

			text := "Intro paragraph here.\n\nSecond paragraph follows with more words. And a tail sentence."
			chunks := s.SplitParagraphs(text, chunk.Source{File: "https://example.com", Type: chunk.SourceWeb})

			Expect(chunks).NotTo(BeEmpty())
			Expect(chunks[0].Content).To(Equal("Intro paragraph here."))
		})

		It("stamps the web source type into chunk IDs", func() {
			s, err := chunk.NewSplitter(100, 0)
			Expect(err).NotTo(HaveOccurred())

			chunks := s.SplitParagraphs("A single block of content.", chunk.Source{File: "https://example.com", Type: chunk.SourceWeb})
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].ChunkID).To(HavePrefix("web_0_"))
		})
	})
})
