package chunk_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
)

var _ = Describe("Chunk identity", func() {
	It("derives the same ID for identical type, index, and content", func() {
		a := chunk.ID(chunk.SourceDocument, 0, "hello world")
		b := chunk.ID(chunk.SourceDocument, 0, "hello world")
		Expect(a).To(Equal(b))
	})

	It("formats the ID as type, index, and an 8-char digest", func() {
		id := chunk.ID(chunk.SourceWeb, 3, "some content")
		Expect(id).To(MatchRegexp(`^web_3_[0-9a-f]{8}$`))
	})

	It("changes the ID when any component changes", func() {
		base := chunk.ID(chunk.SourceDocument, 0, "hello")
		Expect(chunk.ID(chunk.SourceAudio, 0, "hello")).NotTo(Equal(base))
		Expect(chunk.ID(chunk.SourceDocument, 1, "hello")).NotTo(Equal(base))
		Expect(chunk.ID(chunk.SourceDocument, 0, "hello!")).NotTo(Equal(base))
	})

	It("stamps New chunks with source fields and a copied metadata map", func() {
		src := chunk.Source{
			File:       "paper.pdf",
			Type:       chunk.SourceDocument,
			PageNumber: 4,
			Metadata:   map[string]any{"total_pages": 12},
		}

		c := chunk.New("body text", src, 2, 100, 108)

		Expect(c.SourceFile).To(Equal("paper.pdf"))
		Expect(c.PageNumber).To(Equal(4))
		Expect(c.ChunkIndex).To(Equal(2))
		Expect(c.StartChar).To(Equal(100))
		Expect(c.EndChar).To(Equal(108))
		Expect(c.ChunkID).To(Equal(chunk.ID(chunk.SourceDocument, 2, "body text")))

		// Mutating the source map must not leak into the chunk.
		src.Metadata["total_pages"] = 99
		Expect(c.Metadata["total_pages"]).To(Equal(12))
	})
})
