package rag_test

import (
	"fmt"
	"regexp"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thinkbooklabs/thinkbook/pkg/rag"
)

func makeHits(n int, contentLen int) []rag.SearchHit {
	hits := make([]rag.SearchHit, n)
	for i := range hits {
		hits[i] = rag.SearchHit{
			ChunkID:    fmt.Sprintf("document_%d_abcd1234", i),
			Score:      float64(i) * 0.1,
			Content:    strings.Repeat("x", contentLen),
			SourceFile: "paper.pdf",
			SourceType: "document",
			PageNumber: i + 1,
		}
	}
	return hits
}

var _ = Describe("Assemble", func() {
	It("admits up to maxChunks hits with sequential references", func() {
		assembled := rag.Assemble(makeHits(5, 50), 3, 10000)

		Expect(assembled.Citations).To(HaveLen(3))
		Expect(assembled.Citations[0].Reference).To(Equal("[1]"))
		Expect(assembled.Citations[1].Reference).To(Equal("[2]"))
		Expect(assembled.Citations[2].Reference).To(Equal("[3]"))

		first := strings.Index(assembled.Text, "[1]")
		second := strings.Index(assembled.Text, "[2]")
		third := strings.Index(assembled.Text, "[3]")
		Expect(first).To(BeNumerically(">=", 0))
		Expect(second).To(BeNumerically(">", first))
		Expect(third).To(BeNumerically(">", second))
		Expect(assembled.Text).NotTo(ContainSubstring("[4]"))
	})

	It("admits the first hit even when it alone exceeds the budget", func() {
		assembled := rag.Assemble(makeHits(2, 500), 8, 100)

		Expect(assembled.Citations).To(HaveLen(1))
		Expect(assembled.Text).To(HavePrefix("[1] "))
		Expect(len(assembled.Text)).To(BeNumerically(">", 100))
	})

	It("never exceeds the budget once a chunk has been admitted", func() {
		for _, budget := range []int{60, 150, 400, 1000} {
			assembled := rag.Assemble(makeHits(10, 50), 10, budget)
			if len(assembled.Citations) > 1 {
				Expect(len(assembled.Text)).To(BeNumerically("<=", budget))
			}
		}
	})

	It("joins admitted chunks with a blank line", func() {
		assembled := rag.Assemble(makeHits(2, 10), 8, 10000)
		Expect(strings.Count(assembled.Text, "\n\n")).To(Equal(1))
	})

	It("keeps a bijection between markers in text and citation records", func() {
		assembled := rag.Assemble(makeHits(6, 30), 4, 10000)

		markers := regexp.MustCompile(`\[(\d+)\]`).FindAllString(assembled.Text, -1)
		Expect(markers).To(HaveLen(len(assembled.Citations)))
		for i, c := range assembled.Citations {
			Expect(markers[i]).To(Equal(c.Reference))
		}
	})

	It("records source payload and relevance score per citation", func() {
		hits := makeHits(1, 20)
		hits[0].Score = 0.42

		assembled := rag.Assemble(hits, 8, 10000)
		Expect(assembled.Citations).To(HaveLen(1))

		c := assembled.Citations[0]
		Expect(c.SourceFile).To(Equal("paper.pdf"))
		Expect(c.SourceType).To(Equal("document"))
		Expect(c.PageNumber).To(Equal(1))
		Expect(c.ChunkID).To(Equal("document_0_abcd1234"))
		Expect(c.RelevanceScore).To(Equal(0.42))
	})

	It("returns an empty context for zero hits", func() {
		assembled := rag.Assemble(nil, 8, 4000)
		Expect(assembled.Text).To(BeEmpty())
		Expect(assembled.Citations).To(BeEmpty())
	})

	It("is deterministic for identical inputs", func() {
		hits := makeHits(5, 40)
		a := rag.Assemble(hits, 3, 200)
		b := rag.Assemble(hits, 3, 200)
		Expect(a).To(Equal(b))
	})
})
