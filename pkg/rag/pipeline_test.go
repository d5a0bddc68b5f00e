package rag_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/rag"
	testutils "github.com/thinkbooklabs/thinkbook/pkg/utils/test"
	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

var _ = Describe("Pipeline", func() {
	var (
		embedder  *testutils.MockEmbedder
		store     *testutils.MockVectorDriver
		generator *testutils.MockGenerator
		pipeline  *rag.Pipeline
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		store = testutils.NewMockVectorDriver()
		generator = testutils.NewMockGenerator("The method works as described [1].")

		store.Results = []vector.QueryResult{
			{
				Document: vector.Document{
					ID:         "document_0_aaaa1111",
					Content:    "The method achieves strong results.",
					SourceFile: "paper.pdf",
					SourceType: "document",
					PageNumber: 2,
				},
				Score: 0.12,
			},
			{
				Document: vector.Document{
					ID:         "web_1_bbbb2222",
					Content:    "A replication study agrees.",
					SourceFile: "https://example.com",
					SourceType: "web",
				},
				Score: 0.35,
			},
		}

		var err error
		pipeline, err = rag.NewPipeline(rag.Config{
			Embedder:  embedder,
			Store:     store,
			Generator: generator,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewPipeline", func() {
		It("requires all collaborators", func() {
			_, err := rag.NewPipeline(rag.Config{Store: store, Generator: generator}, zap.NewNop())
			Expect(err).To(HaveOccurred())

			_, err = rag.NewPipeline(rag.Config{Embedder: embedder, Generator: generator}, zap.NewNop())
			Expect(err).To(HaveOccurred())

			_, err = rag.NewPipeline(rag.Config{Embedder: embedder, Store: store}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Answer", func() {
		It("runs a full turn and annotates the answer", func() {
			result, err := pipeline.Answer(context.Background(), "Does the method work?")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Answer).To(Equal("The method works as described [1]."))
			Expect(result.Annotated).To(ContainSubstring("[1](#chunk-document_0_aaaa1111)"))
			Expect(result.Citations).To(HaveLen(2))
			Expect(result.RetrievalCount).To(Equal(2))
			Expect(result.Stage).To(Equal(rag.StageResolved))
		})

		It("sends the assembled context and question to the generator", func() {
			_, err := pipeline.Answer(context.Background(), "Does the method work?")
			Expect(err).NotTo(HaveOccurred())

			Expect(generator.LastRequest.Prompt).To(ContainSubstring("[1] The method achieves strong results."))
			Expect(generator.LastRequest.Prompt).To(ContainSubstring("[2] A replication study agrees."))
			Expect(generator.LastRequest.Prompt).To(ContainSubstring("QUESTION: Does the method work?"))
		})

		It("returns a canned answer for a blank query", func() {
			result, err := pipeline.Answer(context.Background(), "   \n ")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Answer).To(Equal(rag.AnswerEmptyQuery))
			Expect(result.Citations).To(BeEmpty())
			Expect(result.Stage).To(Equal(rag.StageQueryReceived))
		})

		It("treats zero hits as a valid no-results answer", func() {
			store.Results = nil

			result, err := pipeline.Answer(context.Background(), "Anything in here?")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Answer).To(Equal(rag.AnswerNoResults))
			Expect(result.Citations).To(BeEmpty())
			Expect(result.RetrievalCount).To(Equal(0))
		})

		It("attaches the embedding stage to embedder failures", func() {
			embedder.FailOn = "Does the method work?"

			_, err := pipeline.Answer(context.Background(), "Does the method work?")
			Expect(err).To(HaveOccurred())

			stage, ok := rag.FailedStage(err)
			Expect(ok).To(BeTrue())
			Expect(stage).To(Equal(rag.StageEmbedded))
		})

		It("attaches the retrieval stage to index failures", func() {
			store.QueryErr = errors.New("index offline")

			_, err := pipeline.Answer(context.Background(), "Does the method work?")
			Expect(err).To(MatchError(rag.ErrRetrieval))

			stage, ok := rag.FailedStage(err)
			Expect(ok).To(BeTrue())
			Expect(stage).To(Equal(rag.StageRetrieved))
		})

		It("attaches the generation stage to generator failures", func() {
			generator.Err = errors.New("model overloaded")

			_, err := pipeline.Answer(context.Background(), "Does the method work?")
			Expect(err).To(HaveOccurred())

			stage, ok := rag.FailedStage(err)
			Expect(ok).To(BeTrue())
			Expect(stage).To(Equal(rag.StageGenerated))
		})
	})

	Describe("Summarize", func() {
		It("summarizes retrieved content with citations", func() {
			generator.Response = "Overall the sources agree [1], [2]."

			result, err := pipeline.Summarize(context.Background(), "medium")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Query).To(Equal("Document Summary"))
			Expect(result.Citations).To(HaveLen(2))
			Expect(generator.LastRequest.Prompt).To(ContainSubstring("comprehensive 4-5 paragraph summary"))
		})

		It("returns a canned answer when nothing is ingested", func() {
			store.Results = nil

			result, err := pipeline.Summarize(context.Background(), "short")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Answer).To(Equal(rag.AnswerNoSummarySources))
		})
	})

	Describe("BuildContext", func() {
		It("assembles a context without calling the generator", func() {
			assembled, err := pipeline.BuildContext(context.Background(), "method", 5, 8, 4000)
			Expect(err).NotTo(HaveOccurred())

			Expect(assembled.Citations).To(HaveLen(2))
			Expect(assembled.Text).To(ContainSubstring("[1] The method achieves strong results."))
		})

		It("rejects a blank query", func() {
			_, err := pipeline.BuildContext(context.Background(), "  ", 5, 8, 4000)
			Expect(err).To(MatchError(rag.ErrEmptyQuery))
		})
	})

	Describe("PreviewChunk", func() {
		It("delegates to the resolver", func() {
			store.Documents = []vector.Document{
				{ID: "document_0_aaaa1111", Content: "The method achieves strong results."},
			}

			preview := pipeline.PreviewChunk(context.Background(), "document_0_aaaa1111")
			Expect(preview).To(Equal("The method achieves strong results."))
		})
	})
})
