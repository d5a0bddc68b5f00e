package ingest_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/chunk"
	"github.com/thinkbooklabs/thinkbook/pkg/ingest"
	testutils "github.com/thinkbooklabs/thinkbook/pkg/utils/test"
)

var _ = Describe("Ingestor", func() {
	var (
		embedder *testutils.MockEmbedder
		store    *testutils.MockVectorDriver
		ingestor *ingest.Ingestor
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		store = testutils.NewMockVectorDriver()

		var err error
		ingestor, err = ingest.NewIngestor(ingest.Config{
			Embedder:     embedder,
			Store:        store,
			ChunkSize:    50,
			ChunkOverlap: 10,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects missing collaborators", func() {
		_, err := ingest.NewIngestor(ingest.Config{Store: store}, zap.NewNop())
		Expect(err).To(HaveOccurred())

		_, err = ingest.NewIngestor(ingest.Config{Embedder: embedder}, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	Describe("IngestText", func() {
		It("stores chunks with their payload and embedding model", func() {
			src := chunk.Source{File: "notes.txt", Type: chunk.SourceDocument}

			count, err := ingestor.IngestText(context.Background(), "A short note to remember.", src)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
			Expect(store.Documents).To(HaveLen(1))

			doc := store.Documents[0]
			Expect(doc.ID).To(HavePrefix("document_0_"))
			Expect(doc.Content).To(Equal("A short note to remember."))
			Expect(doc.SourceFile).To(Equal("notes.txt"))
			Expect(doc.SourceType).To(Equal("document"))
			Expect(doc.EmbeddingModel).To(Equal("mock-embedder"))
			Expect(doc.Embedding).To(Equal([]float32{0.1, 0.2, 0.3}))
		})

		It("stores nothing for empty text", func() {
			count, err := ingestor.IngestText(context.Background(), "  \n ", chunk.Source{File: "empty.txt", Type: chunk.SourceDocument})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(0))
			Expect(store.Documents).To(BeEmpty())
		})

		It("is idempotent for identical content", func() {
			src := chunk.Source{File: "notes.txt", Type: chunk.SourceDocument}

			_, err := ingestor.IngestText(context.Background(), "A short note to remember.", src)
			Expect(err).NotTo(HaveOccurred())
			_, err = ingestor.IngestText(context.Background(), "A short note to remember.", src)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Documents).To(HaveLen(1))
		})
	})

	Describe("IngestWebPage", func() {
		It("stores chunks tagged as web sources", func() {
			count, err := ingestor.IngestWebPage(context.Background(),
				"First paragraph of the article.", "https://example.com/post",
				map[string]any{"title": "Example Post"})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			doc := store.Documents[0]
			Expect(doc.SourceType).To(Equal("web"))
			Expect(doc.SourceFile).To(Equal("https://example.com/post"))
			Expect(doc.Metadata["title"]).To(Equal("Example Post"))
		})
	})

	Describe("IngestTranscript", func() {
		It("stores speaker-segmented chunks", func() {
			utterances := []chunk.Utterance{
				{Speaker: "A", Start: 0, End: 3000, Text: "Hello there."},
				{Speaker: "B", Start: 3000, End: 6000, Text: "Hi, welcome."},
			}

			count, err := ingestor.IngestTranscript(context.Background(), utterances, "call.wav")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeNumerically(">", 0))

			doc := store.Documents[0]
			Expect(doc.SourceType).To(Equal("audio"))
			Expect(doc.Metadata).To(HaveKey("speakers"))
		})
	})

	Describe("IngestYouTube", func() {
		It("stores one chunk per utterance with millisecond spans", func() {
			utterances := []chunk.Utterance{
				{Speaker: "A", Start: 0, End: 4200, Text: "Intro segment."},
				{Speaker: "A", Start: 4200, End: 9100, Text: "Main point."},
				{Speaker: "A", Start: 9100, End: 9100, Text: ""},
			}

			count, err := ingestor.IngestYouTube(context.Background(), utterances,
				"https://youtube.com/watch?v=abc", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))

			Expect(store.Documents[0].SourceType).To(Equal("youtube"))
			Expect(store.Documents[0].StartChar).To(Equal(0))
			Expect(store.Documents[0].EndChar).To(Equal(4200))
			Expect(store.Documents[1].StartChar).To(Equal(4200))
			Expect(store.Documents[1].EndChar).To(Equal(9100))
			Expect(store.Documents[1].ChunkIndex).To(Equal(1))
		})
	})
})
