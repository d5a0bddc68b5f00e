package session_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/session"
	testutils "github.com/thinkbooklabs/thinkbook/pkg/utils/test"
)

var _ = Describe("Manager", func() {
	var (
		manager *session.Manager
		stores  map[string]*testutils.MockVectorDriver
	)

	BeforeEach(func() {
		stores = make(map[string]*testutils.MockVectorDriver)

		factory := func(_ context.Context, id string) (*session.Session, error) {
			store := testutils.NewMockVectorDriver()
			stores[id] = store
			return &session.Session{
				Store:    store,
				Embedder: testutils.NewMockEmbedder(),
			}, nil
		}

		var err error
		manager, err = session.NewManager(factory, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a factory", func() {
		_, err := session.NewManager(nil, zap.NewNop())
		Expect(err).To(HaveOccurred())
	})

	Describe("Create and Get", func() {
		It("registers sessions by ID", func() {
			sess, err := manager.Create(context.Background(), "sess-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.ID).To(Equal("sess-1"))
			Expect(sess.CreatedAt).NotTo(BeZero())

			got, err := manager.Get("sess-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeIdenticalTo(sess))
			Expect(manager.Count()).To(Equal(1))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			_, err := manager.Get("missing")
			Expect(err).To(MatchError(session.ErrNotFound))
		})

		It("propagates factory failures", func() {
			failing, err := session.NewManager(func(context.Context, string) (*session.Session, error) {
				return nil, errors.New("no backend")
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = failing.Create(context.Background(), "sess-1")
			Expect(err).To(HaveOccurred())
			Expect(failing.Count()).To(Equal(0))
		})
	})

	Describe("Delete", func() {
		It("drops the vector collection and closes the drivers", func() {
			_, err := manager.Create(context.Background(), "sess-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(manager.Delete(context.Background(), "sess-1")).To(Succeed())

			Expect(stores["sess-1"].Dropped).To(BeTrue())
			Expect(stores["sess-1"].Closed).To(BeTrue())
			Expect(manager.Count()).To(Equal(0))

			_, err = manager.Get("sess-1")
			Expect(err).To(MatchError(session.ErrNotFound))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			Expect(manager.Delete(context.Background(), "missing")).To(MatchError(session.ErrNotFound))
		})
	})

	Describe("Close", func() {
		It("tears down every live session", func() {
			_, err := manager.Create(context.Background(), "sess-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = manager.Create(context.Background(), "sess-2")
			Expect(err).NotTo(HaveOccurred())

			Expect(manager.Close(context.Background())).To(Succeed())

			Expect(stores["sess-1"].Dropped).To(BeTrue())
			Expect(stores["sess-2"].Dropped).To(BeTrue())
			Expect(manager.Count()).To(Equal(0))
		})
	})
})

var _ = Describe("Session", func() {
	Describe("RecordSource and Sources", func() {
		It("tracks ingested sources in order", func() {
			sess := &session.Session{}

			sess.RecordSource("paper.pdf", "document", 12)
			sess.RecordSource("https://example.com", "web", 3)

			sources := sess.Sources()
			Expect(sources).To(HaveLen(2))
			Expect(sources[0].SourceFile).To(Equal("paper.pdf"))
			Expect(sources[0].ChunkCount).To(Equal(12))
			Expect(sources[1].SourceType).To(Equal("web"))
		})

		It("returns a copy so callers cannot mutate internal state", func() {
			sess := &session.Session{}
			sess.RecordSource("paper.pdf", "document", 1)

			sources := sess.Sources()
			sources[0].SourceFile = "mutated"

			Expect(sess.Sources()[0].SourceFile).To(Equal("paper.pdf"))
		})
	})

	Describe("Teardown", func() {
		It("collects errors instead of stopping at the first", func() {
			store := testutils.NewMockVectorDriver()
			sess := &session.Session{
				Store:    store,
				Embedder: testutils.NewMockEmbedder(),
			}

			Expect(sess.Teardown(context.Background())).To(Succeed())
			Expect(store.Dropped).To(BeTrue())
			Expect(store.Closed).To(BeTrue())
		})
	})
})
