package firecrawl_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/scrape"
	"github.com/thinkbooklabs/thinkbook/pkg/scrape/firecrawl"
)

var _ = Describe("Scraper", func() {
	Describe("NewScraper", func() {
		It("requires an API key", func() {
			_, err := firecrawl.NewScraper(firecrawl.Config{}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("API key is required"))
		})
	})

	Describe("Scrape", func() {
		var (
			server  *httptest.Server
			scraper *firecrawl.Scraper
		)

		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal("POST"))
				Expect(r.URL.Path).To(Equal("/v2/scrape"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer fc-test-key"))

				var req map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req["formats"]).To(ContainElement("markdown"))

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"success": true,
					"data": map[string]any{
						"markdown": "# Example\n\nA page about examples.",
						"metadata": map[string]any{
							"title":       "Example Page",
							"description": "A page about examples.",
							"language":    "en",
						},
					},
				})
			}))

			var err error
			scraper, err = firecrawl.NewScraper(firecrawl.Config{
				APIKey:  "fc-test-key",
				BaseURL: server.URL,
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			server.Close()
		})

		It("returns the page content and metadata", func() {
			page, err := scraper.Scrape(context.Background(), "https://example.com/post")
			Expect(err).NotTo(HaveOccurred())

			Expect(page.URL).To(Equal("https://example.com/post"))
			Expect(page.Title).To(Equal("Example Page"))
			Expect(page.Description).To(Equal("A page about examples."))
			Expect(page.Language).To(Equal("en"))
			Expect(page.Content).To(ContainSubstring("# Example"))
		})

		It("rejects URLs without an http scheme", func() {
			_, err := scraper.Scrape(context.Background(), "ftp://example.com/file")
			Expect(err).To(MatchError(scrape.ErrInvalidURL))

			_, err = scraper.Scrape(context.Background(), "not a url")
			Expect(err).To(MatchError(scrape.ErrInvalidURL))
		})

		It("surfaces provider errors", func() {
			failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "page could not be rendered",
				})
			}))
			defer failing.Close()

			s, err := firecrawl.NewScraper(firecrawl.Config{
				APIKey:  "fc-test-key",
				BaseURL: failing.URL,
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Scrape(context.Background(), "https://example.com")
			Expect(err).To(MatchError(scrape.ErrScrape))
			Expect(err.Error()).To(ContainSubstring("page could not be rendered"))
		})

		It("surfaces non-200 responses", func() {
			failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			}))
			defer failing.Close()

			s, err := firecrawl.NewScraper(firecrawl.Config{
				APIKey:  "fc-test-key",
				BaseURL: failing.URL,
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Scrape(context.Background(), "https://example.com")
			Expect(err).To(MatchError(scrape.ErrScrape))
			Expect(err.Error()).To(ContainSubstring("status 429"))
		})
	})

	Describe("Interface compliance", func() {
		It("implements scrape.Scraper", func() {
			var _ scrape.Scraper = (*firecrawl.Scraper)(nil)
		})
	})
})
