// Package firecrawl implements pkg/scrape's Scraper client for the Firecrawl API
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/thinkbooklabs/thinkbook/pkg/scrape"
)

const (
	// DefaultBaseURL is the Firecrawl API endpoint.
	DefaultBaseURL = "https://api.firecrawl.dev"

	// defaultTimeoutMillis is the scrape timeout sent to the provider.
	defaultTimeoutMillis = 30000
)

// Scraper wraps Firecrawl's scrape API.
type Scraper struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Firecrawl scraper.
type Config struct {
	// APIKey is the Firecrawl API key.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL if empty.
	BaseURL string
}

// scrapeRequest is the request body for Firecrawl's scrape API.
type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
	Timeout int      `json:"timeout"`
}

// scrapeResponse is the response from Firecrawl's scrape API.
type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string         `json:"markdown"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

// NewScraper creates a new scraper using Firecrawl's API.
func NewScraper(cfg Config, logger *zap.Logger) (*Scraper, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firecrawl API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Scraper{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// Scrape fetches and extracts one page as markdown.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*scrape.Page, error) {
	if err := validateURL(pageURL); err != nil {
		return nil, err
	}

	reqBody := scrapeRequest{
		URL:     pageURL,
		Formats: []string{"markdown"},
		Timeout: defaultTimeoutMillis,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", scrape.ErrScrape, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v2/scrape", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", scrape.ErrScrape, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", scrape.ErrScrape, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: firecrawl returned status %d: %s", scrape.ErrScrape, resp.StatusCode, string(body))
	}

	var scrapeResp scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&scrapeResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", scrape.ErrScrape, err)
	}

	if !scrapeResp.Success {
		return nil, fmt.Errorf("%w: %s", scrape.ErrScrape, scrapeResp.Error)
	}

	page := &scrape.Page{
		URL:      pageURL,
		Content:  scrapeResp.Data.Markdown,
		Metadata: scrapeResp.Data.Metadata,
	}
	if v, ok := scrapeResp.Data.Metadata["title"].(string); ok {
		page.Title = v
	}
	if v, ok := scrapeResp.Data.Metadata["description"].(string); ok {
		page.Description = v
	}
	if v, ok := scrapeResp.Data.Metadata["language"].(string); ok {
		page.Language = v
	}

	s.logger.Debug("scraped page",
		zap.String("url", pageURL),
		zap.Int("content_chars", len(page.Content)),
	)

	return page, nil
}

// Close releases resources held by the scraper.
func (s *Scraper) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", scrape.ErrInvalidURL, raw)
	}
	return nil
}

// Ensure Scraper implements scrape.Scraper
var _ scrape.Scraper = (*Scraper)(nil)
