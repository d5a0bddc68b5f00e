// Package scrape provides interfaces and implementations for web page extraction.
package scrape

import (
	"context"
	"errors"
)

var (
	// ErrInvalidURL is returned when a URL fails validation before scraping.
	ErrInvalidURL = errors.New("invalid url")

	// ErrScrape is returned when the scraping provider fails.
	ErrScrape = errors.New("scrape failed")
)

// Page is the extracted content and metadata of one web page.
type Page struct {
	URL         string
	Title       string
	Description string
	Language    string

	// Content is the page body as markdown.
	Content string

	// Metadata holds provider extras, opaque to callers.
	Metadata map[string]any
}

// Scraper extracts readable content from web pages.
type Scraper interface {
	// Scrape fetches and extracts one page.
	Scrape(ctx context.Context, url string) (*Page, error)

	// Close releases any resources held by the scraper.
	Close() error
}
