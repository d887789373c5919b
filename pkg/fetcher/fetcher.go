// Package fetcher retrieves results pages over HTTP.
// Implement the Fetcher interface to plug in another transport, or a fixture
// source in tests.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page retrieval.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string) (Content, error)

	// Close releases any resources.
	Close() error
}

// Content represents a fetched page.
type Content struct {
	URL         string
	HTML        string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
	Attempts    int // Requests made, including retries
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrNotFound).
var (
	// ErrNotFound indicates the server has no page at the URL. It is not retried.
	ErrNotFound = errors.New("page not found")
	// ErrEmptyDocument indicates the server answered with an empty body.
	ErrEmptyDocument = errors.New("empty document")
)
