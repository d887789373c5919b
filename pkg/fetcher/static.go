package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/psle/internal/logger"
)

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent   string
	Timeout     time.Duration // Per request
	Retries     uint          // Extra attempts after the first
	Backoff     time.Duration // Initial delay between attempts, doubled each retry
	MaxBodySize int           // Bytes; 0 keeps colly's default
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
		Retries:   3,
		Backoff:   time.Second,
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StaticFetcher uses Colly for plain HTTP fetching, retrying failed requests
// with exponential backoff.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a new static fetcher. Zero fields take their defaults,
// except Retries, where zero means a single attempt.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	def := DefaultStaticConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = def.Backoff
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves a page. A 404 fails immediately with ErrNotFound; other
// failures are retried until the attempts run out or ctx is done.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (Content, error) {
	var result Content
	attempts := 0

	err := retry.Do(
		func() error {
			attempts++
			c, err := f.visit(ctx, targetURL)
			if err != nil {
				return err
			}
			result = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.config.Retries+1),
		retry.Delay(f.config.Backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("fetch retry", "url", targetURL, "attempt", n+1, "error", err)
		}),
	)
	result.Attempts = attempts
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", targetURL, err)
	}

	logger.Debug("fetch complete",
		"url", targetURL,
		"status", result.StatusCode,
		"attempts", attempts,
		"bytes", len(result.HTML))
	return result, nil
}

// visit makes a single request.
func (f *StaticFetcher) visit(ctx context.Context, targetURL string) (Content, error) {
	result := Content{URL: targetURL, FetchedAt: time.Now()}

	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.config.Timeout)
	if f.config.MaxBodySize > 0 {
		c.MaxBodySize = f.config.MaxBodySize
	}

	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.HTML = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		fetchErr = err
	})

	visitErr := c.Visit(targetURL)
	if result.StatusCode == http.StatusNotFound {
		return result, retry.Unrecoverable(ErrNotFound)
	}
	if fetchErr == nil {
		fetchErr = visitErr
	}
	if fetchErr != nil {
		return result, fetchErr
	}
	if result.HTML == "" {
		return result, ErrEmptyDocument
	}
	return result, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}
