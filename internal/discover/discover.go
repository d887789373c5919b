package discover

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/fetcher"
)

// Config holds discovery configuration.
type Config struct {
	DocumentPattern string
	IndexPattern    string
	MaxDepth        int           // Index link depth below the seed (0 = seed only)
	MaxPages        int           // Max index pages fetched (0 = unlimited)
	Delay           time.Duration // Delay between index page requests
}

// DefaultConfig returns the NECTA layout: national index, region pages,
// council pages.
func DefaultConfig() Config {
	return Config{
		DocumentPattern: DefaultDocumentPattern,
		IndexPattern:    DefaultIndexPattern,
		MaxDepth:        2,
		Delay:           200 * time.Millisecond,
	}
}

// Walk fetches the seed index page, follows index links breadth first up to
// MaxDepth, and returns every school page link found, in discovery order.
// Failing to fetch the seed is an error; failures below it are logged and
// skipped, so the result may be incomplete.
func Walk(ctx context.Context, f fetcher.Fetcher, seed string, cfg Config) ([]Link, error) {
	ls, err := NewLinkSelector(cfg.DocumentPattern, cfg.IndexPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid discovery pattern: %w", err)
	}

	q := newPageQueue()
	q.Add(seed, 0)

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	var links []Link
	seenDocs := make(map[string]bool)
	pages := 0

	for {
		item, ok := q.Pop()
		if !ok {
			break
		}
		if cfg.MaxPages > 0 && pages >= cfg.MaxPages {
			logger.Debug("discovery page limit reached", "max_pages", cfg.MaxPages)
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			return links, err
		}
		pages++

		content, err := f.Fetch(ctx, item.URL)
		if err != nil {
			if item.Depth == 0 {
				return nil, fmt.Errorf("fetch index %s: %w", item.URL, err)
			}
			logger.Warn("skipping index page", "url", item.URL, "error", err)
			continue
		}

		docs, index, err := ls.Extract(content.HTML, item.URL)
		if err != nil {
			logger.Warn("unparseable index page", "url", item.URL, "error", err)
			continue
		}
		for _, d := range docs {
			if !seenDocs[d.URL] {
				seenDocs[d.URL] = true
				links = append(links, d)
			}
		}
		if item.Depth < cfg.MaxDepth {
			for _, u := range index {
				q.Add(u, item.Depth+1)
			}
		}
		logger.Debug("index page scanned",
			"url", item.URL,
			"depth", item.Depth,
			"documents", len(docs),
			"index_links", len(index))
	}

	return links, nil
}
