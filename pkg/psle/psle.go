package psle

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/features"
	"github.com/jmylchreest/psle/pkg/fetcher"
	"github.com/jmylchreest/psle/pkg/report"
)

// Result is the outcome of harvesting one document. Error is set when the
// page could not be fetched; a fetched page always yields a Record, possibly
// partial, with its Diagnostics.
type Result struct {
	DocumentID    string              `json:"document_id" yaml:"document_id"`
	URL           string              `json:"url" yaml:"url"`
	FetchedAt     time.Time           `json:"fetched_at" yaml:"fetched_at"`
	FetchDuration time.Duration       `json:"fetch_duration" yaml:"fetch_duration"`
	Attempts      int                 `json:"attempts" yaml:"attempts"`
	Record        report.Record       `json:"record" yaml:"record"`
	Derived       features.Derived    `json:"derived" yaml:"derived"`
	Diagnostics   []report.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Error         error               `json:"-" yaml:"-"`
}

// Harvester fetches and parses results pages.
type Harvester struct {
	fetcher fetcher.Fetcher
	parser  *report.Parser
	base    *url.URL
	limiter *rate.Limiter // nil when unlimited
	config  Config
}

// New creates a harvester.
func New(opts ...Option) (*Harvester, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	parser, err := report.NewParser(cfg.Parser, cfg.Reporter)
	if err != nil {
		return nil, err
	}

	f := cfg.Fetcher
	if f == nil {
		f = fetcher.NewStatic(fetcher.StaticConfig{
			Timeout:     cfg.Timeout,
			Retries:     cfg.Retries,
			Backoff:     cfg.Backoff,
			MaxBodySize: cfg.MaxBodySize,
		})
	}

	h := &Harvester{
		fetcher: f,
		parser:  parser,
		base:    base,
		config:  cfg,
	}
	if cfg.RateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return h, nil
}

// URL resolves a document id, such as "shl_ps1104063.htm", against the base
// URL. Absolute URLs are returned unchanged.
func (h *Harvester) URL(documentID string) (string, error) {
	ref, err := url.Parse(documentID)
	if err != nil {
		return "", fmt.Errorf("invalid document id %q: %w", documentID, err)
	}
	return h.base.ResolveReference(ref).String(), nil
}

// Harvest fetches and parses a single document.
func (h *Harvester) Harvest(ctx context.Context, documentID string) *Result {
	res := &Result{DocumentID: documentID}

	u, err := h.URL(documentID)
	if err != nil {
		res.Error = err
		return res
	}
	res.URL = u

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			res.Error = err
			return res
		}
	}

	start := time.Now()
	content, err := h.fetcher.Fetch(ctx, u)
	res.FetchDuration = time.Since(start)
	res.Attempts = content.Attempts
	if err != nil {
		res.Error = err
		return res
	}
	res.FetchedAt = content.FetchedAt

	h.parse(res, content.HTML)
	return res
}

// Parse parses an already fetched document.
func (h *Harvester) Parse(doc report.Document) *Result {
	res := &Result{DocumentID: doc.ID}
	h.parse(res, doc.HTML)
	return res
}

func (h *Harvester) parse(res *Result, html string) {
	rec, diags := h.parser.ParseReport(report.Document{ID: res.DocumentID, HTML: html})
	res.Record = rec
	res.Diagnostics = diags
	res.Derived = features.Derive(rec)

	if err := rec.Validate(); err != nil {
		logger.Warn("record failed validation", "document", res.DocumentID, "error", err)
	}
	if consistent, ok := rec.GradeConsistent(); ok && !consistent {
		logger.Info("published grade differs from computed grade",
			"document", res.DocumentID,
			"published", *rec.Grade,
			"computed", *res.Derived.ComputedGrade)
	}
}

// HarvestMany harvests documents concurrently. Results arrive in completion
// order; the channel is closed once every document is done.
func (h *Harvester) HarvestMany(ctx context.Context, documentIDs []string, concurrency int) <-chan *Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(chan *Result, len(documentIDs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, id := range documentIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- &Result{DocumentID: id, Error: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			results <- h.Harvest(ctx, id)
		}(id)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Close releases the fetcher.
func (h *Harvester) Close() error {
	if h.fetcher != nil {
		return h.fetcher.Close()
	}
	return nil
}
