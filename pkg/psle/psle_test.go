package psle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/psle/pkg/fetcher"
	"github.com/jmylchreest/psle/pkg/report"
)

const goodPage = `<html><body>
<h3>KIBO PRIMARY SCHOOL - PS0202002</h3>
<font>WALIOFANYA MTIHANI : 20 WASTANI WA SHULE : 130.0000 DARAJA : B</font>
<table>
<tr><td>JINSI</td><td>A</td><td>B</td><td>C</td><td>D</td><td>E</td>
<tr><td>WASICHANA</td><td>1</td><td>4</td><td>5</td><td>0</td><td>0</td></tr>
<tr><td>WAVULANA</td><td>0</td><td>3</td><td>7</td><td>0</td><td>0</td></tr>
<tr><td>JUMLA</td><td>1</td><td>7</td><td>12</td><td>0</td><td>0</td></tr>
</table></body></html>`

const noSummaryPage = `<html><body>
<h3>MOSHI PRIMARY SCHOOL - PS0202003</h3>
<table><tr><td>JINSI</td></tr><tr><td>JUMLA</td><td>0</td><td>0</td><td>0</td><td>0</td><td>0</td></tr></table>
</body></html>`

// mapFetcher serves pages by URL.
type mapFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls int
}

func (m *mapFetcher) Fetch(_ context.Context, url string) (fetcher.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	html, ok := m.pages[url]
	if !ok {
		return fetcher.Content{URL: url, Attempts: 1}, fetcher.ErrNotFound
	}
	return fetcher.Content{URL: url, HTML: html, StatusCode: 200, Attempts: 1}, nil
}

func (m *mapFetcher) Close() error { return nil }

const base = "https://necta.test/psle/results/"

func newTestHarvester(t *testing.T, r report.Reporter) *Harvester {
	t.Helper()
	f := &mapFetcher{pages: map[string]string{
		base + "shl_ps0202002.htm": goodPage,
		base + "shl_ps0202003.htm": noSummaryPage,
	}}
	h, err := New(WithBaseURL(base), WithFetcher(f), WithReporter(r))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

// --- New Tests ---

func TestNew_InvalidParserConfig(t *testing.T) {
	cfg := report.DefaultConfig()
	cfg.SummaryPattern = "("
	if _, err := New(WithParserConfig(cfg)); err == nil {
		t.Error("expected error for invalid summary pattern")
	}
}

func TestNew_DefaultFetcher(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = h.Close() }()

	if _, ok := h.fetcher.(*fetcher.StaticFetcher); !ok {
		t.Errorf("expected static fetcher by default, got %T", h.fetcher)
	}
}

func TestNew_FetchOptions(t *testing.T) {
	h, err := New(
		WithTimeout(5*time.Second),
		WithRetries(1),
		WithBackoff(10*time.Millisecond),
		WithMaxBodySize(1<<20),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = h.Close() }()

	cfg := h.config
	if cfg.Timeout != 5*time.Second || cfg.Retries != 1 || cfg.Backoff != 10*time.Millisecond || cfg.MaxBodySize != 1<<20 {
		t.Errorf("options not applied: %+v", cfg)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.BaseURL)
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	if _, err := New(WithBaseURL("http://[::1")); err == nil {
		t.Error("expected error for invalid base URL")
	}
}

func TestURL(t *testing.T) {
	h := newTestHarvester(t, nil)

	u, err := h.URL("shl_ps0202002.htm")
	if err != nil || u != base+"shl_ps0202002.htm" {
		t.Errorf("URL() = %q, %v", u, err)
	}

	abs := "https://other.test/shl_ps1.htm"
	if u, _ := h.URL(abs); u != abs {
		t.Errorf("absolute URL should pass through, got %q", u)
	}
}

// --- Harvest Tests ---

func TestHarvest_FullRecord(t *testing.T) {
	h := newTestHarvester(t, &report.Collector{})

	res := h.Harvest(context.Background(), "shl_ps0202002.htm")
	if res.Error != nil {
		t.Fatalf("unexpected error: %v", res.Error)
	}
	if res.Record.SchoolID == nil || *res.Record.SchoolID != "PS0202002" {
		t.Errorf("school id = %v", res.Record.SchoolID)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %+v", res.Diagnostics)
	}

	// 130 is a C but the page publishes B.
	if res.Derived.GradeConsistent == nil || *res.Derived.GradeConsistent {
		t.Errorf("expected grade inconsistency, got %v", res.Derived.GradeConsistent)
	}
	if res.Derived.GradeCounts == nil || *res.Derived.GradeCounts != [5]int{1, 7, 12, 0, 0} {
		t.Errorf("grade counts = %v", res.Derived.GradeCounts)
	}
	if res.Derived.ApproxSpread == nil {
		t.Error("expected approx spread")
	}
}

func TestHarvest_PartialRecord(t *testing.T) {
	c := &report.Collector{}
	h := newTestHarvester(t, c)

	res := h.Harvest(context.Background(), "shl_ps0202003.htm")
	if res.Error != nil {
		t.Fatalf("unexpected error: %v", res.Error)
	}
	if res.Record.SchoolName == nil || *res.Record.SchoolName != "MOSHI" {
		t.Errorf("school name = %v", res.Record.SchoolName)
	}
	if res.Record.AverageScore != nil {
		t.Error("expected no average score")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Section != report.SectionSummary {
		t.Errorf("expected one summary diagnostic, got %+v", res.Diagnostics)
	}
	if len(c.Diagnostics) != 1 {
		t.Errorf("expected the diagnostic to reach the reporter, got %+v", c.Diagnostics)
	}
	if res.Derived.ApproxSpread != nil {
		t.Error("spread over zero pupils should be undefined")
	}
}

func TestHarvest_FetchError(t *testing.T) {
	h := newTestHarvester(t, nil)

	res := h.Harvest(context.Background(), "shl_ps9999999.htm")
	if !errors.Is(res.Error, fetcher.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", res.Error)
	}
	if !res.Record.Empty() {
		t.Error("expected empty record on fetch failure")
	}
}

func TestParse_LocalDocument(t *testing.T) {
	h := newTestHarvester(t, &report.Collector{})

	res := h.Parse(report.Document{ID: "local.htm", HTML: goodPage})
	if res.Record.NumStudents == nil || *res.Record.NumStudents != 20 {
		t.Errorf("num students = %v", res.Record.NumStudents)
	}
}

func TestHarvest_RateLimited(t *testing.T) {
	f := &mapFetcher{pages: map[string]string{base + "shl_ps0202002.htm": goodPage}}
	h, err := New(WithBaseURL(base), WithFetcher(f), WithRateLimit(50))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	start := time.Now()
	for range 3 {
		if res := h.Harvest(context.Background(), "shl_ps0202002.htm"); res.Error != nil {
			t.Fatalf("unexpected error: %v", res.Error)
		}
	}
	// 50/s with a burst of one: the second and third requests wait 20ms each.
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("expected requests to be paced, took %v", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := h.Harvest(ctx, "shl_ps0202002.htm")
	if !errors.Is(res.Error, context.Canceled) {
		t.Errorf("expected context.Canceled while waiting, got %v", res.Error)
	}
	if f.calls != 3 {
		t.Errorf("expected the cancelled request not to be fetched, got %d calls", f.calls)
	}
}

func TestParse_HugeCountsDoNotPanic(t *testing.T) {
	h := newTestHarvester(t, &report.Collector{})
	page := `<html><body>
<h3>KIBO PRIMARY SCHOOL - PS0202002</h3>
<table>
<tr><td>JINSI</td></tr>
<tr><td>JUMLA</td><td>4611686018427387904</td><td>0</td><td>0</td><td>0</td><td>0</td></tr>
</table></body></html>`

	res := h.Parse(report.Document{ID: "huge.htm", HTML: page})
	if res.Derived.ApproxSpread == nil || *res.Derived.ApproxSpread != 0 {
		t.Errorf("approx spread = %v, want 0", res.Derived.ApproxSpread)
	}
}

// --- HarvestMany Tests ---

func TestHarvestMany_AllDocumentsReported(t *testing.T) {
	h := newTestHarvester(t, nil)
	ids := []string{"shl_ps0202002.htm", "shl_ps0202003.htm", "shl_ps9999999.htm"}

	got := map[string]*Result{}
	for res := range h.HarvestMany(context.Background(), ids, 2) {
		got[res.DocumentID] = res
	}

	if len(got) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(got))
	}
	if got["shl_ps0202002.htm"].Error != nil || got["shl_ps0202003.htm"].Error != nil {
		t.Error("expected fetched documents to succeed")
	}
	if got["shl_ps9999999.htm"].Error == nil {
		t.Error("expected missing document to fail")
	}
}

func TestHarvestMany_CancelledContext(t *testing.T) {
	h := newTestHarvester(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := 0
	for range h.HarvestMany(ctx, []string{"a", "b", "c"}, 1) {
		n++
	}
	if n != 3 {
		t.Errorf("expected a result per document, got %d", n)
	}
}
