// Package psle provides the public API for harvesting PSLE school results:
// fetch results pages, parse them into records and derive features.
package psle

import (
	"time"

	"github.com/jmylchreest/psle/pkg/fetcher"
	"github.com/jmylchreest/psle/pkg/report"
)

// DefaultBaseURL is the directory holding the 2022 PSLE school pages.
const DefaultBaseURL = "https://onlinesys.necta.go.tz/results/2022/psle/results/"

// Config holds all harvester configuration.
type Config struct {
	// Document location
	BaseURL string

	// Fetch settings, used when no Fetcher is injected
	Timeout     time.Duration
	Retries     uint
	Backoff     time.Duration
	MaxBodySize int

	// RateLimit caps page requests per second across all workers
	// (0 = unlimited).
	RateLimit float64

	// Parsing
	Parser   report.Config
	Reporter report.Reporter

	// Injected collaborators
	Fetcher fetcher.Fetcher
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	fc := fetcher.DefaultStaticConfig()
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: fc.Timeout,
		Retries: fc.Retries,
		Backoff: fc.Backoff,
		Parser:  report.DefaultConfig(),
	}
}

// Option configures the harvester.
type Option func(*Config)

// WithBaseURL sets the URL document ids are resolved against.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRetries sets how many times a failed fetch is retried.
func WithRetries(n uint) Option {
	return func(c *Config) {
		c.Retries = n
	}
}

// WithBackoff sets the initial delay between fetch retries.
func WithBackoff(d time.Duration) Option {
	return func(c *Config) {
		c.Backoff = d
	}
}

// WithMaxBodySize caps the size of a fetched page in bytes.
func WithMaxBodySize(n int) Option {
	return func(c *Config) {
		c.MaxBodySize = n
	}
}

// WithRateLimit caps page requests per second. Zero or less disables the cap.
func WithRateLimit(rps float64) Option {
	return func(c *Config) {
		c.RateLimit = rps
	}
}

// WithParserConfig replaces the page layout the parser expects.
func WithParserConfig(cfg report.Config) Option {
	return func(c *Config) {
		c.Parser = cfg
	}
}

// WithReporter sends parse diagnostics to r instead of the log.
func WithReporter(r report.Reporter) Option {
	return func(c *Config) {
		c.Reporter = r
	}
}

// WithFetcher injects a fetcher; the timeout, retry and size settings are
// then ignored.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}
