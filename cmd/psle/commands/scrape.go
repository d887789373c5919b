package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/psle/internal/discover"
	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/fetcher"
	"github.com/jmylchreest/psle/pkg/psle"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch results pages and extract school records",
	Long: `Fetch PSLE school results pages and extract one record per school.

Pages are named by document id (the page file name, e.g. shl_ps1104063.htm)
and resolved against --base-url, or discovered from a results index page
with --index. Discovered pages outside --base-url keep their full URL as
document id.

Examples:
  psle scrape --id shl_ps1104063.htm
  psle scrape --index https://onlinesys.necta.go.tz/results/2022/psle/psle.htm --max-depth 2`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Inputs
	flags.StringSlice("id", nil, "document id(s) to fetch (can be repeated)")
	flags.String("index", "", "results index page to discover school pages from")
	flags.Int("max-depth", discover.DefaultConfig().MaxDepth, "index link depth to follow below --index")
	flags.Int("max-pages", 0, "max index pages to fetch (0=unlimited)")
	flags.Int("max-documents", 0, "max school pages to fetch (0=unlimited)")

	// Fetch settings
	flags.String("base-url", "", "URL document ids are resolved against")
	flags.Duration("timeout", 0, "request timeout")
	flags.Uint("retries", 0, "retries per failed request")
	flags.Duration("backoff", 0, "initial delay between retries (doubles each retry)")
	flags.String("max-document-size", "0", "max page size (e.g. 512KB, 2MB, 0=colly default)")
	flags.Duration("delay", 200*time.Millisecond, "delay between index page requests")
	flags.IntP("concurrency", "c", 0, "concurrent page fetches")
	flags.Float64("rate", 0, "max school page requests per second (0=unlimited)")

	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("retries", flags.Lookup("retries"))
	_ = viper.BindPFlag("backoff", flags.Lookup("backoff"))
	_ = viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("rate", flags.Lookup("rate"))
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ids, _ := cmd.Flags().GetStringSlice("id")
	index, _ := cmd.Flags().GetString("index")
	if len(ids) == 0 && index == "" {
		return cmd.Help()
	}

	maxSize, err := parseByteSize(cmd.Flag("max-document-size").Value.String())
	if err != nil {
		return err
	}

	parserCfg, err := parserConfig()
	if err != nil {
		return err
	}

	f := fetcher.NewStatic(fetcher.StaticConfig{
		Timeout:     viper.GetDuration("timeout"),
		Retries:     viper.GetUint("retries"),
		Backoff:     viper.GetDuration("backoff"),
		MaxBodySize: maxSize,
	})

	h, err := psle.New(
		psle.WithBaseURL(viper.GetString("base_url")),
		psle.WithFetcher(f),
		psle.WithRateLimit(viper.GetFloat64("rate")),
		psle.WithParserConfig(parserCfg),
	)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer func() { _ = h.Close() }()

	if index != "" {
		links, err := discoverDocuments(ctx, cmd, f, index)
		if err != nil {
			logger.Error("discovery failed", "index", index, "error", err)
			return err
		}
		ids = append(ids, documentIDs(h, links)...)
	}
	if maxDocs, _ := cmd.Flags().GetInt("max-documents"); maxDocs > 0 && len(ids) > maxDocs {
		ids = ids[:maxDocs]
	}

	w, closeOutput, err := openWriter(cmd)
	if err != nil {
		logger.Error("failed to open output", "error", err)
		return err
	}
	defer func() { _ = closeOutput() }()

	concurrency := viper.GetInt("concurrency")
	logger.Info("starting harvest", "documents", len(ids), "concurrency", concurrency)

	var fetched, failed, partial, diagnostics int
	for res := range h.HarvestMany(ctx, ids, concurrency) {
		if res.Error != nil {
			failed++
			logger.Warn("document failed", "document", res.DocumentID, "error", res.Error)
			continue
		}
		fetched++
		diagnostics += len(res.Diagnostics)
		if len(res.Diagnostics) > 0 {
			partial++
		}
		if err := w.Write(res); err != nil {
			logger.Error("failed to write output", "error", err)
			return err
		}
	}

	logger.Info("harvest complete",
		"extracted", fetched,
		"partial", partial,
		"diagnostics", diagnostics,
		"failed", failed)

	if err := closeOutput(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func discoverDocuments(ctx context.Context, cmd *cobra.Command, f fetcher.Fetcher, index string) ([]discover.Link, error) {
	cfg := discover.DefaultConfig()
	cfg.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	cfg.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	cfg.Delay, _ = cmd.Flags().GetDuration("delay")

	links, err := discover.Walk(ctx, f, index, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered school pages", "index", index, "documents", humanize.Comma(int64(len(links))))
	return links, nil
}

// documentIDs names discovered pages by file name when that resolves to the
// same page under the harvester's base URL, and by absolute URL otherwise.
func documentIDs(h *psle.Harvester, links []discover.Link) []string {
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.URL
		if u, err := h.URL(l.ID); err == nil && u == l.URL {
			ids[i] = l.ID
		}
	}
	return ids
}

// parseByteSize parses a human byte size such as "512KB". "" and "0" mean no
// limit.
func parseByteSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int(n), nil
}
