package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/psle"
	"github.com/jmylchreest/psle/pkg/report"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Extract school records from saved results pages",
	Long: `Extract school records from results pages already on disk.

The document id of each page is its file name. Records are written in the
order the files are given.

Examples:
  psle parse pages/shl_ps1104063.htm
  psle parse --format jsonl pages/*.htm > schools.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().IntP("concurrency", "c", 0, "files parsed concurrently (default: concurrency setting)")
}

func runParse(cmd *cobra.Command, args []string) error {
	parserCfg, err := parserConfig()
	if err != nil {
		return err
	}

	h, err := psle.New(psle.WithParserConfig(parserCfg))
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer func() { _ = h.Close() }()

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency < 1 {
		concurrency = max(viper.GetInt("concurrency"), 1)
	}

	results := make([]*psle.Result, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)

	for i, path := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified input files
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			results[i] = h.Parse(report.Document{ID: filepath.Base(path), HTML: string(data)})
			logger.Debug("parsed document", "path", path, "diagnostics", len(results[i].Diagnostics))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("parse failed", "error", err)
		return err
	}

	w, closeOutput, err := openWriter(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	partial := 0
	for _, res := range results {
		if len(res.Diagnostics) > 0 {
			partial++
		}
		if err := w.Write(res); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	logger.Info("parse complete", "documents", len(results), "partial", partial)

	return closeOutput()
}
