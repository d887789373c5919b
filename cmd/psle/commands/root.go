// Package commands implements the CLI commands for psle.
package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/internal/output"
	"github.com/jmylchreest/psle/pkg/report"
)

var rootCmd = &cobra.Command{
	Use:   "psle",
	Short: "Harvest PSLE school results into a dataset",
	Long: `psle extracts school records from NECTA PSLE results pages and
derives statistical features from them.

Examples:
  # Harvest two schools
  psle scrape --id shl_ps1104063.htm --id shl_ps1104064.htm

  # Discover every school from the national index and write JSONL
  psle scrape --index https://onlinesys.necta.go.tz/results/2022/psle/psle.htm \
      --format jsonl -o schools.jsonl

  # Parse pages already on disk
  psle parse pages/*.htm

  # Flag schools with unusual averages
  psle outliers --field average_score --method iqr schools.jsonl`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogger,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.psle.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("json-logs", false, "log as JSON")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().String("format", "json", "output format: json, jsonl, yaml")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))

	viper.SetDefault("log_level", "")
	viper.SetDefault("base_url", "https://onlinesys.necta.go.tz/results/2022/psle/results/")
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("retries", 3)
	viper.SetDefault("backoff", time.Second)
	viper.SetDefault("concurrency", 3)
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".psle")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PSLE")
	viper.AutomaticEnv()

	// A missing config file is fine.
	_ = viper.ReadInConfig()
}

func initLogger(_ *cobra.Command, _ []string) error {
	return logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("json_logs"),
		Level: viper.GetString("log_level"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// parserConfig returns the page layout, with any "parser" section of the
// config file laid over the defaults.
func parserConfig() (report.Config, error) {
	cfg := report.DefaultConfig()
	if err := viper.UnmarshalKey("parser", &cfg); err != nil {
		return cfg, fmt.Errorf("invalid parser config: %w", err)
	}
	return cfg, nil
}

// openWriter creates the output writer selected by --output and --format. The
// returned close function closes the writer, then the file, and is safe to
// call more than once.
func openWriter(cmd *cobra.Command) (output.Writer, func() error, error) {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return nil, nil, err
	}

	var dst io.Writer = cmd.OutOrStdout()
	var file *os.File
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		file, err = os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			return nil, nil, fmt.Errorf("create output file: %w", err)
		}
		dst = file
	}

	w, err := output.NewWriter(dst, format)
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, nil, err
	}

	closed := false
	closeFn := func() error {
		if closed {
			return nil
		}
		closed = true
		err := w.Close()
		if file != nil {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}
	return w, closeFn, nil
}
