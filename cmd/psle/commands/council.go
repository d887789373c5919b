package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/features"
)

var councilCmd = &cobra.Command{
	Use:   "council [name]...",
	Short: "Classify councils as urban or rural",
	Long: `Classify councils as urban or rural from the acronym ending their name.

Names are taken from the arguments, or one per line from stdin when there are
none. Councils ending in one of --urban are urban, all others rural.

Examples:
  psle council "ILALA MC" "BAGAMOYO DC"
  psle council --urban CC,MC,TC,MjC < councils.txt`,
	RunE: runCouncil,
}

func init() {
	rootCmd.AddCommand(councilCmd)
	councilCmd.Flags().StringSlice("urban", features.DefaultUrbanAcronyms, "acronyms of urban councils")
	_ = viper.BindPFlag("urban_acronyms", councilCmd.Flags().Lookup("urban"))
	viper.SetDefault("urban_acronyms", features.DefaultUrbanAcronyms)
}

// councilClass is one classified council.
type councilClass struct {
	Council string `json:"council" yaml:"council"`
	Type    string `json:"type" yaml:"type"`
}

func runCouncil(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		var err error
		if names, err = readLines(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("read councils: %w", err)
		}
	}

	w, closeOutput, err := openWriter(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	urban := 0
	for _, c := range classifyCouncils(names, viper.GetStringSlice("urban_acronyms")) {
		if c.Type == features.Urban {
			urban++
		}
		if err := w.Write(c); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	logger.Info("councils classified", "councils", len(names), "urban", urban)

	return closeOutput()
}

func classifyCouncils(names, acronyms []string) []councilClass {
	out := make([]councilClass, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		out[i] = councilClass{Council: n, Type: features.CouncilType(n, acronyms)}
	}
	return out
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
