package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/psle/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if short, _ := cmd.Flags().GetBool("short"); short {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get().Short())
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "print the version only")
}
