// Package cli implements the apod-api command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apod-api",
	Short: "Astronomy Picture of the Day API with a persistent cache",
	Long: `Serves NASA Astronomy Picture of the Day records by date or date range.
Records are looked up in the configured store first and fetched from the
upstream API only when missing. Configuration is read from the environment
(and a .env file when present).`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
