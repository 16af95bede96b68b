// hai3 CLI - exercises the SDK's protocol chains from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:           "hai3",
		Short:         "HAI3 API client SDK command line",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("profile", "p", "", "path to a profile file (JSON or YAML)")
	root.PersistentFlags().String("log-level", "", "override the profile log level (debug, info, warn, error)")

	root.AddCommand(newRequestCmd())
	root.AddCommand(newStreamCmd())
	root.AddCommand(newMocksCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
