package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csv2ledger-dev/csv2ledger/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "csv2ledger",
		Short:   "Convert bank CSV exports to double-entry ledger journals",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}
