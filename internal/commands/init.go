package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/csv2ledger-dev/csv2ledger/internal/rules"
)

func newInitCommand() *cobra.Command {
	var account1 string
	var account2 string
	var force bool

	cmd := &cobra.Command{
		Use:   "init <rules-file>",
		Short: "Write a starter rules file for a new institution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), args[0], account1, account2, force)
		},
	}

	cmd.Flags().StringVar(&account1, "account1", "Assets:Checking", "default account for the tracked side")
	cmd.Flags().StringVar(&account2, "account2", "Expenses:Unknown", "default balancing account")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing rules file")

	return cmd
}

func runInit(out io.Writer, path, account1, account2 string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	cfg := rules.Starter(account1, account2)
	if err := rules.Save(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote starter rules to %s\n", path)
	return nil
}
