package main

import (
	"os"

	"github.com/csv2ledger-dev/csv2ledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
