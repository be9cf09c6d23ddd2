package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/csv2ledger-dev/csv2ledger/internal/gitops"
	"github.com/csv2ledger-dev/csv2ledger/internal/importer"
	"github.com/csv2ledger-dev/csv2ledger/internal/ledger"
	"github.com/csv2ledger-dev/csv2ledger/internal/marker"
	"github.com/csv2ledger-dev/csv2ledger/internal/model"
	"github.com/csv2ledger-dev/csv2ledger/internal/predicate"
	"github.com/csv2ledger-dev/csv2ledger/internal/records"
	"github.com/csv2ledger-dev/csv2ledger/internal/rules"
	"github.com/csv2ledger-dev/csv2ledger/internal/runlog"
)

type importOptions struct {
	csvPath     string
	rulesPath   string
	journalPath string
	markerPath  string
	runLogPath  string
	gitCommit   bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import a bank CSV export as ledger entries",
		Long: `Import converts a bank CSV export into double-entry ledger blocks using an
institution rules file. With --journal the blocks are appended to the journal
and the last imported row is remembered, so re-running on an overlapping
export imports only new rows. Without --journal the blocks go to stdout and
nothing is remembered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.csvPath = args[0]
			return runImport(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "institution rules file, JSON or YAML (required)")
	_ = cmd.MarkFlagRequired("rules")
	cmd.Flags().StringVar(&opts.journalPath, "journal", "", "journal file to append to (default: write to stdout)")
	cmd.Flags().StringVar(&opts.markerPath, "marker", "", "marker file (default: <journal>.marker)")
	cmd.Flags().StringVar(&opts.runLogPath, "run-log", "", "CSV audit log of import runs")
	cmd.Flags().BoolVar(&opts.gitCommit, "git-commit", false, "commit the journal and marker after a successful append")

	return cmd
}

func runImport(out, errOut io.Writer, opts importOptions) error {
	cfg, err := rules.Load(opts.rulesPath)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.csvPath)
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	rows, err := records.Parse(f, cfg.Fields)
	f.Close()
	if err != nil {
		return err
	}

	appendMode := opts.journalPath != ""
	markerPath := opts.markerPath
	if markerPath == "" && appendMode {
		markerPath = opts.journalPath + ".marker"
	}

	last := marker.Load(markerPath)

	pipe, err := importer.New(cfg, predicate.Logic{})
	if err != nil {
		return err
	}
	res, err := pipe.Run(rows, last)
	if err != nil {
		return err
	}

	output := ledger.Join(res.Blocks)
	markerSaved := false

	if appendMode {
		if len(res.Blocks) > 0 {
			if err := ledger.Append(opts.journalPath, output); err != nil {
				return err
			}
			// Only after the append succeeded; a crash in between means the
			// next run re-imports these rows rather than losing them.
			if err := marker.Save(markerPath, res.Marker); err != nil {
				return err
			}
			markerSaved = true
		}
	} else if len(res.Blocks) > 0 {
		if _, err := io.WriteString(out, output); err != nil {
			return err
		}
	}

	if opts.runLogPath != "" {
		entry := runlog.Entry{
			Timestamp:      time.Now().UTC(),
			Source:         filepath.Base(opts.csvPath),
			Imported:       res.Stats.Imported,
			SkippedPending: res.Stats.SkippedPending,
			SkippedBadDate: res.Stats.SkippedBadDate,
			MarkerSaved:    markerSaved,
		}
		if err := runlog.Append(opts.runLogPath, []runlog.Entry{entry}); err != nil {
			return err
		}
	}

	if appendMode && opts.gitCommit && markerSaved {
		root, err := gitops.Root(filepath.Dir(opts.journalPath))
		if err != nil {
			return fmt.Errorf("--git-commit: %w", err)
		}
		journalRel, err := repoRel(root, opts.journalPath)
		if err != nil {
			return fmt.Errorf("--git-commit: %w", err)
		}
		markerRel, err := repoRel(root, markerPath)
		if err != nil {
			return fmt.Errorf("--git-commit: %w", err)
		}
		msg := fmt.Sprintf("import: %d transaction(s) from %s", res.Stats.Imported, filepath.Base(opts.csvPath))
		hash, err := gitops.Commit(root, msg, journalRel, markerRel)
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Committed %s\n", hash)
	}

	printSummary(errOut, opts.csvPath, res, last)
	return nil
}

// repoRel converts a user-supplied path to a pathspec relative to the
// repository root, which is where the git commands run. Paths outside the
// work tree are rejected rather than turned into ../ pathspecs.
func repoRel(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// git reports the root with symlinks resolved; match that before Rel.
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, root)
	}
	return rel, nil
}

func printSummary(w io.Writer, csvPath string, res *importer.Result, last model.RawRecord) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Fprintf(w, "Imported %d transaction(s) from %s\n", res.Stats.Imported, filepath.Base(csvPath))
	if res.Stats.SkippedPending > 0 {
		yellow.Fprintf(w, "Skipped %d pending row(s)\n", res.Stats.SkippedPending)
	}
	if res.Stats.SkippedBadDate > 0 {
		yellow.Fprintf(w, "Skipped %d row(s) with unparseable dates\n", res.Stats.SkippedBadDate)
	}
	if last != nil && !res.Stats.MarkerFound {
		yellow.Fprintln(w, "Previous marker not found in this export; imported the full file")
	}
}
