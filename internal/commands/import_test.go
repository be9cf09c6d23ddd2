package commands

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csv2ledger-dev/csv2ledger/internal/rules"
	"github.com/csv2ledger-dev/csv2ledger/internal/runlog"
)

const exportCSV = `Date,Description,Amount,Balance
PENDING - 03/13/2024,HOTEL HOLD,-300.00,
03/12/2024,COFFEE SHOP,-4.50,995.50
03/11/2024,GROCERY,-120.00,1000.00
03/10/2024,PAYCHECK,2000.00,1120.00
`

func setupImport(t *testing.T) (dir string, opts importOptions) {
	t.Helper()
	dir = t.TempDir()

	coffee := "Expenses:Coffee"
	cfg := &rules.Config{
		Locale:     "en-US",
		Currency:   "USD",
		DateFormat: "MM/DD/YYYY",
		Fields:     []string{"date", "description", "amount", "balance"},
		Account1:   "Assets:Checking",
		Account2:   "Expenses:Unknown",
		TxRules:    []rules.PatternRule{{Pattern: "COFFEE", Account2: &coffee}},
	}
	rulesPath := filepath.Join(dir, "chase.json")
	require.NoError(t, rules.Save(rulesPath, cfg))

	csvPath := filepath.Join(dir, "chase_march.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(exportCSV), 0o644))

	return dir, importOptions{
		csvPath:     csvPath,
		rulesPath:   rulesPath,
		journalPath: filepath.Join(dir, "journal.ledger"),
	}
}

func TestRunImport_AppendMode(t *testing.T) {
	_, opts := setupImport(t)

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))

	data, err := os.ReadFile(opts.journalPath)
	require.NoError(t, err)
	journal := string(data)

	// Chronological order, oldest first.
	assert.Less(t, strings.Index(journal, "2024-03-10 PAYCHECK"), strings.Index(journal, "2024-03-11 GROCERY"))
	assert.Less(t, strings.Index(journal, "2024-03-11 GROCERY"), strings.Index(journal, "2024-03-12 COFFEE SHOP"))
	assert.Contains(t, journal, "Expenses:Coffee")
	assert.NotContains(t, journal, "HOTEL HOLD")

	// Marker written next to the journal.
	_, err = os.Stat(opts.journalPath + ".marker")
	require.NoError(t, err)

	assert.Contains(t, errOut.String(), "Imported 3")
	assert.Contains(t, errOut.String(), "Skipped 1 pending")
	assert.Empty(t, out.String(), "append mode writes nothing to stdout")
}

func TestRunImport_SecondRunIsIdempotent(t *testing.T) {
	_, opts := setupImport(t)

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))
	first, err := os.ReadFile(opts.journalPath)
	require.NoError(t, err)

	errOut.Reset()
	require.NoError(t, runImport(&out, &errOut, opts))
	second, err := os.ReadFile(opts.journalPath)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "second run must append nothing")
	assert.Contains(t, errOut.String(), "Imported 0")
}

func TestRunImport_StdoutMode(t *testing.T) {
	_, opts := setupImport(t)
	opts.journalPath = ""

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))

	assert.Contains(t, out.String(), "2024-03-10 PAYCHECK")
	assert.Contains(t, out.String(), "Assets:Checking")
}

func TestRunImport_StdoutModePersistsNoMarker(t *testing.T) {
	dir, opts := setupImport(t)
	opts.journalPath = ""

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))
	require.NoError(t, runImport(&out, &errOut, opts))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".marker")
	}
}

func TestRunImport_ExplicitMarkerPath(t *testing.T) {
	dir, opts := setupImport(t)
	opts.markerPath = filepath.Join(dir, "state", "chase.marker")

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))

	_, err := os.Stat(opts.markerPath)
	require.NoError(t, err)
}

func TestRunImport_RunLog(t *testing.T) {
	dir, opts := setupImport(t)
	opts.runLogPath = filepath.Join(dir, "imports.csv")

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))

	entries, err := runlog.Read(opts.runLogPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chase_march.csv", entries[0].Source)
	assert.Equal(t, 3, entries[0].Imported)
	assert.Equal(t, 1, entries[0].SkippedPending)
	assert.True(t, entries[0].MarkerSaved)
}

func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.name", "Test Author"},
		{"config", "user.email", "test@example.com"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestRunImport_GitCommitRelativeSubdir(t *testing.T) {
	dir, opts := setupImport(t)
	initGitRepo(t, dir)
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(oldWD)) })

	opts.journalPath = filepath.Join("books", "journal.ledger")
	opts.gitCommit = true

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))
	assert.Contains(t, errOut.String(), "Committed")

	log := gitOutput(t, dir, "log", "--format=%s", "-1")
	assert.Contains(t, log, "import: 3 transaction(s) from chase_march.csv")

	// The CSV and rules file stay out of the commit.
	status := gitOutput(t, dir, "status", "--porcelain")
	assert.Contains(t, status, "chase_march.csv")
	assert.NotContains(t, status, "journal.ledger")
}

func TestRunImport_GitCommitAbsolutePath(t *testing.T) {
	dir, opts := setupImport(t)
	initGitRepo(t, dir)

	opts.journalPath = filepath.Join(dir, "books", "journal.ledger")
	opts.gitCommit = true

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, opts))

	files := gitOutput(t, dir, "show", "--name-only", "--format=", "HEAD")
	assert.Contains(t, files, "books/journal.ledger")
	assert.Contains(t, files, "books/journal.ledger.marker")
}

func TestRunImport_GitCommitOutsideRepo(t *testing.T) {
	_, opts := setupImport(t)
	opts.gitCommit = true

	var out, errOut bytes.Buffer
	err := runImport(&out, &errOut, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not inside a git repository")
}

func TestRunImport_MissingRules(t *testing.T) {
	_, opts := setupImport(t)
	opts.rulesPath = filepath.Join(t.TempDir(), "missing.json")

	var out, errOut bytes.Buffer
	assert.Error(t, runImport(&out, &errOut, opts))
}

func TestRunImport_MalformedCSVIsFatal(t *testing.T) {
	_, opts := setupImport(t)
	require.NoError(t, os.WriteFile(opts.csvPath, []byte("Date,Description\nonly-one-field\n"), 0o644))

	var out, errOut bytes.Buffer
	err := runImport(&out, &errOut, opts)
	require.Error(t, err)

	// No partial journal on a structural error.
	_, statErr := os.Stat(opts.journalPath)
	assert.True(t, os.IsNotExist(statErr))
}
