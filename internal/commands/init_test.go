package commands

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csv2ledger-dev/csv2ledger/internal/rules"
)

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chase.json")

	var out bytes.Buffer
	require.NoError(t, runInit(&out, path, "Assets:Checking", "Expenses:Unknown", false))
	assert.Contains(t, out.String(), "Wrote starter rules to "+path)

	cfg, err := rules.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Assets:Checking", cfg.Account1)
	assert.Equal(t, "Expenses:Unknown", cfg.Account2)
	require.NoError(t, cfg.Validate())
}

func TestRunInit_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chase.yaml")
	require.NoError(t, runInit(io.Discard, path, "Assets:Checking", "Expenses:Unknown", false))

	_, err := rules.Load(path)
	require.NoError(t, err)
}

func TestRunInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chase.json")
	require.NoError(t, runInit(io.Discard, path, "a", "b", false))

	err := runInit(io.Discard, path, "a", "b", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRunInit_ForceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chase.json")
	require.NoError(t, runInit(io.Discard, path, "a", "b", false))
	require.NoError(t, runInit(io.Discard, path, "Assets:Joint", "Expenses:Unknown", true))

	cfg, err := rules.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Assets:Joint", cfg.Account1)
}
