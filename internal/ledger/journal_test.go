package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books", "journal.ledger")
	require.NoError(t, Append(path, "2024-03-12 Corner Cafe\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-12 Corner Cafe\n", string(data))
}

func TestAppend_AppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.ledger")
	require.NoError(t, Append(path, "first\n"))
	require.NoError(t, Append(path, "second\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
