package ledger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Append appends rendered output to the journal file, creating it (and its
// directory) on first use. The caller is responsible for writing the marker
// only after this returns nil.
func Append(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, content); err != nil {
		return fmt.Errorf("appending to journal: %w", err)
	}
	return nil
}
