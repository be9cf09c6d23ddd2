// Package marker persists the last imported raw row across runs.
package marker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/csv2ledger-dev/csv2ledger/internal/model"
)

// Load reads the marker file: the JSON serialization of exactly one raw row.
// A missing or unreadable file means no marker; first runs and corrupt files
// fail open into a full import rather than aborting.
func Load(path string) model.RawRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var rec model.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if len(rec) == 0 {
		return nil
	}
	return rec
}

// Save atomically replaces the marker file (write temp, then rename), so a
// crash mid-write leaves the previous marker intact.
func Save(path string, rec model.RawRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating marker dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling marker: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing marker: %w", err)
	}
	return nil
}
