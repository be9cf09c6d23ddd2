// Package records maps CSV rows to named-field records.
package records

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/csv2ledger-dev/csv2ledger/internal/model"
)

// Parse reads a bank CSV export and returns one RawRecord per data row, in
// the file's native order (banks export latest-first). Column identity comes
// from the rules file's fields list by position; the CSV's own header row is
// skipped. A malformed row is fatal: nothing downstream should run on a
// structurally broken export.
func Parse(r io.Reader, fields []string) ([]model.RawRecord, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields configured")
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(fields)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	// Skip header row.
	recs := make([]model.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(model.RawRecord, len(fields))
		for i, name := range fields {
			rec[name] = row[i]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
