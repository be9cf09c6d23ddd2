// Package importer carries raw CSV rows through deduplication, filtering,
// normalization, enrichment, and rendering.
package importer

import (
	"strings"

	"github.com/csv2ledger-dev/csv2ledger/internal/model"
)

// Window reverses rows to chronological order (banks export latest-first)
// and, when a previous marker exists, keeps only the rows strictly after the
// row structurally equal to it. A marker matching nothing means the export
// was rotated: the whole list is returned, failing open instead of silently
// skipping everything.
func Window(rows []model.RawRecord, last model.RawRecord) (window []model.RawRecord, markerFound bool) {
	chrono := make([]model.RawRecord, len(rows))
	for i, r := range rows {
		chrono[len(rows)-1-i] = r
	}

	if last == nil {
		return chrono, false
	}
	for i, r := range chrono {
		if r.Equal(last) {
			return chrono[i+1:], true
		}
	}
	return chrono, false
}

// IsPending reports whether the row's date field marks a not-yet-settled
// transaction. The prefix match covers both the bare "PENDING" and the
// "PENDING - 03/10/2024" export variants.
func IsPending(rec model.RawRecord) bool {
	date := strings.ToUpper(strings.TrimSpace(rec[model.FieldDate]))
	return strings.HasPrefix(date, "PENDING")
}
