package model

import "maps"

// Well-known field names the rules file can assign to CSV columns. Any other
// name is carried through untouched and only matters to predicate rules.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldAmountIn    = "amount-in"
	FieldAmountOut   = "amount-out"
	FieldBalance     = "balance"
)

// RawRecord is one CSV row, keyed by the field names the rules file assigns
// positionally. Values are kept verbatim; nothing is trimmed or normalized.
type RawRecord map[string]string

// Equal reports exact field-by-field equality. Two rows differing only in a
// trailing space are distinct.
func (r RawRecord) Equal(other RawRecord) bool {
	return maps.Equal(r, other)
}

// Clone returns an independent copy of the record.
func (r RawRecord) Clone() RawRecord {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}
