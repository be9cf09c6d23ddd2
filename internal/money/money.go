// Package money parses and formats locale-dependent currency amounts.
package money

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/csv2ledger-dev/csv2ledger/internal/model"
)

// DecimalSeparator returns the decimal mark used for numbers in the given
// locale, discovered by formatting zero with one fractional digit and picking
// out the non-digit rune.
func DecimalSeparator(tag language.Tag) rune {
	s := message.NewPrinter(tag).Sprintf("%v", number.Decimal(0.0, number.Scale(1)))
	for _, r := range s {
		// Locales rendering non-Latin digits still mark the fraction with a
		// non-digit rune.
		if !unicode.IsDigit(r) {
			return r
		}
	}
	return '.'
}

// ParseCurrency converts a locale-formatted currency string to a decimal
// amount. Every rune except digits, '-', and the locale's decimal separator is
// stripped (currency symbols, spaces, and grouping separators are never the
// decimal separator), the separator is canonicalized to '.', and the rest must
// parse as a number.
func ParseCurrency(text string, tag language.Tag) (decimal.Decimal, error) {
	sep := DecimalSeparator(tag)

	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == sep:
			b.WriteByte('.')
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", text, err)
	}
	return d, nil
}

// ResolveAmount picks the signed amount for a record, from account1's
// perspective. Precedence: a signed "amount" column wins; otherwise
// "amount-in" (negated) or "amount-out" for institutions that split inflow and
// outflow into unsigned columns; otherwise zero.
func ResolveAmount(rec model.RawRecord, tag language.Tag) (decimal.Decimal, error) {
	if v := strings.TrimSpace(rec[model.FieldAmount]); v != "" {
		return ParseCurrency(v, tag)
	}
	if v := strings.TrimSpace(rec[model.FieldAmountIn]); v != "" {
		d, err := ParseCurrency(v, tag)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return d.Neg(), nil
	}
	if v := strings.TrimSpace(rec[model.FieldAmountOut]); v != "" {
		return ParseCurrency(v, tag)
	}
	return decimal.Zero, nil
}
