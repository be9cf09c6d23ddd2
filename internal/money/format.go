package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts in a locale and currency. An unrecognized ISO
// code degrades to "<amount> <code>" instead of failing, so one bad rules
// file cannot abort a run mid-render.
type Formatter struct {
	code    string
	unit    currency.Unit
	valid   bool
	printer *message.Printer
}

// NewFormatter creates a Formatter for the locale tag and ISO 4217 code.
func NewFormatter(tag language.Tag, code string) *Formatter {
	f := &Formatter{code: code, printer: message.NewPrinter(tag)}
	if unit, err := currency.ParseISO(code); err == nil {
		f.unit = unit
		f.valid = true
	}
	return f
}

// Format renders d as a currency string, or the numeric fallback when the
// currency code did not parse.
func (f *Formatter) Format(d decimal.Decimal) string {
	if !f.valid {
		return d.StringFixed(2) + " " + f.code
	}
	v, _ := d.Float64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}
