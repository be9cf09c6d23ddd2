// Package ledger renders transactions as plaintext double-entry journal
// blocks and appends them to a journal file.
package ledger

import (
	"strings"
	"unicode/utf8"

	"github.com/csv2ledger-dev/csv2ledger/internal/model"
	"github.com/csv2ledger-dev/csv2ledger/internal/money"
)

const (
	// DefaultAccountWidth is the minimum width of the account column, so
	// amounts line up across entries with differently sized account names.
	DefaultAccountWidth = 46

	balanceWidth = 12
	indent       = "    "
	dateLayout   = "2006-01-02"
)

// Formatter renders enriched transactions as aligned ledger blocks.
type Formatter struct {
	money        *money.Formatter
	accountWidth int
}

// NewFormatter creates a Formatter using the given amount formatter and the
// default account column width.
func NewFormatter(m *money.Formatter) *Formatter {
	return &Formatter{money: m, accountWidth: DefaultAccountWidth}
}

// Render produces one ledger block:
//
//	<date> <payee>[  ; <comment>]
//	    <account1>  <-amount>[ = <balance>]
//	    <account2>  <+amount>
//
// The account1 posting carries the negated amount and the account2 posting
// the amount itself, so the two postings always sum to zero. Both amounts are
// right-aligned to the wider of the two formatted strings.
func (f *Formatter) Render(tx model.Transaction) string {
	var b strings.Builder

	b.WriteString(tx.Date.Format(dateLayout))
	b.WriteByte(' ')
	b.WriteString(tx.Payee)
	if tx.Comment != "" {
		b.WriteString("  ; ")
		b.WriteString(tx.Comment)
	}
	b.WriteByte('\n')

	neg := f.money.Format(tx.Amount.Neg())
	pos := f.money.Format(tx.Amount)
	amountWidth := max(runeLen(neg), runeLen(pos))
	accountWidth := max(f.accountWidth, runeLen(tx.Account1), runeLen(tx.Account2))

	b.WriteString(indent)
	b.WriteString(padRight(tx.Account1, accountWidth))
	b.WriteByte(' ')
	b.WriteString(padLeft(neg, amountWidth))
	if tx.Balance.Valid {
		b.WriteString(" = ")
		b.WriteString(padLeft(f.money.Format(tx.Balance.Decimal), balanceWidth))
	}
	b.WriteByte('\n')

	b.WriteString(indent)
	b.WriteString(padRight(tx.Account2, accountWidth))
	b.WriteByte(' ')
	b.WriteString(padLeft(pos, amountWidth))
	b.WriteByte('\n')

	return b.String()
}

// Join concatenates pre-rendered blocks with blank separator lines.
func Join(blocks []string) string {
	var b strings.Builder
	for _, block := range blocks {
		b.WriteString(block)
		b.WriteByte('\n')
	}
	return b.String()
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func padRight(s string, width int) string {
	if n := width - runeLen(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := width - runeLen(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
