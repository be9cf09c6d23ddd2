package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a normalized, enriched bank transaction ready for rendering.
// Amount is signed from account1's perspective: the account1 posting carries
// -Amount and the account2 posting carries +Amount.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.NullDecimal
	Payee       string
	Comment     string
	Account1    string
	Account2    string
}
