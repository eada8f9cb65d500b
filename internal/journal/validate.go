package journal

import (
	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Validate checks the fields of a posting that can be judged without the store:
// a date, a positive amount with at most two decimal places and two distinct accounts.
func Validate(t model.Transaction) error {
	if t.Date.IsZero() {
		return model.Invalid("date", "is required")
	}
	if !t.Amount.IsPositive() {
		return model.Invalid("amount", "must be positive, got %s", t.Amount)
	}
	if cents := t.Amount.Mul(hundred); !cents.Equal(cents.Floor()) {
		return model.Invalid("amount", "%s has more than 2 decimal places", t.Amount)
	}
	if t.DebitAccount <= 0 {
		return model.Invalid("debit_account", "is required")
	}
	if t.CreditAccount <= 0 {
		return model.Invalid("credit_account", "is required")
	}
	if t.DebitAccount == t.CreditAccount {
		return model.Invalid("credit_account", "must differ from the debit account (%d)", t.DebitAccount)
	}
	return nil
}
