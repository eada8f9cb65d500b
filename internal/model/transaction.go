package model

import (
	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
)

// Transaction is one posted double-entry: Amount debited to DebitAccount and credited to
// CreditAccount on Date.
type Transaction struct {
	ID            int             `db:"id"`
	Date          date.Date       `db:"date"`
	Description   string          `db:"description"`
	DebitAccount  int             `db:"debit_account"`
	CreditAccount int             `db:"credit_account"`
	Amount        decimal.Decimal `db:"amount"`
}

// Touches reports whether the transaction debits or credits accountID.
func (t Transaction) Touches(accountID int) bool {
	return t.DebitAccount == accountID || t.CreditAccount == accountID
}

// Sums holds debit and credit totals for one account over a date window.
type Sums struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Add accumulates t into s from the perspective of accountID.
func (s *Sums) Add(t Transaction, accountID int) {
	if t.DebitAccount == accountID {
		s.Debits = s.Debits.Add(t.Amount)
	}
	if t.CreditAccount == accountID {
		s.Credits = s.Credits.Add(t.Amount)
	}
}

// DebitNet returns debits minus credits.
func (s Sums) DebitNet() decimal.Decimal { return s.Debits.Sub(s.Credits) }

// CreditNet returns credits minus debits.
func (s Sums) CreditNet() decimal.Decimal { return s.Credits.Sub(s.Debits) }
