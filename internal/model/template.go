package model

import "github.com/shopspring/decimal"

// TemplateLine is one posting of a transaction template.
type TemplateLine struct {
	Description   string          `json:"description"`
	DebitAccount  int             `json:"debit_account"`
	CreditAccount int             `json:"credit_account"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransactionTemplate is a named, ordered list of postings executed together.
type TransactionTemplate struct {
	ID    int
	Name  string
	Lines []TemplateLine
}
