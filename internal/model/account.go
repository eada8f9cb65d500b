package model

import "github.com/shopspring/decimal"

// Kind is the normal side of an account.
type Kind string

const (
	KindDebit  Kind = "debito"
	KindCredit Kind = "credito"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDebit || k == KindCredit
}

// SpecificType classifies an account for statement purposes.
type SpecificType string

const (
	TypeExpenses    SpecificType = "despesas"
	TypeAssets      SpecificType = "ativos"
	TypePurchases   SpecificType = "compras"
	TypeLiabilities SpecificType = "passivos"
	TypeRevenue     SpecificType = "entradas"
	TypeSales       SpecificType = "vendas"
	TypeEquity      SpecificType = "patrimonio"
)

// SpecificTypes lists every specific type in display order.
var SpecificTypes = []SpecificType{
	TypeAssets, TypeLiabilities, TypeEquity, TypeRevenue, TypeSales, TypeExpenses, TypePurchases,
}

// Valid reports whether t is a known specific type.
func (t SpecificType) Valid() bool {
	for _, st := range SpecificTypes {
		if t == st {
			return true
		}
	}
	return false
}

// DefaultKind returns the normal side for accounts of type t.
func (t SpecificType) DefaultKind() Kind {
	switch t {
	case TypeExpenses, TypeAssets, TypePurchases:
		return KindDebit
	default:
		return KindCredit
	}
}

// Subtypes returns the subtypes allowed for t. Types without subtypes return nil.
func (t SpecificType) Subtypes() []Subtype {
	switch t {
	case TypeAssets:
		return []Subtype{SubtypeCurrent, SubtypeFixed}
	case TypeLiabilities:
		return []Subtype{SubtypeCurrent, SubtypeNonCurrent}
	default:
		return nil
	}
}

// AllowsSubtype reports whether s is a legal subtype for t.
func (t SpecificType) AllowsSubtype(s Subtype) bool {
	allowed := t.Subtypes()
	if len(allowed) == 0 {
		return s == SubtypeNone
	}
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// Subtype refines assets and liabilities for the balance sheet.
type Subtype string

const (
	SubtypeNone       Subtype = ""
	SubtypeCurrent    Subtype = "circulante"
	SubtypeFixed      Subtype = "fixo"
	SubtypeNonCurrent Subtype = "não-circulante"
)

// Account is a row of the chart of accounts.
//
// Balance is the cached running total as stored: credits add, debits subtract.
// Use NormalBalance for the figure on the account's normal side.
type Account struct {
	ID             int             `db:"id"`
	Name           string          `db:"name"`
	NormalizedName string          `db:"normalized_name"`
	Kind           Kind            `db:"type"`
	SpecificType   SpecificType    `db:"specific_type"`
	Subtype        Subtype         `db:"specific_subtype"`
	CategoryID     int             `db:"category_id"` // 0 = uncategorized
	Balance        decimal.Decimal `db:"balance"`
}

// NormalBalance returns the balance signed by the account's kind, so a debit-normal
// account with more debits than credits is positive.
func (a Account) NormalBalance() decimal.Decimal {
	if a.Kind == KindDebit {
		return a.Balance.Neg()
	}
	return a.Balance
}

// Category groups accounts for display. It has no balance semantics.
type Category struct {
	ID             int    `db:"id"`
	Name           string `db:"name"`
	NormalizedName string `db:"normalized_name"`
	Description    string `db:"description"`
}
