package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/NiinoTM/EasyAccounts/internal/date"
)

func TestDefaultKind(t *testing.T) {
	tests := []struct {
		typ  SpecificType
		want Kind
	}{
		{TypeExpenses, KindDebit},
		{TypeAssets, KindDebit},
		{TypePurchases, KindDebit},
		{TypeLiabilities, KindCredit},
		{TypeRevenue, KindCredit},
		{TypeSales, KindCredit},
		{TypeEquity, KindCredit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.DefaultKind(), "DefaultKind(%s)", tt.typ)
	}
}

func TestAllowsSubtype(t *testing.T) {
	assert.True(t, TypeAssets.AllowsSubtype(SubtypeFixed))
	assert.True(t, TypeAssets.AllowsSubtype(SubtypeCurrent))
	assert.False(t, TypeAssets.AllowsSubtype(SubtypeNonCurrent))
	assert.False(t, TypeAssets.AllowsSubtype(SubtypeNone))
	assert.True(t, TypeLiabilities.AllowsSubtype(SubtypeNonCurrent))
	assert.False(t, TypeLiabilities.AllowsSubtype(SubtypeFixed))
	assert.True(t, TypeRevenue.AllowsSubtype(SubtypeNone))
	assert.False(t, TypeRevenue.AllowsSubtype(SubtypeCurrent))
	assert.False(t, SpecificType("misc").Valid())
}

func TestNormalBalance(t *testing.T) {
	a := Account{Kind: KindDebit, Balance: decimal.NewFromInt(-300)}
	assert.True(t, a.NormalBalance().Equal(decimal.NewFromInt(300)))

	b := Account{Kind: KindCredit, Balance: decimal.NewFromInt(700)}
	assert.True(t, b.NormalBalance().Equal(decimal.NewFromInt(700)))
}

func TestSums(t *testing.T) {
	var s Sums
	s.Add(Transaction{DebitAccount: 1, CreditAccount: 2, Amount: decimal.NewFromInt(100)}, 1)
	s.Add(Transaction{DebitAccount: 2, CreditAccount: 1, Amount: decimal.NewFromInt(30)}, 1)
	s.Add(Transaction{DebitAccount: 3, CreditAccount: 2, Amount: decimal.NewFromInt(999)}, 1)

	assert.True(t, s.Debits.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.Credits.Equal(decimal.NewFromInt(30)))
	assert.True(t, s.DebitNet().Equal(decimal.NewFromInt(70)))
	assert.True(t, s.CreditNet().Equal(decimal.NewFromInt(-70)))
}

func TestPeriodContains(t *testing.T) {
	p := FiscalPeriod{StartDate: date.New(2025, 1, 1), EndDate: date.New(2025, 3, 31)}
	assert.True(t, p.Contains(date.New(2025, 1, 1)))
	assert.True(t, p.Contains(date.New(2025, 3, 31)))
	assert.False(t, p.Contains(date.New(2024, 12, 31)))
	assert.False(t, p.Contains(date.New(2025, 4, 1)))
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("posting: %w", Invalid("amount", "must be positive"))
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "posting: amount: must be positive", wrapped.Error())

	assert.ErrorIs(t, NotFound("account", 7), ErrNotFound)
	assert.EqualError(t, NotFound("account", 7), "account 7 not found")

	dup := &DuplicateNameError{Entity: "account", Name: "Caixa"}
	assert.ErrorIs(t, dup, ErrDuplicateName)
	assert.ErrorIs(t, dup, ErrIntegrity)

	cause := errors.New("disk full")
	perr := &PersistenceError{Op: "inserting transaction", Err: cause}
	assert.ErrorIs(t, perr, ErrPersistence)
	assert.ErrorIs(t, perr, cause)
}
