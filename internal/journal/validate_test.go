package journal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidate(t *testing.T) {
	valid := model.Transaction{Date: date.New(2025, 1, 15), DebitAccount: 1, CreditAccount: 2, Amount: dec("10.50")}
	assert.NoError(t, Validate(valid))

	tests := []struct {
		name  string
		mod   func(*model.Transaction)
		field string
	}{
		{"zero amount", func(t *model.Transaction) { t.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(t *model.Transaction) { t.Amount = dec("-1") }, "amount"},
		{"three decimals", func(t *model.Transaction) { t.Amount = dec("1.005") }, "amount"},
		{"same account", func(t *model.Transaction) { t.CreditAccount = t.DebitAccount }, "credit_account"},
		{"no debit account", func(t *model.Transaction) { t.DebitAccount = 0 }, "debit_account"},
		{"no date", func(t *model.Transaction) { t.Date = date.Date{} }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := valid
			tt.mod(&txn)
			err := Validate(txn)
			assert.ErrorIs(t, err, model.ErrValidation)
			var verr *model.ValidationError
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestValidate_TrailingZerosAllowed(t *testing.T) {
	txn := model.Transaction{Date: date.New(2025, 1, 15), DebitAccount: 1, CreditAccount: 2, Amount: dec("1.500")}
	assert.NoError(t, Validate(txn))
}
