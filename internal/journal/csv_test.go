package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{ID: 1, Date: date.New(2025, 1, 3), Description: "Aporte, capital inicial", DebitAccount: 1, CreditAccount: 5, Amount: dec("1000")},
		{ID: 2, Date: date.New(2025, 1, 9), Description: "Aluguel", DebitAccount: 7, CreditAccount: 1, Amount: dec("350.75")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,date,description,debit_account,credit_account,amount", lines[0])
	assert.Equal(t, `1,2025-01-03,"Aporte, capital inicial",1,5,1000.00`, lines[1])

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range txns {
		assert.Equal(t, txns[i].ID, got[i].ID)
		assert.Equal(t, txns[i].Date, got[i].Date)
		assert.Equal(t, txns[i].Description, got[i].Description)
		assert.Equal(t, txns[i].DebitAccount, got[i].DebitAccount)
		assert.True(t, txns[i].Amount.Equal(got[i].Amount))
	}
}

func TestReadTransactions_FlexibleDates(t *testing.T) {
	in := "id,date,description,debit_account,credit_account,amount\n,15/03/2025,Venda,1,2,20\n"
	got, err := ReadTransactions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, date.New(2025, 3, 15), got[0].Date)
	assert.Zero(t, got[0].ID)
}

func TestReadTransactions_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad date", ",31/02/2025,x,1,2,10"},
		{"bad debit", ",2025-01-01,x,a,2,10"},
		{"bad credit", ",2025-01-01,x,1,b,10"},
		{"bad amount", ",2025-01-01,x,1,2,ten"},
		{"bad id", "z,2025-01-01,x,1,2,10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTransactions(strings.NewReader(strings.Join(header, ",") + "\n" + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}
