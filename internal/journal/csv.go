package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

const (
	numFields   = 6
	colID       = 0
	colDate     = 1
	colDesc     = 2
	colDebitAc  = 3
	colCreditAc = 4
	colAmount   = 5
)

var header = []string{"id", "date", "description", "debit_account", "credit_account", "amount"}

// ReadTransactions reads a journal CSV with a header row. Dates may use any ordering
// date.ParseFlexible accepts.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes transactions to a journal CSV (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	if t.ID != 0 {
		row[colID] = strconv.Itoa(t.ID)
	}
	row[colDate] = t.Date.String()
	row[colDesc] = t.Description
	row[colDebitAc] = strconv.Itoa(t.DebitAccount)
	row[colCreditAc] = strconv.Itoa(t.CreditAccount)
	row[colAmount] = t.Amount.StringFixed(2)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. The id column may be empty.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var t model.Transaction
	var err error

	if record[colID] != "" {
		t.ID, err = strconv.Atoi(record[colID])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
		}
	}

	t.Date, err = date.ParseFlexible(record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date: %w", err)
	}

	t.DebitAccount, err = strconv.Atoi(record[colDebitAc])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing debit_account %q: %w", record[colDebitAc], err)
	}

	t.CreditAccount, err = strconv.Atoi(record[colCreditAc])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing credit_account %q: %w", record[colCreditAc], err)
	}

	t.Amount, err = decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	t.Description = record[colDesc]
	return t, nil
}

// Import posts each transaction in order, ignoring their ids. Each posting commits on
// its own; on failure the count of postings already committed is returned.
func (s *Service) Import(ctx context.Context, txns []model.Transaction) (int, error) {
	for i, t := range txns {
		_, err := s.Post(ctx, PostParams{
			Date:          t.Date,
			Description:   t.Description,
			DebitAccount:  t.DebitAccount,
			CreditAccount: t.CreditAccount,
			Amount:        t.Amount,
		})
		if err != nil {
			return i, fmt.Errorf("importing row %d: %w", i+1, err)
		}
	}
	return len(txns), nil
}
