package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/model"
)

const (
	numFields     = 7
	colID         = 0
	colName       = 1
	colKind       = 2
	colType       = 3
	colSubtype    = 4
	colCategoryID = 5
	colBalance    = 6
)

var header = []string{"id", "name", "type", "specific_type", "specific_subtype", "category_id", "balance"}

// ReadAccounts reads a chart-of-accounts CSV with a header row.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a chart-of-accounts CSV with a header row.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	if acct.ID != 0 {
		row[colID] = strconv.Itoa(acct.ID)
	}
	row[colName] = acct.Name
	row[colKind] = string(acct.Kind)
	row[colType] = string(acct.SpecificType)
	row[colSubtype] = string(acct.Subtype)
	if acct.CategoryID != 0 {
		row[colCategoryID] = strconv.Itoa(acct.CategoryID)
	}
	row[colBalance] = acct.Balance.StringFixed(2)
	return row
}

// UnmarshalAccount converts a CSV row to an Account. Empty id, category and balance
// columns are read as zero.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var acct model.Account
	var err error

	if record[colID] != "" {
		acct.ID, err = strconv.Atoi(record[colID])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
		}
	}
	if record[colCategoryID] != "" {
		acct.CategoryID, err = strconv.Atoi(record[colCategoryID])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing category_id %q: %w", record[colCategoryID], err)
		}
	}
	if record[colBalance] != "" {
		acct.Balance, err = decimal.NewFromString(record[colBalance])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
		}
	}

	acct.Name = record[colName]
	acct.Kind = model.Kind(record[colKind])
	acct.SpecificType = model.SpecificType(record[colType])
	acct.Subtype = model.Subtype(record[colSubtype])
	return acct, nil
}
