// Package reports derives the balance sheet and the income statement (DRP) from the
// journal. Figures are always recomputed from transactions, never read from the
// cached account balances.
package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

// AccountLister lists the chart of accounts.
type AccountLister interface {
	All(ctx context.Context) ([]model.Account, error)
}

// Totaler returns per-account debit and credit totals for a date window.
type Totaler interface {
	Totals(ctx context.Context, from, to date.Date) (map[int]model.Sums, error)
}

// PeriodSource looks up fiscal periods.
type PeriodSource interface {
	Get(ctx context.Context, id int) (model.FiscalPeriod, error)
}

// Line is one account's figure in a statement.
type Line struct {
	Account model.Account
	Amount  decimal.Decimal
}

// Section is a group of lines with their total.
type Section struct {
	Title string
	Lines []Line
	Total decimal.Decimal
}

func (s *Section) add(a model.Account, amount decimal.Decimal, itemize bool) {
	s.Total = s.Total.Add(amount)
	if itemize {
		s.Lines = append(s.Lines, Line{Account: a, Amount: amount})
	}
}

// FinancialStatements pairs the income statement of a period with the balance sheet at its end.
type FinancialStatements struct {
	Income  IncomeStatement
	Balance BalanceSheet
}

// Statements builds the DRP for periodID and then the balance sheet on the period end
// date, carrying the DRP net income into it.
func Statements(ctx context.Context, inc *IncomeStatementGenerator, bal *BalanceSheetGenerator, periodID int) (FinancialStatements, error) {
	is, err := inc.Generate(ctx, periodID)
	if err != nil {
		return FinancialStatements{}, err
	}
	bs, err := bal.Generate(ctx, is.Period.EndDate, is.NetIncome)
	if err != nil {
		return FinancialStatements{}, err
	}
	return FinancialStatements{Income: is, Balance: bs}, nil
}

func loadTotals(ctx context.Context, accts AccountLister, totals Totaler, from, to date.Date) ([]model.Account, map[int]model.Sums, error) {
	all, err := accts.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing accounts: %w", err)
	}
	sums, err := totals.Totals(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("summing journal: %w", err)
	}
	return all, sums, nil
}
