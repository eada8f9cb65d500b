package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/model"
)

var hundred = decimal.NewFromInt(100)

// IncomeStatement is the DRP of a fiscal period.
type IncomeStatement struct {
	Period    model.FiscalPeriod
	Revenue   Section
	Expenses  Section
	NetIncome decimal.Decimal
}

// NetMargin returns net income as a percentage of revenue, rounded to two places.
// ok is false when there is no positive revenue.
func (s IncomeStatement) NetMargin() (pct decimal.Decimal, ok bool) {
	if !s.Revenue.Total.IsPositive() {
		return decimal.Zero, false
	}
	return s.NetIncome.Div(s.Revenue.Total).Mul(hundred).Round(2), true
}

// IncomeStatementGenerator builds income statements.
type IncomeStatementGenerator struct {
	accounts AccountLister
	totals   Totaler
	periods  PeriodSource
}

// NewIncomeStatementGenerator creates an IncomeStatementGenerator.
func NewIncomeStatementGenerator(accounts AccountLister, totals Totaler, periods PeriodSource) *IncomeStatementGenerator {
	return &IncomeStatementGenerator{accounts: accounts, totals: totals, periods: periods}
}

// Generate nets revenue accounts (entradas, vendas) as credits minus debits and
// expense accounts (despesas, compras) as debits minus credits inside the period.
// Only strictly positive nets are itemized; totals include every account.
func (g *IncomeStatementGenerator) Generate(ctx context.Context, periodID int) (IncomeStatement, error) {
	p, err := g.periods.Get(ctx, periodID)
	if err != nil {
		return IncomeStatement{}, fmt.Errorf("generating income statement: %w", err)
	}
	accts, sums, err := loadTotals(ctx, g.accounts, g.totals, p.StartDate, p.EndDate)
	if err != nil {
		return IncomeStatement{}, fmt.Errorf("generating income statement: %w", err)
	}

	is := IncomeStatement{
		Period:   p,
		Revenue:  Section{Title: "Receitas", Total: decimal.Zero},
		Expenses: Section{Title: "Despesas", Total: decimal.Zero},
	}
	for _, a := range accts {
		s := sums[a.ID]
		switch a.SpecificType {
		case model.TypeRevenue, model.TypeSales:
			net := s.CreditNet()
			is.Revenue.add(a, net, net.IsPositive())
		case model.TypeExpenses, model.TypePurchases:
			net := s.DebitNet()
			is.Expenses.add(a, net, net.IsPositive())
		}
	}
	is.NetIncome = is.Revenue.Total.Sub(is.Expenses.Total)
	return is, nil
}
