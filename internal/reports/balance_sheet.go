package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

// BalanceSheet is the financial position on a date.
type BalanceSheet struct {
	AsOf                  date.Date
	CurrentAssets         Section
	FixedAssets           Section
	CurrentLiabilities    Section
	NonCurrentLiabilities Section
	Equity                Section

	NetIncome                 decimal.Decimal
	TotalAssets               decimal.Decimal
	TotalLiabilities          decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
}

// Balanced reports whether total assets equal liabilities plus equity plus net income.
func (b BalanceSheet) Balanced() bool {
	return b.TotalAssets.Equal(b.TotalLiabilitiesAndEquity)
}

// Difference returns assets minus liabilities and equity.
func (b BalanceSheet) Difference() decimal.Decimal {
	return b.TotalAssets.Sub(b.TotalLiabilitiesAndEquity)
}

// BalanceSheetGenerator builds balance sheets.
type BalanceSheetGenerator struct {
	accounts AccountLister
	totals   Totaler
}

// NewBalanceSheetGenerator creates a BalanceSheetGenerator.
func NewBalanceSheetGenerator(accounts AccountLister, totals Totaler) *BalanceSheetGenerator {
	return &BalanceSheetGenerator{accounts: accounts, totals: totals}
}

// Generate recomputes every account through asOf and buckets it. Asset buckets are
// stated as debits minus credits and liability and equity buckets as credits minus
// debits, so contra accounts reduce their bucket. netIncome is the income of the
// matching period and is added to the liabilities-and-equity side.
func (g *BalanceSheetGenerator) Generate(ctx context.Context, asOf date.Date, netIncome decimal.Decimal) (BalanceSheet, error) {
	accts, sums, err := loadTotals(ctx, g.accounts, g.totals, date.Date{}, asOf)
	if err != nil {
		return BalanceSheet{}, fmt.Errorf("generating balance sheet: %w", err)
	}

	bs := BalanceSheet{
		AsOf:                  asOf,
		CurrentAssets:         Section{Title: "Ativo Circulante", Total: decimal.Zero},
		FixedAssets:           Section{Title: "Ativo Fixo", Total: decimal.Zero},
		CurrentLiabilities:    Section{Title: "Passivo Circulante", Total: decimal.Zero},
		NonCurrentLiabilities: Section{Title: "Passivo Não Circulante", Total: decimal.Zero},
		Equity:                Section{Title: "Patrimônio Líquido", Total: decimal.Zero},
		NetIncome:             netIncome,
	}

	for _, a := range accts {
		s := sums[a.ID]
		// Kind is not part of the bucket: contra accounts such as accumulated
		// depreciation net negatively inside the group they reduce.
		switch {
		case a.SpecificType == model.TypeAssets && a.Subtype == model.SubtypeCurrent:
			bs.CurrentAssets.add(a, s.DebitNet(), !s.DebitNet().IsZero())
		case a.SpecificType == model.TypeAssets && a.Subtype == model.SubtypeFixed:
			bs.FixedAssets.add(a, s.DebitNet(), !s.DebitNet().IsZero())
		case a.SpecificType == model.TypeLiabilities && a.Subtype == model.SubtypeCurrent:
			bs.CurrentLiabilities.add(a, s.CreditNet(), !s.CreditNet().IsZero())
		case a.SpecificType == model.TypeLiabilities && a.Subtype == model.SubtypeNonCurrent:
			bs.NonCurrentLiabilities.add(a, s.CreditNet(), !s.CreditNet().IsZero())
		case a.SpecificType == model.TypeEquity:
			bs.Equity.add(a, s.CreditNet(), !s.CreditNet().IsZero())
		}
	}

	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.FixedAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.NonCurrentLiabilities.Total)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.Equity.Total).Add(netIncome)
	return bs, nil
}
