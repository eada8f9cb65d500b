package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

// SumSince recomputes an account's debit and credit totals over every transaction
// dated on or before through. The cached balance is not consulted.
func (s *Service) SumSince(ctx context.Context, accountID int, through date.Date) (model.Sums, error) {
	totals, err := s.totals(ctx, date.Date{}, through, accountID)
	if err != nil {
		return model.Sums{}, err
	}
	return totals[accountID], nil
}

// SumBetween is like SumSince restricted to from..to inclusive.
func (s *Service) SumBetween(ctx context.Context, accountID int, from, to date.Date) (model.Sums, error) {
	totals, err := s.totals(ctx, from, to, accountID)
	if err != nil {
		return model.Sums{}, err
	}
	return totals[accountID], nil
}

// Totals returns per-account debit and credit totals for transactions dated from..to
// inclusive. A zero bound is open. Accounts without activity are absent from the map.
func (s *Service) Totals(ctx context.Context, from, to date.Date) (map[int]model.Sums, error) {
	return s.totals(ctx, from, to, 0)
}

func (s *Service) totals(ctx context.Context, from, to date.Date, accountID int) (map[int]model.Sums, error) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, to)
	}
	if accountID != 0 {
		where = append(where, "(debit_account = ? OR credit_account = ?)")
		args = append(args, accountID, accountID)
	}
	query := "SELECT " + txnCols + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, store.Error("summing transactions", err)
	}
	defer rows.Close()

	totals := make(map[int]model.Sums)
	for rows.Next() {
		var t model.Transaction
		if err := rows.StructScan(&t); err != nil {
			return nil, store.Error("scanning transaction", err)
		}
		for _, id := range []int{t.DebitAccount, t.CreditAccount} {
			sums := totals[id]
			sums.Add(t, id)
			totals[id] = sums
		}
	}
	if err := rows.Err(); err != nil {
		return nil, store.Error("summing transactions", err)
	}
	return totals, nil
}

// Discrepancy is an account whose cached balance disagrees with its journal.
type Discrepancy struct {
	Account  model.Account
	Cached   decimal.Decimal
	Computed decimal.Decimal
}

// Reconcile compares every cached balance with credits minus debits over the whole
// journal and returns the accounts that disagree.
func (s *Service) Reconcile(ctx context.Context) ([]Discrepancy, error) {
	accts, err := s.ledger.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconciling: %w", err)
	}
	totals, err := s.Totals(ctx, date.Date{}, date.Date{})
	if err != nil {
		return nil, fmt.Errorf("reconciling: %w", err)
	}

	var out []Discrepancy
	for _, a := range accts {
		computed := totals[a.ID].CreditNet()
		if !computed.Equal(a.Balance) {
			out = append(out, Discrepancy{Account: a, Cached: a.Balance, Computed: computed})
		}
	}
	if len(out) > 0 {
		s.log.WithField("accounts", len(out)).Warn("cached balances out of step with journal")
	}
	return out, nil
}

// TrialRow holds one account's totals in a trial balance.
type TrialRow struct {
	Account model.Account
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// TrialBalance lists debit and credit totals per account through a date.
// TotalDebits always equals TotalCredits for a consistent journal.
type TrialBalance struct {
	Through      date.Date
	Rows         []TrialRow
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

// Balanced reports whether total debits equal total credits.
func (tb TrialBalance) Balanced() bool {
	return tb.TotalDebits.Equal(tb.TotalCredits)
}

// TrialBalance computes a trial balance through the given date. Accounts without
// activity are omitted.
func (s *Service) TrialBalance(ctx context.Context, through date.Date) (TrialBalance, error) {
	accts, err := s.ledger.All(ctx)
	if err != nil {
		return TrialBalance{}, fmt.Errorf("computing trial balance: %w", err)
	}
	totals, err := s.Totals(ctx, date.Date{}, through)
	if err != nil {
		return TrialBalance{}, fmt.Errorf("computing trial balance: %w", err)
	}

	tb := TrialBalance{Through: through, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
	for _, a := range accts {
		sums, ok := totals[a.ID]
		if !ok {
			continue
		}
		tb.Rows = append(tb.Rows, TrialRow{Account: a, Debits: sums.Debits, Credits: sums.Credits})
		tb.TotalDebits = tb.TotalDebits.Add(sums.Debits)
		tb.TotalCredits = tb.TotalCredits.Add(sums.Credits)
	}
	return tb, nil
}
