package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
	"github.com/NiinoTM/EasyAccounts/internal/textnorm"
)

const txnCols = "id, date, description, debit_account, credit_account, amount"

// Ledger is the part of the account ledger the journal reads and mutates.
type Ledger interface {
	All(ctx context.Context) ([]model.Account, error)
	GetTx(ctx context.Context, tx *sqlx.Tx, id int) (model.Account, error)
	AdjustBalance(ctx context.Context, tx *sqlx.Tx, id int, delta decimal.Decimal) error
}

// Service posts, edits and removes transactions and keeps the ledger balances in step.
type Service struct {
	db     *store.DB
	ledger Ledger
	log    logrus.FieldLogger
}

// NewService creates a journal Service.
func NewService(db *store.DB, ledger Ledger, log logrus.FieldLogger) *Service {
	return &Service{db: db, ledger: ledger, log: log.WithField("component", "journal")}
}

// PostParams holds parameters for posting a double-entry transaction.
type PostParams struct {
	Date          date.Date
	Description   string
	DebitAccount  int
	CreditAccount int
	Amount        decimal.Decimal
}

// Post validates and records a transaction. The row insert and both balance updates
// commit together or not at all.
func (s *Service) Post(ctx context.Context, p PostParams) (model.Transaction, error) {
	txn := model.Transaction{
		Date:          p.Date,
		Description:   strings.TrimSpace(p.Description),
		DebitAccount:  p.DebitAccount,
		CreditAccount: p.CreditAccount,
		Amount:        p.Amount,
	}
	if err := Validate(txn); err != nil {
		return model.Transaction{}, err
	}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkAccounts(ctx, tx, txn); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO transactions
			(date, description, debit_account, credit_account, amount) VALUES (?, ?, ?, ?, ?)`,
			txn.Date, txn.Description, txn.DebitAccount, txn.CreditAccount, txn.Amount)
		if err != nil {
			return store.Error("inserting transaction", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return store.Error("reading transaction id", err)
		}
		txn.ID = int(id)
		return s.apply(ctx, tx, txn, 1)
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("posting transaction: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"debit":          txn.DebitAccount,
		"credit":         txn.CreditAccount,
		"amount":         txn.Amount.StringFixed(2),
	}).Info("transaction posted")
	return txn, nil
}

// EditParams holds the fields to change on a transaction. Nil fields keep their value.
type EditParams struct {
	Date          *date.Date
	Description   *string
	DebitAccount  *int
	CreditAccount *int
	Amount        *decimal.Decimal
}

// ConfirmFunc is asked to approve an edit after validation. Returning false aborts it.
// It runs inside the edit's database transaction, which holds the only SQLite
// connection, so it must not call back into the store.
type ConfirmFunc func(current, updated model.Transaction) bool

// Edit changes a transaction in one unit: the old balance effects are reversed, the
// merged fields validated, confirm consulted and the new effects applied. Any failure,
// including a declined confirmation (model.ErrDeclined), leaves the ledger as it was.
func (s *Service) Edit(ctx context.Context, id int, p EditParams, confirm ConfirmFunc) (model.Transaction, error) {
	var updated model.Transaction
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, current, -1); err != nil {
			return fmt.Errorf("reversing transaction: %w", err)
		}

		updated = merge(current, p)
		if err := Validate(updated); err != nil {
			return err
		}
		if err := s.checkAccounts(ctx, tx, updated); err != nil {
			return err
		}
		if confirm != nil && !confirm(current, updated) {
			return model.ErrDeclined
		}

		_, err = tx.ExecContext(ctx, `UPDATE transactions SET date = ?, description = ?,
			debit_account = ?, credit_account = ?, amount = ? WHERE id = ?`,
			updated.Date, updated.Description, updated.DebitAccount, updated.CreditAccount, updated.Amount, id)
		if err != nil {
			return store.Error("updating transaction", err)
		}
		return s.apply(ctx, tx, updated, 1)
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("editing transaction %d: %w", id, err)
	}

	s.log.WithField("transaction_id", id).Info("transaction edited")
	return updated, nil
}

func merge(t model.Transaction, p EditParams) model.Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.DebitAccount != nil {
		t.DebitAccount = *p.DebitAccount
	}
	if p.CreditAccount != nil {
		t.CreditAccount = *p.CreditAccount
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	return t
}

// Delete reverses a transaction's balance effects and removes it.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, tx, current, -1); err != nil {
			return fmt.Errorf("reversing transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
			return store.Error("deleting transaction", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}

	s.log.WithField("transaction_id", id).Info("transaction deleted")
	return nil
}

// Get returns a transaction by id.
func (s *Service) Get(ctx context.Context, id int) (model.Transaction, error) {
	return getTransaction(ctx, s.db, id)
}

func getTransaction(ctx context.Context, q sqlx.QueryerContext, id int) (model.Transaction, error) {
	var txn model.Transaction
	err := sqlx.GetContext(ctx, q, &txn, "SELECT "+txnCols+" FROM transactions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, model.NotFound("transaction", id)
	}
	if err != nil {
		return model.Transaction{}, store.Error("loading transaction", err)
	}
	return txn, nil
}

// Search finds transactions by term, newest first. A blank term returns everything; a
// numeric term matches the id or a description substring; other terms match a
// description substring ignoring accents and case.
func (s *Service) Search(ctx context.Context, term string) ([]model.Transaction, error) {
	var all []model.Transaction
	err := sqlx.SelectContext(ctx, s.db, &all,
		"SELECT "+txnCols+" FROM transactions ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, store.Error("searching transactions", err)
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return all, nil
	}
	id, idErr := strconv.Atoi(term)
	var found []model.Transaction
	for _, t := range all {
		if (idErr == nil && t.ID == id) || textnorm.Contains(t.Description, term) {
			found = append(found, t)
		}
	}
	return found, nil
}

// ListFilter narrows List. Zero values mean no bound.
type ListFilter struct {
	From      date.Date
	To        date.Date
	AccountID int
}

// List returns transactions in date order, optionally bounded by date and account.
func (s *Service) List(ctx context.Context, f ListFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	if f.AccountID != 0 {
		where = append(where, "(debit_account = ? OR credit_account = ?)")
		args = append(args, f.AccountID, f.AccountID)
	}

	query := "SELECT " + txnCols + " FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"

	var txns []model.Transaction
	if err := sqlx.SelectContext(ctx, s.db, &txns, query, args...); err != nil {
		return nil, store.Error("listing transactions", err)
	}
	return txns, nil
}

// apply moves the cached balances by t: the debit account by -amount and the credit
// account by +amount, scaled by sign (-1 reverses).
func (s *Service) apply(ctx context.Context, tx *sqlx.Tx, t model.Transaction, sign int64) error {
	amount := t.Amount.Mul(decimal.NewFromInt(sign))
	if err := s.ledger.AdjustBalance(ctx, tx, t.DebitAccount, amount.Neg()); err != nil {
		return fmt.Errorf("adjusting debit account %d: %w", t.DebitAccount, err)
	}
	if err := s.ledger.AdjustBalance(ctx, tx, t.CreditAccount, amount); err != nil {
		return fmt.Errorf("adjusting credit account %d: %w", t.CreditAccount, err)
	}
	return nil
}

func (s *Service) checkAccounts(ctx context.Context, tx *sqlx.Tx, t model.Transaction) error {
	for _, id := range []int{t.DebitAccount, t.CreditAccount} {
		if _, err := s.ledger.GetTx(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}
