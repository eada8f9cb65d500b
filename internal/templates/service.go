// Package templates stores named batches of postings and executes them through the journal.
package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/journal"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
	"github.com/NiinoTM/EasyAccounts/internal/textnorm"
)

// Poster posts transactions to the journal.
type Poster interface {
	Post(ctx context.Context, p journal.PostParams) (model.Transaction, error)
}

// AccountGetter resolves accounts referenced by template lines.
type AccountGetter interface {
	Get(ctx context.Context, id int) (model.Account, error)
}

// Service manages transaction templates.
type Service struct {
	db       *store.DB
	journal  Poster
	accounts AccountGetter
	log      logrus.FieldLogger
	today    func() date.Date
}

// NewService creates a templates Service.
func NewService(db *store.DB, poster Poster, accounts AccountGetter, log logrus.FieldLogger) *Service {
	return &Service{
		db:       db,
		journal:  poster,
		accounts: accounts,
		log:      log.WithField("component", "templates"),
		today:    date.Today,
	}
}

type row struct {
	ID      int    `db:"id"`
	Name    string `db:"name"`
	Details string `db:"details"`
}

func (r row) template() (model.TransactionTemplate, error) {
	t := model.TransactionTemplate{ID: r.ID, Name: r.Name}
	if err := json.Unmarshal([]byte(r.Details), &t.Lines); err != nil {
		return model.TransactionTemplate{}, &model.PersistenceError{Op: "decoding template " + strconv.Itoa(r.ID), Err: err}
	}
	return t, nil
}

// Create stores a template. Every line must be a valid posting over existing accounts.
func (s *Service) Create(ctx context.Context, name string, lines []model.TemplateLine) (model.TransactionTemplate, error) {
	t, details, err := s.prepare(ctx, name, lines)
	if err != nil {
		return model.TransactionTemplate{}, err
	}
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO transaction_templates (name, details) VALUES (?, ?)", t.Name, details)
		if err != nil {
			return store.Error("inserting template", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return store.Error("reading template id", err)
		}
		t.ID = int(id)
		return nil
	})
	if err != nil {
		return model.TransactionTemplate{}, fmt.Errorf("creating template: %w", err)
	}
	s.log.WithFields(logrus.Fields{"template": t.ID, "lines": len(t.Lines)}).Info("template created")
	return t, nil
}

// Update replaces the name and lines of a template.
func (s *Service) Update(ctx context.Context, id int, name string, lines []model.TemplateLine) (model.TransactionTemplate, error) {
	t, details, err := s.prepare(ctx, name, lines)
	if err != nil {
		return model.TransactionTemplate{}, err
	}
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE transaction_templates SET name = ?, details = ? WHERE id = ?", t.Name, details, id)
		if err != nil {
			return store.Error("updating template", err)
		}
		return affected(res, "updating template", id)
	})
	if err != nil {
		return model.TransactionTemplate{}, fmt.Errorf("updating template: %w", err)
	}
	t.ID = id
	s.log.WithField("template", id).Info("template updated")
	return t, nil
}

func (s *Service) prepare(ctx context.Context, name string, lines []model.TemplateLine) (model.TransactionTemplate, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.TransactionTemplate{}, "", model.Invalid("name", "must not be blank")
	}
	if len(lines) == 0 {
		return model.TransactionTemplate{}, "", model.Invalid("lines", "a template needs at least one line")
	}
	out := make([]model.TemplateLine, len(lines))
	for i, l := range lines {
		l.Description = strings.TrimSpace(l.Description)
		if err := s.checkLine(ctx, l, l.Amount); err != nil {
			return model.TransactionTemplate{}, "", fmt.Errorf("line %d: %w", i+1, err)
		}
		out[i] = l
	}
	b, err := json.Marshal(out)
	if err != nil {
		return model.TransactionTemplate{}, "", fmt.Errorf("encoding template lines: %w", err)
	}
	return model.TransactionTemplate{Name: name, Lines: out}, string(b), nil
}

func (s *Service) checkLine(ctx context.Context, l model.TemplateLine, amount decimal.Decimal) error {
	err := journal.Validate(model.Transaction{
		Date:          s.today(),
		Description:   l.Description,
		DebitAccount:  l.DebitAccount,
		CreditAccount: l.CreditAccount,
		Amount:        amount,
	})
	if err != nil {
		return err
	}
	for _, id := range []int{l.DebitAccount, l.CreditAccount} {
		if _, err := s.accounts.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a template by id.
func (s *Service) Get(ctx context.Context, id int) (model.TransactionTemplate, error) {
	var r row
	err := sqlx.GetContext(ctx, s.db, &r, "SELECT id, name, details FROM transaction_templates WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TransactionTemplate{}, model.NotFound("template", id)
	}
	if err != nil {
		return model.TransactionTemplate{}, store.Error("loading template", err)
	}
	return r.template()
}

// Search returns templates whose id equals term or whose name contains it, ignoring
// accents and case. A blank term returns every template.
func (s *Service) Search(ctx context.Context, term string) ([]model.TransactionTemplate, error) {
	var rows []row
	if err := sqlx.SelectContext(ctx, s.db, &rows, "SELECT id, name, details FROM transaction_templates ORDER BY name, id"); err != nil {
		return nil, store.Error("listing templates", err)
	}
	term = strings.TrimSpace(term)
	id, numErr := strconv.Atoi(term)

	var out []model.TransactionTemplate
	for _, r := range rows {
		if term != "" && !(numErr == nil && r.ID == id) && !textnorm.Contains(r.Name, term) {
			continue
		}
		t, err := r.template()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Delete removes a template. Transactions it already posted are kept.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM transaction_templates WHERE id = ?", id)
		if err != nil {
			return store.Error("deleting template", err)
		}
		return affected(res, "deleting template", id)
	})
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	s.log.WithField("template", id).Info("template deleted")
	return nil
}

func affected(res sql.Result, op string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return store.Error(op, err)
	}
	if n == 0 {
		return model.NotFound("template", id)
	}
	return nil
}

// BatchResult describes one template execution.
type BatchResult struct {
	ID           uuid.UUID
	Template     model.TransactionTemplate
	Transactions []model.Transaction
}

// Committed returns the number of postings the batch recorded.
func (r BatchResult) Committed() int { return len(r.Transactions) }

// BatchError reports a template execution that stopped part way. Postings before
// Index were committed and stay in the journal.
type BatchError struct {
	Batch     uuid.UUID
	Committed int
	Index     int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %s stopped at line %d after %d committed postings: %v", e.Batch, e.Index+1, e.Committed, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Execute posts every line of a template, in order, dated today. overrides replaces
// the amount of the line at the given zero-based index. Every line is validated,
// overrides applied, before the first posting; a problem found there posts nothing.
// Each posting then commits on its own and a failure returns the partial result
// together with a *BatchError.
func (s *Service) Execute(ctx context.Context, id int, overrides map[int]decimal.Decimal) (BatchResult, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	for i, amount := range overrides {
		if i < 0 || i >= len(t.Lines) {
			return BatchResult{}, model.Invalid("overrides", "line %d does not exist in template %d", i+1, id)
		}
		if !amount.IsPositive() {
			return BatchResult{}, model.Invalid("overrides", "amount for line %d must be positive, got %s", i+1, amount)
		}
	}
	amounts := make([]decimal.Decimal, len(t.Lines))
	for i, l := range t.Lines {
		amounts[i] = l.Amount
		if o, ok := overrides[i]; ok {
			amounts[i] = o
		}
		// Accounts may have been deleted since the template was saved.
		if err := s.checkLine(ctx, l, amounts[i]); err != nil {
			return BatchResult{}, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	result := BatchResult{ID: uuid.New(), Template: t}
	log := s.log.WithFields(logrus.Fields{"batch": result.ID, "template": t.ID})
	today := s.today()
	for i, l := range t.Lines {
		txn, err := s.journal.Post(ctx, journal.PostParams{
			Date:          today,
			Description:   l.Description,
			DebitAccount:  l.DebitAccount,
			CreditAccount: l.CreditAccount,
			Amount:        amounts[i],
		})
		if err != nil {
			log.WithError(err).WithField("line", i+1).Warn("batch stopped")
			return result, &BatchError{Batch: result.ID, Committed: len(result.Transactions), Index: i, Err: err}
		}
		result.Transactions = append(result.Transactions, txn)
	}
	log.WithField("postings", result.Committed()).Info("batch executed")
	return result, nil
}
