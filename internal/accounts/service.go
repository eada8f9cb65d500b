package accounts

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

	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
	"github.com/NiinoTM/EasyAccounts/internal/textnorm"
)

const accountCols = `id, name, normalized_name, type, specific_type, specific_subtype,
	COALESCE(category_id, 0) AS category_id, balance`

// Service manages the chart of accounts and the cached account balances.
type Service struct {
	db  *store.DB
	log logrus.FieldLogger
}

// NewService creates an account Service.
func NewService(db *store.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log.WithField("component", "accounts")}
}

// AccountParams holds the editable fields of an account.
// An empty Kind defaults from SpecificType; set it explicitly for contra accounts.
type AccountParams struct {
	Name         string
	Kind         model.Kind
	SpecificType model.SpecificType
	Subtype      model.Subtype
	CategoryID   int
}

func (p AccountParams) validate() (model.Account, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return model.Account{}, model.Invalid("name", "must not be blank")
	}
	if !p.SpecificType.Valid() {
		return model.Account{}, model.Invalid("specific_type", "unknown type %q", p.SpecificType)
	}
	kind := p.Kind
	if kind == "" {
		kind = p.SpecificType.DefaultKind()
	}
	if !kind.Valid() {
		return model.Account{}, model.Invalid("type", "unknown kind %q", kind)
	}
	if !p.SpecificType.AllowsSubtype(p.Subtype) {
		return model.Account{}, model.Invalid("specific_subtype", "%q is not valid for %s", p.Subtype, p.SpecificType)
	}
	if p.CategoryID < 0 {
		return model.Account{}, model.Invalid("category_id", "must not be negative")
	}
	return model.Account{
		Name:           name,
		NormalizedName: textnorm.Normalize(name),
		Kind:           kind,
		SpecificType:   p.SpecificType,
		Subtype:        p.Subtype,
		CategoryID:     p.CategoryID,
	}, nil
}

// Create registers a new account with a zero balance.
func (s *Service) Create(ctx context.Context, p AccountParams) (model.Account, error) {
	acct, err := p.validate()
	if err != nil {
		return model.Account{}, err
	}
	acct.Balance = decimal.Zero

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkWritable(ctx, tx, acct, 0); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO accounts
			(name, normalized_name, type, specific_type, specific_subtype, category_id, balance)
			VALUES (?, ?, ?, ?, ?, NULLIF(?, 0), ?)`,
			acct.Name, acct.NormalizedName, acct.Kind, acct.SpecificType, acct.Subtype, acct.CategoryID, acct.Balance)
		if err != nil {
			return s.writeError("inserting account", acct.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return store.Error("reading account id", err)
		}
		acct.ID = int(id)
		return nil
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account: %w", err)
	}

	s.log.WithFields(logrus.Fields{"account_id": acct.ID, "name": acct.Name}).Info("account created")
	return acct, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id int) (model.Account, error) {
	return getAccount(ctx, s.db, id)
}

// GetTx returns an account by id inside an open transaction.
func (s *Service) GetTx(ctx context.Context, tx *sqlx.Tx, id int) (model.Account, error) {
	return getAccount(ctx, tx, id)
}

func getAccount(ctx context.Context, q sqlx.QueryerContext, id int) (model.Account, error) {
	var acct model.Account
	err := sqlx.GetContext(ctx, q, &acct, "SELECT "+accountCols+" FROM accounts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, model.NotFound("account", id)
	}
	if err != nil {
		return model.Account{}, store.Error("loading account", err)
	}
	return acct, nil
}

// All returns every account ordered by name.
func (s *Service) All(ctx context.Context) ([]model.Account, error) {
	return s.Search(ctx, "")
}

// likeEscaper makes a term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search finds accounts by term. A blank term returns all accounts; a numeric term
// matches the id or a name substring; any other term matches a name substring,
// ignoring accents and case.
func (s *Service) Search(ctx context.Context, term string) ([]model.Account, error) {
	term = strings.TrimSpace(term)
	query := "SELECT " + accountCols + " FROM accounts"
	var args []any

	if term != "" {
		like := "%" + likeEscaper.Replace(textnorm.Normalize(term)) + "%"
		if id, err := strconv.Atoi(term); err == nil {
			query += ` WHERE id = ? OR normalized_name LIKE ? ESCAPE '!'`
			args = append(args, id, like)
		} else {
			query += ` WHERE normalized_name LIKE ? ESCAPE '!'`
			args = append(args, like)
		}
	}
	query += " ORDER BY normalized_name, id"

	var accts []model.Account
	if err := sqlx.SelectContext(ctx, s.db, &accts, query, args...); err != nil {
		return nil, store.Error("searching accounts", err)
	}
	s.log.WithFields(logrus.Fields{"term": term, "results": len(accts)}).Debug("account search")
	return accts, nil
}

// Update replaces the editable fields of an account. The balance is untouched.
func (s *Service) Update(ctx context.Context, id int, p AccountParams) (model.Account, error) {
	next, err := p.validate()
	if err != nil {
		return model.Account{}, err
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := getAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.checkWritable(ctx, tx, next, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE accounts SET name = ?, normalized_name = ?, type = ?,
			specific_type = ?, specific_subtype = ?, category_id = NULLIF(?, 0) WHERE id = ?`,
			next.Name, next.NormalizedName, next.Kind, next.SpecificType, next.Subtype, next.CategoryID, id)
		if err != nil {
			return s.writeError("updating account", next.Name, err)
		}
		next.ID = id
		next.Balance = cur.Balance
		return nil
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("updating account %d: %w", id, err)
	}

	s.log.WithField("account_id", id).Info("account updated")
	return next, nil
}

// Delete removes an account. Accounts still referenced by transactions or assets
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getAccount(ctx, tx, id); err != nil {
			return err
		}

		var refs int
		err := sqlx.GetContext(ctx, tx, &refs,
			"SELECT COUNT(*) FROM transactions WHERE debit_account = ? OR credit_account = ?", id, id)
		if err != nil {
			return store.Error("counting account transactions", err)
		}
		if refs > 0 {
			return model.Invalid("account", "account %d is referenced by %d transaction(s)", id, refs)
		}

		err = sqlx.GetContext(ctx, tx, &refs, "SELECT COUNT(*) FROM assets WHERE account_id = ?", id)
		if err != nil {
			return store.Error("counting account assets", err)
		}
		if refs > 0 {
			return model.Invalid("account", "account %d is referenced by %d asset(s)", id, refs)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id); err != nil {
			return store.Error("deleting account", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting account %d: %w", id, err)
	}

	s.log.WithField("account_id", id).Info("account deleted")
	return nil
}

// AdjustBalance adds delta to the cached balance of an account. It only runs inside a
// transaction opened by the caller so the change commits or rolls back with the posting.
func (s *Service) AdjustBalance(ctx context.Context, tx *sqlx.Tx, id int, delta decimal.Decimal) error {
	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, tx, &balance, "SELECT balance FROM accounts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFound("account", id)
	}
	if err != nil {
		return store.Error("reading balance", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE accounts SET balance = ? WHERE id = ?", balance.Add(delta), id); err != nil {
		return store.Error("updating balance", err)
	}
	s.log.WithFields(logrus.Fields{"account_id": id, "delta": delta.String()}).Debug("balance adjusted")
	return nil
}

// checkWritable rejects a duplicate normalized name (ignoring selfID) and an unknown category.
func (s *Service) checkWritable(ctx context.Context, tx *sqlx.Tx, acct model.Account, selfID int) error {
	var clash int
	err := sqlx.GetContext(ctx, tx, &clash,
		"SELECT COUNT(*) FROM accounts WHERE normalized_name = ? AND id <> ?", acct.NormalizedName, selfID)
	if err != nil {
		return store.Error("checking account name", err)
	}
	if clash > 0 {
		return &model.DuplicateNameError{Entity: "account", Name: acct.Name}
	}

	if acct.CategoryID != 0 {
		if _, err := getCategory(ctx, tx, acct.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writeError(op, name string, err error) error {
	err = store.Error(op, err)
	if store.IsUnique(err) {
		return &model.DuplicateNameError{Entity: "account", Name: name}
	}
	return err
}
