package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
	"github.com/NiinoTM/EasyAccounts/internal/textnorm"
)

const categoryCols = "id, name, normalized_name, description"

// CategoryService manages account categories.
type CategoryService struct {
	db  *store.DB
	log logrus.FieldLogger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(db *store.DB, log logrus.FieldLogger) *CategoryService {
	return &CategoryService{db: db, log: log.WithField("component", "categories")}
}

// Create registers a category.
func (s *CategoryService) Create(ctx context.Context, name, description string) (model.Category, error) {
	cat, err := newCategory(name, description)
	if err != nil {
		return model.Category{}, err
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkCategoryName(ctx, tx, cat, 0); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO account_categories (name, normalized_name, description) VALUES (?, ?, ?)",
			cat.Name, cat.NormalizedName, cat.Description)
		if err != nil {
			return categoryWriteError("inserting category", cat.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return store.Error("reading category id", err)
		}
		cat.ID = int(id)
		return nil
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}

	s.log.WithFields(logrus.Fields{"category_id": cat.ID, "name": cat.Name}).Info("category created")
	return cat, nil
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id int) (model.Category, error) {
	return getCategory(ctx, s.db, id)
}

func getCategory(ctx context.Context, q sqlx.QueryerContext, id int) (model.Category, error) {
	var cat model.Category
	err := sqlx.GetContext(ctx, q, &cat, "SELECT "+categoryCols+" FROM account_categories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, model.NotFound("category", id)
	}
	if err != nil {
		return model.Category{}, store.Error("loading category", err)
	}
	return cat, nil
}

// Search finds categories the same way accounts are searched.
func (s *CategoryService) Search(ctx context.Context, term string) ([]model.Category, error) {
	term = strings.TrimSpace(term)
	query := "SELECT " + categoryCols + " FROM account_categories"
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

	var cats []model.Category
	if err := sqlx.SelectContext(ctx, s.db, &cats, query, args...); err != nil {
		return nil, store.Error("searching categories", err)
	}
	return cats, nil
}

// Update renames or redescribes a category.
func (s *CategoryService) Update(ctx context.Context, id int, name, description string) (model.Category, error) {
	cat, err := newCategory(name, description)
	if err != nil {
		return model.Category{}, err
	}
	cat.ID = id

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getCategory(ctx, tx, id); err != nil {
			return err
		}
		if err := checkCategoryName(ctx, tx, cat, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE account_categories SET name = ?, normalized_name = ?, description = ? WHERE id = ?",
			cat.Name, cat.NormalizedName, cat.Description, id)
		if err != nil {
			return categoryWriteError("updating category", cat.Name, err)
		}
		return nil
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("updating category %d: %w", id, err)
	}

	s.log.WithField("category_id", id).Info("category updated")
	return cat, nil
}

// Delete removes a category that no account uses.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getCategory(ctx, tx, id); err != nil {
			return err
		}
		var refs int
		if err := sqlx.GetContext(ctx, tx, &refs, "SELECT COUNT(*) FROM accounts WHERE category_id = ?", id); err != nil {
			return store.Error("counting category accounts", err)
		}
		if refs > 0 {
			return model.Invalid("category", "category %d is used by %d account(s)", id, refs)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM account_categories WHERE id = ?", id); err != nil {
			return store.Error("deleting category", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}

	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}

func newCategory(name, description string) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, model.Invalid("name", "must not be blank")
	}
	return model.Category{
		Name:           name,
		NormalizedName: textnorm.Normalize(name),
		Description:    strings.TrimSpace(description),
	}, nil
}

func checkCategoryName(ctx context.Context, tx *sqlx.Tx, cat model.Category, selfID int) error {
	var clash int
	err := sqlx.GetContext(ctx, tx, &clash,
		"SELECT COUNT(*) FROM account_categories WHERE normalized_name = ? AND id <> ?", cat.NormalizedName, selfID)
	if err != nil {
		return store.Error("checking category name", err)
	}
	if clash > 0 {
		return &model.DuplicateNameError{Entity: "category", Name: cat.Name}
	}
	return nil
}

func categoryWriteError(op, name string, err error) error {
	err = store.Error(op, err)
	if store.IsUnique(err) {
		return &model.DuplicateNameError{Entity: "category", Name: name}
	}
	return err
}
