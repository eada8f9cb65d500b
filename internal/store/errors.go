package store

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/NiinoTM/EasyAccounts/internal/model"
)

// MySQL server error numbers for constraint violations.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
	mysqlCheckViolated   = 3819
)

// Error classifies a driver error: constraint violations become *model.IntegrityError,
// anything else *model.PersistenceError. A nil err stays nil.
func Error(op string, err error) error {
	if err == nil {
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return &model.IntegrityError{Constraint: sqliteConstraint(liteErr.ExtendedCode), Err: err}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return &model.IntegrityError{Constraint: "unique", Err: err}
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return &model.IntegrityError{Constraint: "foreign key", Err: err}
		case mysqlCheckViolated:
			return &model.IntegrityError{Constraint: "check", Err: err}
		}
	}

	return &model.PersistenceError{Op: op, Err: err}
}

// IsUnique reports whether err is a unique-constraint violation.
func IsUnique(err error) bool {
	var ie *model.IntegrityError
	return errors.As(err, &ie) && ie.Constraint == "unique"
}

func sqliteConstraint(code sqlite3.ErrNoExtended) string {
	switch code {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return "unique"
	case sqlite3.ErrConstraintForeignKey:
		return "foreign key"
	case sqlite3.ErrConstraintCheck:
		return "check"
	case sqlite3.ErrConstraintNotNull:
		return "not null"
	default:
		return "constraint"
	}
}
