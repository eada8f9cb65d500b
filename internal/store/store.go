// Package store owns the shared SQL handle: connection setup, schema migration,
// transactional scopes and post-commit hooks.
package store

import (
	"context"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/config"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// sqliteParams are appended to the database path when opening SQLite.
const sqliteParams = "?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL"

// Hook runs after a mutating unit commits.
type Hook func(ctx context.Context)

// DB is the single shared database handle. Services receive it from the entry point.
type DB struct {
	*sqlx.DB

	driver string
	path   string
	log    logrus.FieldLogger

	mu    sync.Mutex
	hooks []Hook
}

// Open connects to the database described by cfg and migrates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (*DB, error) {
	var (
		sqlxDB *sqlx.DB
		err    error
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("opening database: sqlite3 needs a path")
		}
		sqlxDB, err = sqlx.ConnectContext(ctx, DriverSQLite, cfg.Path+sqliteParams)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database %s: %w", cfg.Path, err)
		}
		// One writer; every unit of work holds the only connection.
		sqlxDB.SetMaxOpenConns(1)
	case DriverMySQL:
		sqlxDB, err = sqlx.ConnectContext(ctx, DriverMySQL, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening mysql database: %w", err)
		}
		sqlxDB.SetMaxOpenConns(4)
		sqlxDB.SetMaxIdleConns(2)
	default:
		return nil, fmt.Errorf("opening database: unsupported driver %q", cfg.Driver)
	}

	db := &DB{
		DB:     sqlxDB,
		driver: sqlxDB.DriverName(),
		path:   cfg.Path,
		log:    log,
	}
	if err := db.Migrate(ctx); err != nil {
		sqlxDB.Close()
		return nil, err
	}
	log.WithFields(logrus.Fields{"driver": db.driver, "path": db.path}).Debug("database opened")
	return db, nil
}

// Driver returns the driver name the handle was opened with.
func (db *DB) Driver() string { return db.driver }

// Path returns the SQLite database file, or "" for MySQL.
func (db *DB) Path() string {
	if db.driver != DriverSQLite {
		return ""
	}
	return db.path
}

// OnCommit registers a hook that runs after every committed WithTx unit.
func (db *DB) OnCommit(h Hook) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.hooks = append(db.hooks, h)
}

// WithTx runs fn inside one database transaction. Any error from fn rolls the whole
// unit back; on commit the registered hooks run.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Error("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return Error("committing transaction", err)
	}

	db.mu.Lock()
	hooks := append([]Hook(nil), db.hooks...)
	db.mu.Unlock()
	for _, h := range hooks {
		h(ctx)
	}
	return nil
}
