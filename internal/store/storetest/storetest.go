// Package storetest opens throwaway databases for package tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/NiinoTM/EasyAccounts/internal/config"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

// Logger returns a logger that discards output and records entries in the hook.
func Logger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// New opens a migrated SQLite database in t's temp dir and closes it on cleanup.
func New(t *testing.T) *store.DB {
	t.Helper()
	log, _ := Logger()
	db, err := store.Open(context.Background(), config.DatabaseConfig{
		Driver: store.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
