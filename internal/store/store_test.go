package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiinoTM/EasyAccounts/internal/config"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
	"github.com/NiinoTM/EasyAccounts/internal/store/storetest"
)

func TestOpen_MigratesAndSeeds(t *testing.T) {
	db := storetest.New(t)
	ctx := context.Background()

	var names []string
	require.NoError(t, db.SelectContext(ctx, &names, "SELECT name FROM depreciation_methods ORDER BY id"))
	assert.Equal(t, []string{"Straight-Line", "Declining-Balance", "Sum-of-Years-Digits"}, names)

	// Running migrations again must not duplicate the seed rows.
	require.NoError(t, db.Migrate(ctx))
	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM depreciation_methods"))
	assert.Equal(t, 3, n)

	assert.Equal(t, store.DriverSQLite, db.Driver())
	assert.NotEmpty(t, db.Path())
}

func TestOpen_Errors(t *testing.T) {
	log, _ := storetest.Logger()
	ctx := context.Background()

	_, err := store.Open(ctx, config.DatabaseConfig{Driver: "postgres"}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")

	_, err = store.Open(ctx, config.DatabaseConfig{Driver: store.DriverSQLite}, log)
	require.Error(t, err)

	_, err = store.Open(ctx, config.DatabaseConfig{
		Driver: store.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "missing", "dir", "x.db"),
	}, log)
	require.Error(t, err)
}

func insertAccount(ctx context.Context, ext sqlx.ExtContext, name string) error {
	_, err := ext.ExecContext(ctx,
		"INSERT INTO accounts (name, normalized_name, type, specific_type) VALUES (?, ?, 'debito', 'ativos')",
		name, name)
	return err
}

func TestWithTx_CommitRunsHooks(t *testing.T) {
	db := storetest.New(t)
	ctx := context.Background()

	var fired int
	db.OnCommit(func(context.Context) { fired++ })

	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertAccount(ctx, tx, "caixa")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM accounts"))
	assert.Equal(t, 1, n)
}

func TestWithTx_ErrorRollsBack(t *testing.T) {
	db := storetest.New(t)
	ctx := context.Background()

	var fired int
	db.OnCommit(func(context.Context) { fired++ })

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		require.NoError(t, insertAccount(ctx, tx, "caixa"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, fired)

	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM accounts"))
	assert.Zero(t, n)
}

func TestError_Classification(t *testing.T) {
	db := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, insertAccount(ctx, db, "caixa"))

	err := store.Error("inserting account", insertAccount(ctx, db, "caixa"))
	assert.ErrorIs(t, err, model.ErrIntegrity)
	assert.True(t, store.IsUnique(err))

	_, ferr := db.ExecContext(ctx,
		"INSERT INTO transactions (date, debit_account, credit_account, amount) VALUES ('2025-01-01', 98, 99, '10')")
	err = store.Error("inserting transaction", ferr)
	assert.ErrorIs(t, err, model.ErrIntegrity)
	assert.False(t, store.IsUnique(err))

	_, qerr := db.ExecContext(ctx, "SELECT * FROM no_such_table")
	err = store.Error("querying", qerr)
	assert.ErrorIs(t, err, model.ErrPersistence)
	assert.NotErrorIs(t, err, model.ErrIntegrity)

	assert.NoError(t, store.Error("noop", nil))
}
