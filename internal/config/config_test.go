package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Padaria Central")
	cfg.Currency = "USD"
	cfg.Snapshot.Keep = 5

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Padaria Central", got.Business.Name)
	assert.Equal(t, "sqlite3", got.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "easyaccounts.db"), got.Database.Path)
	assert.Equal(t, "USD", got.Currency)
	assert.True(t, got.Snapshot.Enabled)
	assert.Equal(t, filepath.Join(dir, "backups"), got.Snapshot.Dir)
	assert.Equal(t, 5, got.Snapshot.Keep)
	assert.Equal(t, filepath.Join(dir, "exports"), got.Reports.ExportDir)
	assert.Equal(t, "info", got.Log.Level)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company")

	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "easyaccounts.db", cfg.Database.Path)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "BRL", cfg.Currency)
	assert.True(t, cfg.Snapshot.Enabled)
	assert.Equal(t, 20, cfg.Snapshot.Keep)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	abs := filepath.Join(t.TempDir(), "books.db")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: sqlite3\n  path: "+abs+"\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, abs, got.Database.Path)
	assert.Equal(t, "BRL", got.Currency, "unset keys keep defaults")
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz")
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "driver: sqlite3")
	assert.Contains(t, contents, "currency: BRL")
	assert.Contains(t, contents, "keep: 20")
	assert.NotContains(t, contents, "dsn:")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EASYACCOUNTS_DB_DRIVER", "mysql")
	t.Setenv("EASYACCOUNTS_DB_DSN", "books:secret@tcp(localhost:3306)/books")
	t.Setenv("EASYACCOUNTS_SNAPSHOT_ENABLED", "false")
	t.Setenv("EASYACCOUNTS_SNAPSHOT_KEEP", "3")

	cfg := Default("x")
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "books:secret@tcp(localhost:3306)/books", cfg.Database.DSN)
	assert.False(t, cfg.Snapshot.Enabled)
	assert.Equal(t, 3, cfg.Snapshot.Keep)
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("EASYACCOUNTS_SNAPSHOT_KEEP", "many")
	require.Error(t, ApplyEnv(Default("x")))
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EASYACCOUNTS_CURRENCY=EUR\n"), 0o644))
	t.Setenv("EASYACCOUNTS_CURRENCY", "")
	os.Unsetenv("EASYACCOUNTS_CURRENCY")

	cfg := Default("x")
	require.NoError(t, LoadEnv(cfg, envFile))
	assert.Equal(t, "EUR", cfg.Currency)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	cfg := Default("x")
	require.NoError(t, LoadEnv(cfg, filepath.Join(t.TempDir(), ".env")))
	assert.Equal(t, "BRL", cfg.Currency)
}
