package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "easyaccounts-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "easyaccounts")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/easyaccounts")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runBinary(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "EASYACCOUNTS_LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesBooks(t *testing.T) {
	dir := t.TempDir()
	out, err := runBinary(t, "init", dir, "--name", "Padaria Pão Quente")
	require.NoError(t, err, out)
	assert.Contains(t, out, "16 accounts")

	for _, f := range []string{"easyaccounts.yaml", "easyaccounts.db"} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}
	for _, d := range []string{"backups", "exports"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runBinary(t, "init", dir, "--name", "My Company", "--currency", "USD")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "easyaccounts.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: My Company")
	assert.Contains(t, contents, "currency: USD")
	assert.Contains(t, contents, "driver: sqlite3")
}

func TestInit_Accounts(t *testing.T) {
	dir := t.TempDir()
	_, err := runBinary(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	out, err := runBinary(t, "--config", filepath.Join(dir, "easyaccounts.yaml"), "account", "list", "--search", "deprecia")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Depreciação Acumulada")
	assert.Contains(t, out, "Despesa de Depreciação")
}

func TestInit_NoChart(t *testing.T) {
	dir := t.TempDir()
	out, err := runBinary(t, "init", dir, "--name", "Test Biz", "--no-chart")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 accounts")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runBinary(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingBooks(t *testing.T) {
	dir := t.TempDir()
	_, err := runBinary(t, "init", dir, "--name", "Test Biz")
	require.NoError(t, err)

	out, err := runBinary(t, "init", dir, "--name", "Again")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestUninitializedBooks(t *testing.T) {
	dir := t.TempDir()
	out, err := runBinary(t, "--config", filepath.Join(dir, "easyaccounts.yaml"), "account", "list")
	require.Error(t, err)
	assert.Contains(t, out, "easyaccounts init")
}

func TestVersion(t *testing.T) {
	out, err := runBinary(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "easyaccounts dev")
}
