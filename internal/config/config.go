package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file created by `easyaccounts init`.
const FileName = "easyaccounts.yaml"

// Config represents the top-level easyaccounts.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Database DatabaseConfig `yaml:"database"`
	Currency string         `yaml:"currency"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Reports  ReportsConfig  `yaml:"reports"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the business the books belong to.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`        // "sqlite3" or "mysql"
	Path   string `yaml:"path"`          // sqlite3 database file
	DSN    string `yaml:"dsn,omitempty"` // mysql DSN, e.g. user:pass@tcp(host:3306)/books
}

// SnapshotConfig controls post-write database backups.
type SnapshotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Keep    int    `yaml:"keep"`
}

// ReportsConfig controls statement exports.
type ReportsConfig struct {
	ExportDir string `yaml:"export_dir"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads an easyaccounts.yaml file from disk. Relative paths in the file are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new set of books.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Path:   "easyaccounts.db",
		},
		Currency: "BRL",
		Snapshot: SnapshotConfig{
			Enabled: true,
			Dir:     "backups",
			Keep:    20,
		},
		Reports: ReportsConfig{
			ExportDir: "exports",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadEnv reads a .env file into the process environment, if one exists, then applies
// EASYACCOUNTS_* overrides to cfg.
func LoadEnv(cfg *Config, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return ApplyEnv(cfg)
}

// ApplyEnv overrides cfg fields from EASYACCOUNTS_* environment variables.
func ApplyEnv(cfg *Config) error {
	str := map[string]*string{
		"EASYACCOUNTS_DB_DRIVER":     &cfg.Database.Driver,
		"EASYACCOUNTS_DB_PATH":       &cfg.Database.Path,
		"EASYACCOUNTS_DB_DSN":        &cfg.Database.DSN,
		"EASYACCOUNTS_CURRENCY":      &cfg.Currency,
		"EASYACCOUNTS_SNAPSHOT_DIR":  &cfg.Snapshot.Dir,
		"EASYACCOUNTS_EXPORT_DIR":    &cfg.Reports.ExportDir,
		"EASYACCOUNTS_LOG_LEVEL":     &cfg.Log.Level,
		"EASYACCOUNTS_LOG_FORMAT":    &cfg.Log.Format,
		"EASYACCOUNTS_BUSINESS_NAME": &cfg.Business.Name,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("EASYACCOUNTS_SNAPSHOT_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing EASYACCOUNTS_SNAPSHOT_ENABLED %q: %w", v, err)
		}
		cfg.Snapshot.Enabled = b
	}
	if v, ok := os.LookupEnv("EASYACCOUNTS_SNAPSHOT_KEEP"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing EASYACCOUNTS_SNAPSHOT_KEEP %q: %w", v, err)
		}
		cfg.Snapshot.Keep = n
	}
	return nil
}

func (c *Config) resolve(baseDir string) {
	for _, p := range []*string{&c.Database.Path, &c.Snapshot.Dir, &c.Reports.ExportDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}
