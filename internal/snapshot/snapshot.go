// Package snapshot keeps rolling copies of the SQLite database after every committed write.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/config"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

// DefaultKeep is the number of snapshots kept when the config does not say.
const DefaultKeep = 20

const (
	prefix   = "backup_"
	ext      = ".db"
	stampFmt = "20060102_150405"
)

// Backup is one snapshot file.
type Backup struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Snapshotter writes database snapshots into a directory and prunes old ones.
type Snapshotter struct {
	db   *store.DB
	dir  string
	keep int
	log  logrus.FieldLogger
	now  func() time.Time
}

// New creates a Snapshotter for db. It fails for databases other than SQLite.
func New(db *store.DB, cfg config.SnapshotConfig, log logrus.FieldLogger) (*Snapshotter, error) {
	if db.Driver() != store.DriverSQLite {
		return nil, fmt.Errorf("snapshots need a sqlite3 database, have %s", db.Driver())
	}
	keep := cfg.Keep
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Snapshotter{
		db:   db,
		dir:  cfg.Dir,
		keep: keep,
		log:  log.WithField("component", "snapshot"),
		now:  time.Now,
	}, nil
}

// Register makes s take a snapshot after every committed unit of work on its database.
// Failures are logged and never reach the caller of the write.
func (s *Snapshotter) Register() {
	s.db.OnCommit(func(ctx context.Context) {
		if _, err := s.Take(ctx); err != nil {
			s.log.WithError(err).Warn("snapshot failed")
		}
	})
}

// Take writes a snapshot now and prunes the directory down to the newest keep files.
func (s *Snapshotter) Take(ctx context.Context) (Backup, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Backup{}, fmt.Errorf("creating snapshot dir: %w", err)
	}
	path, err := s.nextPath()
	if err != nil {
		return Backup{}, err
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return Backup{}, fmt.Errorf("writing snapshot %s: %w", filepath.Base(path), err)
	}
	b, err := stat(path)
	if err != nil {
		return Backup{}, err
	}
	s.log.WithField("file", b.Name).Debug("snapshot written")

	if err := s.prune(); err != nil {
		return b, err
	}
	return b, nil
}

// nextPath picks a free file name for the current second, suffixing _1, _2 on collision.
func (s *Snapshotter) nextPath() (string, error) {
	base := prefix + s.now().Format(stampFmt)
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name += "_" + strconv.Itoa(i)
		}
		path := filepath.Join(s.dir, name+ext)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking snapshot path: %w", err)
		}
	}
}

func (s *Snapshotter) prune() error {
	backups, err := List(s.dir)
	if err != nil {
		return err
	}
	for _, b := range backups[min(s.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("pruning snapshot %s: %w", b.Name, err)
		}
		s.log.WithField("file", b.Name).Debug("snapshot pruned")
	}
	return nil
}

// List returns the snapshots in dir, newest first. A missing dir has no snapshots.
func List(dir string) ([]Backup, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	var out []Backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || filepath.Ext(e.Name()) != ext {
			continue
		}
		b, err := stat(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// Resolve finds a snapshot in dir by file name or by its position in List (1 = newest).
func Resolve(dir, ref string) (Backup, error) {
	backups, err := List(dir)
	if err != nil {
		return Backup{}, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(backups) {
			return Backup{}, fmt.Errorf("snapshot #%d not found: have %d", n, len(backups))
		}
		return backups[n-1], nil
	}
	for _, b := range backups {
		if b.Name == ref || b.Name == ref+ext {
			return b, nil
		}
	}
	return Backup{}, fmt.Errorf("snapshot %q not found in %s", ref, dir)
}

// Restore copies a snapshot over the database file at dbPath and removes its WAL
// side files. The database must not be open.
func Restore(b Backup, dbPath string) error {
	src, err := os.Open(b.Path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer src.Close()

	tmp := dbPath + ".restore"
	dst, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return fmt.Errorf("copying snapshot: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("copying snapshot: %w", err)
	}
	for _, side := range []string{dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(side); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", side, err)
		}
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		return fmt.Errorf("replacing database: %w", err)
	}
	return nil
}

func stat(path string) (Backup, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Backup{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return Backup{Name: fi.Name(), Path: path, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
