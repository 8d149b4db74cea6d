// Package backup keeps byte-exact copies of files before they are overwritten.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saeedalam/projectassistant/pkg/types"
)

// ErrMissingCopy is returned when a backup's copy no longer exists
var ErrMissingCopy = errors.New("backup copy missing")

// Manager writes backups into a single directory
type Manager struct {
	dir string
}

// NewManager creates a manager over dir
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the backups directory
func (m *Manager) Dir() string {
	return m.dir
}

// Backup copies path verbatim to <dir>/<id>_<basename> and returns the record
func (m *Manager) Backup(path string) (types.Backup, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.Backup{}, err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return types.Backup{}, fmt.Errorf("create backups dir: %w", err)
	}

	id := uuid.New().String()
	dest := filepath.Join(m.dir, id+"_"+filepath.Base(abs))

	if err := copyFile(abs, dest); err != nil {
		return types.Backup{}, fmt.Errorf("backup %s: %w", abs, err)
	}

	return types.Backup{
		ID:           id,
		OriginalPath: abs,
		BackupPath:   dest,
		Timestamp:    time.Now(),
	}, nil
}

// Restore overwrites the original path with the backup's bytes
func (m *Manager) Restore(b types.Backup) error {
	if _, err := os.Stat(b.BackupPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingCopy, b.BackupPath)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.OriginalPath), 0755); err != nil {
		return err
	}
	if err := copyFile(b.BackupPath, b.OriginalPath); err != nil {
		return fmt.Errorf("restore %s: %w", b.OriginalPath, err)
	}
	return nil
}

// copyFile writes src to a temp file beside dst, then renames it into place
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// PathLocks hands out one mutex per absolute path
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPathLocks creates an empty lock table
func NewPathLocks() *PathLocks {
	return &PathLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until path is free and returns the unlock function
func (p *PathLocks) Lock(path string) func() {
	p.mu.Lock()
	l, ok := p.locks[path]
	if !ok {
		l = &sync.Mutex{}
		p.locks[path] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
