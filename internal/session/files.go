package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/saeedalam/projectassistant/internal/events"
	"github.com/saeedalam/projectassistant/internal/storage"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// FileBackups groups the backups of one file, newest first
type FileBackups struct {
	File    string         `json:"file"` // project-relative, or absolute when outside the project
	Backups []types.Backup `json:"backups"`
}

// SaveFile writes content to path, backing up any existing file first. A
// failed backup aborts the write.
func (m *Manager) SaveFile(path, content string) (types.SaveResult, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return types.SaveResult{}, ErrNoSession
	}
	sessionID, projectDir := m.current.ID, m.current.ProjectDir
	m.mu.Unlock()

	target, err := resolve(projectDir, path)
	if err != nil {
		return types.SaveResult{}, err
	}

	unlock := m.locks.Lock(target)
	defer unlock()

	var snapshot *types.Backup
	if info, err := os.Stat(target); err == nil {
		if info.IsDir() {
			return types.SaveResult{}, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, target)
		}
		b, err := m.backups.Backup(target)
		if err != nil {
			return types.SaveResult{}, fmt.Errorf("save aborted: %w", err)
		}
		snapshot = &b
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return types.SaveResult{}, err
	}
	if err := writeFileAtomic(target, []byte(content)); err != nil {
		return types.SaveResult{}, fmt.Errorf("write %s: %w", target, err)
	}

	result := types.SaveResult{Path: target, RelativePath: relative(projectDir, target)}
	if snapshot != nil {
		result.BackupID = snapshot.ID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data := map[string]any{"file": target, "backupId": result.BackupID}
	if err := m.recordChangeLocked(sessionID, target, snapshot, "File saved", data); err != nil {
		return result, err
	}

	m.bus.Publish(events.FileSaved, result)
	return result, nil
}

// ReadFile returns the content of a file in the current project
func (m *Manager) ReadFile(path string) (string, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return "", ErrNoSession
	}
	projectDir := m.current.ProjectDir
	m.mu.Unlock()

	target, err := resolve(projectDir, path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file %s: %w", target, ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// Rollback restores a backup. The file's current content is backed up first
// so the rollback itself can be undone.
func (m *Manager) Rollback(backupID string) (types.RollbackResult, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return types.RollbackResult{}, ErrNoSession
	}
	sessionID := m.current.ID
	b, ok := m.current.FindBackup(backupID)
	m.mu.Unlock()
	if !ok {
		return types.RollbackResult{}, fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
	}

	unlock := m.locks.Lock(b.OriginalPath)
	defer unlock()

	var snapshot *types.Backup
	if _, err := os.Stat(b.OriginalPath); err == nil {
		s, err := m.backups.Backup(b.OriginalPath)
		if err != nil {
			return types.RollbackResult{}, fmt.Errorf("rollback aborted: %w", err)
		}
		snapshot = &s
	}

	if err := m.backups.Restore(b); err != nil {
		return types.RollbackResult{}, err
	}

	result := types.RollbackResult{BackupID: backupID, File: b.OriginalPath}
	if snapshot != nil {
		result.SnapshotID = snapshot.ID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data := map[string]any{"file": b.OriginalPath, "backupId": backupID}
	if err := m.recordChangeLocked(sessionID, b.OriginalPath, snapshot, "File restored", data); err != nil {
		return result, err
	}

	m.bus.Publish(events.FileRestored, result)
	return result, nil
}

// recordChangeLocked adds the backup and modified file to the session that
// started the write, so its backup is never orphaned by a session switch.
func (m *Manager) recordChangeLocked(sessionID, file string, snapshot *types.Backup, message string, data map[string]any) error {
	return m.updateSessionLocked(sessionID, func(s *types.Session) {
		if snapshot != nil {
			s.Backups = append(s.Backups, *snapshot)
		}
		s.ModifiedFiles = addUnique(s.ModifiedFiles, file)
	}, message, data)
}

// updateSessionLocked applies update and an info log entry to sessionID. When
// another session became current in the meantime the stored copy is updated
// instead.
func (m *Manager) updateSessionLocked(sessionID string, update func(*types.Session), message string, data map[string]any) error {
	if m.current != nil && m.current.ID == sessionID {
		update(m.current)
		m.addLogLocked(LevelInfo, message, data)
		return m.persistLocked()
	}

	s, err := m.store.Load(sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	now := time.Now()
	update(s)
	s.Logs = append(s.Logs, types.LogEntry{
		ID:        storage.GenerateID("log"),
		Timestamp: now,
		Level:     LevelInfo,
		Message:   message,
		Data:      data,
	})
	s.UpdatedAt = now
	if err := m.store.Save(s); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// BackupsByFile groups the current session's backups by file, files sorted
// by name and each group newest first
func (m *Manager) BackupsByFile() ([]FileBackups, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNoSession
	}

	groups := make(map[string][]types.Backup)
	for _, b := range m.current.Backups {
		key := relative(m.current.ProjectDir, b.OriginalPath)
		if key == "" {
			key = b.OriginalPath
		}
		groups[key] = append(groups[key], b)
	}

	out := make([]FileBackups, 0, len(groups))
	for file, backups := range groups {
		sortBackupsNewestFirst(backups)
		out = append(out, FileBackups{File: file, Backups: backups})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
