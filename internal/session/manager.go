// Package session owns the current working session: its tasks, the files it
// modified, their backups and its log.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/analyzer"
	"github.com/saeedalam/projectassistant/internal/backup"
	"github.com/saeedalam/projectassistant/internal/events"
	"github.com/saeedalam/projectassistant/internal/storage"
	"github.com/saeedalam/projectassistant/pkg/types"
)

var (
	ErrNoSession       = errors.New("no active session")
	ErrNotFound        = errors.New("not found")
	ErrNothingToExport = errors.New("no modified files to export")
	ErrBackupNotFound  = errors.New("backup not found")
	ErrInvalidPath     = errors.New("invalid path")
)

// MaxLogEntries bounds the session log; the oldest entries are dropped first
const MaxLogEntries = 1000

// Log levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Options wires a Manager to its collaborators
type Options struct {
	Store          *storage.SessionStore
	Backups        *backup.Manager
	Locks          *backup.PathLocks // nil creates a private table
	Bus            *events.Bus       // nil creates a private bus
	ExportsDir     string
	SessionTimeout time.Duration
	Logger         zerolog.Logger
}

// Manager holds exactly one current session
type Manager struct {
	mu      sync.Mutex
	current *types.Session

	store          *storage.SessionStore
	backups        *backup.Manager
	locks          *backup.PathLocks
	bus            *events.Bus
	exportsDir     string
	sessionTimeout time.Duration
	logger         zerolog.Logger
}

// NewManager creates a manager with no current session
func NewManager(opts Options) *Manager {
	locks := opts.Locks
	if locks == nil {
		locks = backup.NewPathLocks()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	return &Manager{
		store:          opts.Store,
		backups:        opts.Backups,
		locks:          locks,
		bus:            bus,
		exportsDir:     opts.ExportsDir,
		sessionTimeout: opts.SessionTimeout,
		logger:         opts.Logger,
	}
}

// Bus returns the event bus sessions publish on
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start opens a fresh session for projectDir and makes it current
func (m *Manager) Start(projectDir string) (*types.Session, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, projectDir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidPath, abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, abs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.flushLocked()

	now := time.Now()
	s := &types.Session{
		SchemaVersion: types.SchemaVersion,
		ID:            storage.GenerateID("ses"),
		StartTime:     now,
		UpdatedAt:     now,
		ProjectDir:    abs,
		Tasks:         []types.Task{},
		ModifiedFiles: []string{},
		Backups:       []types.Backup{},
		Logs:          []types.LogEntry{},
		Status:        types.SessionRunning,
	}

	projectInfo, err := analyzer.Analyze(abs)
	s.ProjectInfo = projectInfo
	m.current = s

	m.addLogLocked(LevelInfo, "Session started", map[string]any{"sessionId": s.ID, "projectDir": abs})
	if err != nil {
		m.logger.Warn().Err(err).Str("project", abs).Msg("project analysis failed")
		m.addLogLocked(LevelWarning, "Project analysis failed", map[string]any{"error": err.Error()})
	}

	if err := m.persistLocked(); err != nil {
		return nil, err
	}
	if err := m.store.SetCurrent(s.ID); err != nil {
		m.logger.Warn().Err(err).Msg("failed to record current session")
	}

	snapshot := s.Clone()
	m.bus.Publish(events.SessionStarted, snapshot)
	return snapshot, nil
}

// Save writes the current session to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	return m.persistLocked()
}

// Load replaces the current session with a persisted one. The previous
// session is flushed first. Sessions idle past the timeout load as idle.
func (m *Manager) Load(id string) (*types.Session, error) {
	loaded, err := m.store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			m.logger.Warn().Str("session", id).Msg("session not found")
			m.AddLog(LevelWarning, "Session not found", map[string]any{"sessionId": id})
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.flushLocked()
	m.activateLocked(loaded)

	m.addLogLocked(LevelInfo, "Session loaded", map[string]any{"sessionId": id})
	if err := m.persistLocked(); err != nil {
		return nil, err
	}
	if err := m.store.SetCurrent(id); err != nil {
		m.logger.Warn().Err(err).Msg("failed to record current session")
	}

	snapshot := loaded.Clone()
	m.bus.Publish(events.SessionLoaded, snapshot)
	return snapshot, nil
}

// Resume quietly reactivates the session recorded as current, without
// logging or publishing, so each CLI invocation continues where the last
// one stopped
func (m *Manager) Resume() (*types.Session, error) {
	id, err := m.store.Current()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNoSession
	}
	loaded, err := m.store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.flushLocked()
	m.activateLocked(loaded)
	return loaded.Clone(), nil
}

func (m *Manager) activateLocked(s *types.Session) {
	if m.sessionTimeout > 0 && time.Since(s.UpdatedAt) > m.sessionTimeout {
		s.Status = types.SessionIdle
	} else if s.Status == types.SessionIdle {
		s.Status = types.SessionRunning
	}
	m.current = s
}

// List summarizes every persisted session
func (m *Manager) List() ([]types.SessionSummary, error) {
	return m.store.List()
}

// Current returns a deep copy of the current session, or nil
func (m *Manager) Current() *types.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Status reports the current session
func (m *Manager) Status() (types.SessionStatusReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	if s == nil {
		return types.SessionStatusReport{}, ErrNoSession
	}
	return types.SessionStatusReport{
		ID:            s.ID,
		Status:        s.Status,
		Duration:      time.Since(s.StartTime).Round(time.Second).String(),
		ProjectDir:    s.ProjectDir,
		ModifiedFiles: append([]string{}, s.ModifiedFiles...),
		Backups:       len(s.Backups),
		Tasks:         len(s.Tasks),
	}, nil
}

// =============================================================================
// LOGS
// =============================================================================

// AddLog appends to the current session log, persists, and publishes newLog.
// Without a session the entry only reaches the process logger.
func (m *Manager) AddLog(level, message string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		m.logger.Debug().Str("level", level).Msg(message)
		return
	}
	m.addLogLocked(level, message, data)
	if err := m.persistLocked(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist session log")
	}
}

func (m *Manager) addLogLocked(level, message string, data map[string]any) {
	entry := types.LogEntry{
		ID:        storage.GenerateID("log"),
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Data:      data,
	}
	m.current.Logs = append(m.current.Logs, entry)
	if n := len(m.current.Logs); n > MaxLogEntries {
		m.current.Logs = append([]types.LogEntry{}, m.current.Logs[n-MaxLogEntries:]...)
	}
	m.bus.Publish(events.NewLog, entry)
}

// =============================================================================
// PERSISTENCE HELPERS
// =============================================================================

func (m *Manager) persistLocked() error {
	m.current.UpdatedAt = time.Now()
	if err := m.store.Save(m.current); err != nil {
		return fmt.Errorf("save session %s: %w", m.current.ID, err)
	}
	return nil
}

// flushLocked writes the outgoing session so replacing it never loses state
func (m *Manager) flushLocked() {
	if m.current == nil {
		return
	}
	if err := m.persistLocked(); err != nil {
		m.logger.Error().Err(err).Str("session", m.current.ID).Msg("failed to flush session")
	}
}

// resolve makes path absolute against the project root
func resolve(projectDir, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, path)
	}
	return filepath.Clean(path), nil
}

// relative returns path relative to projectDir, or "" when it lies outside
func relative(projectDir, path string) string {
	rel, err := filepath.Rel(projectDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

func addUnique(list []string, item string) []string {
	for _, p := range list {
		if p == item {
			return list
		}
	}
	return append(list, item)
}

// sortBackupsNewestFirst orders backups by timestamp, newest first
func sortBackupsNewestFirst(b []types.Backup) {
	sort.SliceStable(b, func(i, j int) bool {
		return b[i].Timestamp.After(b[j].Timestamp)
	})
}
