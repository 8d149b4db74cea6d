package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saeedalam/projectassistant/pkg/types"
)

// ErrSessionNotFound is returned when no session file exists for an id
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists one JSON file per session plus a pointer to the
// current session id
type SessionStore struct {
	dir         string
	currentFile string
	mu          sync.RWMutex
}

// NewSessionStore creates a store over sessionsDir. currentFile holds the id
// of the session successive invocations should resume.
func NewSessionStore(sessionsDir, currentFile string) *SessionStore {
	return &SessionStore{
		dir:         sessionsDir,
		currentFile: currentFile,
	}
}

// Dir returns the sessions directory
func (s *SessionStore) Dir() string {
	return s.dir
}

func (s *SessionStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// --- Sessions ---

// Save writes the session atomically, overwriting any previous version
func (s *SessionStore) Save(session *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(session.ID)
	if err != nil {
		return err
	}
	session.SchemaVersion = types.SchemaVersion
	return writeJSON(path, session)
}

// Load reads a session, migrating legacy files
func (s *SessionStore) Load(id string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, err
	}
	session, err := decodeSession(data)
	if err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	return session, nil
}

// Exists reports whether a session file exists for id
func (s *SessionStore) Exists(id string) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List summarizes every readable session, newest first. Unreadable or
// malformed files are skipped.
func (s *SessionStore) List() ([]types.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.SessionSummary{}, nil
		}
		return nil, err
	}

	summaries := []types.SessionSummary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		session, err := decodeSession(data)
		if err != nil || session.ID == "" {
			continue
		}
		summaries = append(summaries, types.SessionSummary{
			ID:         session.ID,
			StartTime:  session.StartTime,
			ProjectDir: session.ProjectDir,
			Tasks:      len(session.Tasks),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	return summaries, nil
}

// --- Current pointer ---

// SetCurrent records id as the current session
func (s *SessionStore) SetCurrent(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.currentFile), 0755); err != nil {
		return err
	}
	tmp := s.currentFile + ".tmp"
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.currentFile)
}

// Current returns the recorded current session id, or "" when none is set
func (s *SessionStore) Current() (string, error) {
	data, err := os.ReadFile(s.currentFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// --- Export manifests ---

// WriteManifest writes metadata.json into an export directory
func WriteManifest(exportDir string, manifest types.ExportManifest) error {
	return writeJSON(filepath.Join(exportDir, "metadata.json"), manifest)
}

// ReadManifest reads the metadata.json of an export directory
func ReadManifest(exportDir string) (*types.ExportManifest, error) {
	return readJSON[types.ExportManifest](filepath.Join(exportDir, "metadata.json"))
}

// =============================================================================
// LEGACY SESSIONS
// =============================================================================

// Version 1 files store every timestamp as Unix milliseconds
type legacySession struct {
	ID            string            `json:"id"`
	StartTime     int64             `json:"startTime"`
	ProjectDir    string            `json:"projectDir"`
	ProjectInfo   types.ProjectInfo `json:"projectInfo"`
	Tasks         []legacyTask      `json:"tasks"`
	ModifiedFiles []string          `json:"modifiedFiles"`
	Backups       []legacyBackup    `json:"backups"`
	Status        string            `json:"status"`
	Logs          []legacyLog       `json:"logs"`
}

type legacyTask struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	StartTime   int64             `json:"startTime"`
	EndTime     int64             `json:"endTime"`
	Result      *types.TaskResult `json:"result"`
	Error       string            `json:"error"`
}

type legacyBackup struct {
	ID           string `json:"id"`
	OriginalPath string `json:"originalPath"`
	BackupPath   string `json:"backupPath"`
	Timestamp    int64  `json:"timestamp"`
}

type legacyLog struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
}

func decodeSession(data []byte) (*types.Session, error) {
	var probe struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	if probe.SchemaVersion >= 2 {
		var session types.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, err
		}
		normalize(&session)
		return &session, nil
	}

	var legacy legacySession
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	return migrateLegacy(legacy), nil
}

func migrateLegacy(l legacySession) *types.Session {
	session := &types.Session{
		SchemaVersion: types.SchemaVersion,
		ID:            l.ID,
		StartTime:     fromMillis(l.StartTime),
		ProjectDir:    l.ProjectDir,
		ProjectInfo:   l.ProjectInfo,
		Status:        types.SessionStatus(l.Status),
	}

	updated := session.StartTime
	for _, t := range l.Tasks {
		task := types.Task{
			ID:          t.ID,
			Description: t.Description,
			Type:        t.Type,
			Status:      types.TaskStatus(t.Status),
			StartTime:   fromMillis(t.StartTime),
			Result:      t.Result,
			Error:       t.Error,
		}
		if t.EndTime > 0 {
			end := fromMillis(t.EndTime)
			task.EndTime = &end
			if end.After(updated) {
				updated = end
			}
		}
		session.Tasks = append(session.Tasks, task)
	}

	seen := make(map[string]bool)
	for _, p := range l.ModifiedFiles {
		if !seen[p] {
			seen[p] = true
			session.ModifiedFiles = append(session.ModifiedFiles, p)
		}
	}

	for _, b := range l.Backups {
		ts := fromMillis(b.Timestamp)
		session.Backups = append(session.Backups, types.Backup{
			ID:           b.ID,
			OriginalPath: b.OriginalPath,
			BackupPath:   b.BackupPath,
			Timestamp:    ts,
		})
		if ts.After(updated) {
			updated = ts
		}
	}

	for _, lg := range l.Logs {
		ts := fromMillis(lg.Timestamp)
		session.Logs = append(session.Logs, types.LogEntry{
			ID:        lg.ID,
			Timestamp: ts,
			Level:     lg.Level,
			Message:   lg.Message,
			Data:      lg.Data,
		})
		if ts.After(updated) {
			updated = ts
		}
	}

	session.UpdatedAt = updated
	normalize(session)
	return session
}

// normalize replaces nil collections and fills missing fields
func normalize(s *types.Session) {
	if s.Tasks == nil {
		s.Tasks = []types.Task{}
	}
	if s.ModifiedFiles == nil {
		s.ModifiedFiles = []string{}
	}
	if s.Backups == nil {
		s.Backups = []types.Backup{}
	}
	if s.Logs == nil {
		s.Logs = []types.LogEntry{}
	}
	if s.Status == "" {
		s.Status = types.SessionRunning
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.StartTime
	}
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// =============================================================================
// HELPERS
// =============================================================================

func readJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Write to a temp file then rename so readers never see a partial file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// GenerateID returns prefix-YYYYMMDD-<8 hex chars>
func GenerateID(prefix string) string {
	now := time.Now()
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), short)
}
