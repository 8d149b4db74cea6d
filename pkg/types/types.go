package types

import (
	"strings"
	"time"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// SchemaVersion is the version written into every session file.
// Version 1 is the legacy layout with millisecond timestamps and no version field.
const SchemaVersion = 2

// SessionStatus is the lifecycle state of a session
type SessionStatus string

const (
	SessionIdle    SessionStatus = "idle"
	SessionRunning SessionStatus = "running"
	SessionPaused  SessionStatus = "paused"
)

// Session binds one project directory to its tasks, backups and modified files
type Session struct {
	SchemaVersion int           `json:"schemaVersion"`
	ID            string        `json:"id"`
	StartTime     time.Time     `json:"startTime"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	ProjectDir    string        `json:"projectDir"`
	ProjectInfo   ProjectInfo   `json:"projectInfo"`
	Tasks         []Task        `json:"tasks"`
	ModifiedFiles []string      `json:"modifiedFiles"` // absolute paths, no duplicates
	Backups       []Backup      `json:"backups"`
	Status        SessionStatus `json:"status"`
	Logs          []LogEntry    `json:"logs"`
}

// Clone returns a deep copy that shares no slices or maps with s
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.ProjectInfo = s.ProjectInfo.Clone()
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	c.ModifiedFiles = append([]string{}, s.ModifiedFiles...)
	c.Backups = append([]Backup{}, s.Backups...)
	c.Logs = append([]LogEntry{}, s.Logs...)
	return &c
}

// FindBackup returns the backup with the given id
func (s *Session) FindBackup(id string) (Backup, bool) {
	for _, b := range s.Backups {
		if b.ID == id {
			return b, true
		}
	}
	return Backup{}, false
}

// FindTask returns the index of the task with the given id, or -1
func (s *Session) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// HasModified reports whether path is in the modified file set
func (s *Session) HasModified(path string) bool {
	for _, p := range s.ModifiedFiles {
		if p == path {
			return true
		}
	}
	return false
}

// SessionSummary is the listing view of a persisted session
type SessionSummary struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"startTime"`
	ProjectDir string    `json:"projectDir"`
	Tasks      int       `json:"tasks"`
}

// SessionStatusReport is what `status` shows for the current session
type SessionStatusReport struct {
	ID            string        `json:"id"`
	Status        SessionStatus `json:"status"`
	Duration      string        `json:"duration"`
	ProjectDir    string        `json:"projectDir"`
	ModifiedFiles []string      `json:"modifiedFiles"`
	Backups       int           `json:"backups"`
	Tasks         int           `json:"tasks"`
}

// LogEntry is a free-form session log line
type LogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"` // info, warning, error
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// =============================================================================
// TASKS
// =============================================================================

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether no further transition is allowed
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task type labels
const (
	TaskTypeCreate    = "Create new component"
	TaskTypeModify    = "Modify existing code"
	TaskTypeFix       = "Fix a bug"
	TaskTypeImplement = "Implement a feature"
	TaskTypeOther     = "Other"
)

// TaskTypes lists the task types in the order they are offered to users
var TaskTypes = []string{
	TaskTypeCreate,
	TaskTypeModify,
	TaskTypeFix,
	TaskTypeImplement,
	TaskTypeOther,
}

var taskTypeAliases = map[string]string{
	"create":    TaskTypeCreate,
	"modify":    TaskTypeModify,
	"fix":       TaskTypeFix,
	"implement": TaskTypeImplement,
	"other":     TaskTypeOther,
}

// ParseTaskType accepts a full task type label or its one-word alias
func ParseTaskType(s string) (string, bool) {
	for _, t := range TaskTypes {
		if strings.EqualFold(s, t) {
			return t, true
		}
	}
	t, ok := taskTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Task is one user request for generated code
type Task struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Type        string      `json:"type,omitempty"`
	Status      TaskStatus  `json:"status"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime,omitempty"`
	Result      *TaskResult `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Clone returns a deep copy of t
func (t Task) Clone() Task {
	if t.EndTime != nil {
		end := *t.EndTime
		t.EndTime = &end
	}
	if t.Result != nil {
		r := *t.Result
		r.Files = append([]string(nil), t.Result.Files...)
		t.Result = &r
	}
	return t
}

// TaskResult is the parsed model output for a completed task
type TaskResult struct {
	Code        string   `json:"code"`
	Explanation string   `json:"explanation"`
	Files       []string `json:"files,omitempty"` // context files, project-relative
}

// =============================================================================
// PROJECT
// =============================================================================

// ProjectInfo is the structural fingerprint of a project
type ProjectInfo struct {
	Framework       string            `json:"framework"`
	RouterType      string            `json:"routerType"`
	HasTypeScript   bool              `json:"hasTypeScript"`
	Styling         []string          `json:"styling"`
	StateManagement []string          `json:"stateManagement"`
	UILibraries     []string          `json:"uiLibraries"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Clone returns a deep copy of p
func (p ProjectInfo) Clone() ProjectInfo {
	p.Styling = append([]string{}, p.Styling...)
	p.StateManagement = append([]string{}, p.StateManagement...)
	p.UILibraries = append([]string{}, p.UILibraries...)
	p.Dependencies = cloneMap(p.Dependencies)
	p.DevDependencies = cloneMap(p.DevDependencies)
	return p
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RelevantFile is a scored candidate file; never persisted
type RelevantFile struct {
	Path    string `json:"path"`
	Content string `json:"-"`
	Score   int    `json:"score"`
}

// =============================================================================
// BACKUPS & EXPORTS
// =============================================================================

// Backup is an immutable point-in-time copy of a file
type Backup struct {
	ID           string    `json:"id"`
	OriginalPath string    `json:"originalPath"`
	BackupPath   string    `json:"backupPath"`
	Timestamp    time.Time `json:"timestamp"`
}

// ExportManifest is written as metadata.json into every export directory
type ExportManifest struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"sessionId"`
	ProjectDir string    `json:"projectDir"`
	Files      []string  `json:"files"`
}

// ExportResult describes a finished export
type ExportResult struct {
	ExportID  string `json:"exportId"`
	ExportDir string `json:"exportDir"`
	Count     int    `json:"count"`
}

// SaveResult describes a written file
type SaveResult struct {
	Path         string `json:"path"`
	RelativePath string `json:"relativePath"`
	BackupID     string `json:"backupId,omitempty"`
}

// RollbackResult describes a restored file
type RollbackResult struct {
	BackupID string `json:"backupId"`
	File     string `json:"file"`
	// SnapshotID is the backup taken of the content that the restore replaced
	SnapshotID string `json:"snapshotId,omitempty"`
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// Result is the structured outcome returned across the API boundary
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps data in a successful result
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// Fail converts an error into a failed result
func Fail(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
