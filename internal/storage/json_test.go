package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saeedalam/projectassistant/pkg/types"
)

func setupTestStore(t *testing.T) *SessionStore {
	t.Helper()
	dir := t.TempDir()
	return NewSessionStore(filepath.Join(dir, "sessions"), filepath.Join(dir, "current"))
}

func newSession(id string, start time.Time) *types.Session {
	return &types.Session{
		ID:            id,
		StartTime:     start,
		UpdatedAt:     start,
		ProjectDir:    "/tmp/project",
		Tasks:         []types.Task{},
		ModifiedFiles: []string{},
		Backups:       []types.Backup{},
		Logs:          []types.LogEntry{},
		Status:        types.SessionRunning,
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSessionSaveAndLoad(t *testing.T) {
	store := setupTestStore(t)

	start := time.Now().Truncate(time.Millisecond)
	s := newSession("sess-1", start)
	end := start.Add(time.Minute)
	s.Tasks = append(s.Tasks, types.Task{
		ID:          "task-1",
		Description: "fix the login bug",
		Type:        types.TaskTypeFix,
		Status:      types.TaskCompleted,
		StartTime:   start,
		EndTime:     &end,
		Result:      &types.TaskResult{Code: "x()", Explanation: "done"},
	})
	s.ModifiedFiles = []string{"/tmp/project/a.ts"}

	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("sess-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SchemaVersion != types.SchemaVersion {
		t.Errorf("Expected schema version %d, got %d", types.SchemaVersion, loaded.SchemaVersion)
	}
	if !loaded.StartTime.Equal(start) {
		t.Errorf("Expected start %v, got %v", start, loaded.StartTime)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].Result.Code != "x()" {
		t.Errorf("Task not round-tripped: %+v", loaded.Tasks)
	}
	if loaded.Tasks[0].EndTime == nil || !loaded.Tasks[0].EndTime.Equal(end) {
		t.Errorf("Expected end time %v", end)
	}
	if len(loaded.ModifiedFiles) != 1 {
		t.Errorf("Expected 1 modified file, got %v", loaded.ModifiedFiles)
	}

	if _, err := os.Stat(filepath.Join(store.Dir(), "sess-1.json.tmp")); !os.IsNotExist(err) {
		t.Error("Temp file should not remain after save")
	}
}

func TestSessionLoadMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Load("nope")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionLoadMalformed(t *testing.T) {
	store := setupTestStore(t)
	os.MkdirAll(store.Dir(), 0755)
	os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte("{not json"), 0644)

	_, err := store.Load("bad")
	if err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected a parse error, got %v", err)
	}
}

func TestSessionInvalidID(t *testing.T) {
	store := setupTestStore(t)
	for _, id := range []string{"", "../escape", "a/b"} {
		if _, err := store.Load(id); err == nil {
			t.Errorf("Expected error for id %q", id)
		}
	}
}

func TestLegacySessionMigration(t *testing.T) {
	store := setupTestStore(t)
	os.MkdirAll(store.Dir(), 0755)

	legacy := `{
  "id": "old",
  "startTime": 1700000000000,
  "projectDir": "/work/app",
  "projectInfo": {"framework": "Next.js", "routerType": "App Router", "hasTypeScript": true,
    "styling": ["Tailwind CSS"], "stateManagement": [], "uiLibraries": []},
  "tasks": [{"id": "t1", "description": "add modal", "status": "completed",
    "startTime": 1700000001000, "endTime": 1700000002000,
    "result": {"code": "<Modal/>", "explanation": "ok"}}],
  "modifiedFiles": ["/work/app/a.tsx", "/work/app/a.tsx"],
  "backups": [{"id": "b1", "originalPath": "/work/app/a.tsx", "backupPath": "/x/b1_a.tsx", "timestamp": 1700000003000}],
  "status": "running",
  "logs": [{"id": "l1", "timestamp": 1700000004000, "level": "info", "message": "Session started", "data": {}}]
}`
	os.WriteFile(filepath.Join(store.Dir(), "old.json"), []byte(legacy), 0644)

	s, err := store.Load("old")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.StartTime.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("Unexpected start time %v", s.StartTime)
	}
	if s.Tasks[0].EndTime == nil || !s.Tasks[0].EndTime.Equal(time.UnixMilli(1700000002000)) {
		t.Errorf("Unexpected task end time %v", s.Tasks[0].EndTime)
	}
	if len(s.ModifiedFiles) != 1 {
		t.Errorf("Expected duplicates removed, got %v", s.ModifiedFiles)
	}
	if !s.Backups[0].Timestamp.Equal(time.UnixMilli(1700000003000)) {
		t.Errorf("Unexpected backup timestamp %v", s.Backups[0].Timestamp)
	}
	if !s.UpdatedAt.Equal(time.UnixMilli(1700000004000)) {
		t.Errorf("Expected updatedAt from the latest event, got %v", s.UpdatedAt)
	}
	if s.ProjectInfo.Framework != "Next.js" {
		t.Errorf("Project info lost: %+v", s.ProjectInfo)
	}

	// Saving rewrites it in the current layout
	if err := store.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(store.Dir(), "old.json"))
	if !strings.Contains(string(data), `"schemaVersion": 2`) {
		t.Error("Expected migrated file to carry schemaVersion 2")
	}
}

func TestSessionList(t *testing.T) {
	store := setupTestStore(t)

	base := time.Now()
	store.Save(newSession("older", base.Add(-time.Hour)))
	store.Save(newSession("newer", base))
	os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("]"), 0644)
	os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644)

	list, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(list))
	}
	if list[0].ID != "newer" || list[1].ID != "older" {
		t.Errorf("Expected newest first, got %s, %s", list[0].ID, list[1].ID)
	}
}

func TestSessionListEmptyDir(t *testing.T) {
	store := setupTestStore(t)
	list, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no sessions, got %d", len(list))
	}
}

// =============================================================================
// CURRENT POINTER TESTS
// =============================================================================

func TestCurrentPointer(t *testing.T) {
	store := setupTestStore(t)

	id, err := store.Current()
	if err != nil || id != "" {
		t.Errorf("Expected empty pointer, got %q, %v", id, err)
	}

	if err := store.SetCurrent("sess-9"); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}
	id, err = store.Current()
	if err != nil || id != "sess-9" {
		t.Errorf("Expected sess-9, got %q, %v", id, err)
	}
}

// =============================================================================
// MANIFEST & ID TESTS
// =============================================================================

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := types.ExportManifest{
		Timestamp:  time.Now().Truncate(time.Second),
		SessionID:  "s1",
		ProjectDir: "/p",
		Files:      []string{"a.ts", "_external/b.ts"},
	}
	if err := WriteManifest(dir, m); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if got.SessionID != "s1" || len(got.Files) != 2 {
		t.Errorf("Unexpected manifest %+v", got)
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID("sess")
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "sess" || len(parts[1]) != 8 || len(parts[2]) != 8 {
		t.Errorf("Unexpected id format %q", id)
	}
	if GenerateID("sess") == id {
		t.Error("Expected unique ids")
	}
}
