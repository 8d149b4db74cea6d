package backup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestBackupRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project", "Button.tsx")
	os.MkdirAll(filepath.Dir(target), 0755)

	original := []byte("export const Button = () => null\n\x00\xff binary tail")
	if err := os.WriteFile(target, original, 0644); err != nil {
		t.Fatalf("Failed to write target: %v", err)
	}

	m := NewManager(filepath.Join(dir, "backups"))
	b, err := m.Backup(target)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	if b.OriginalPath != target {
		t.Errorf("Expected original %s, got %s", target, b.OriginalPath)
	}
	if !strings.HasSuffix(b.BackupPath, b.ID+"_Button.tsx") {
		t.Errorf("Unexpected backup path %s", b.BackupPath)
	}
	copyData, _ := os.ReadFile(b.BackupPath)
	if !bytes.Equal(copyData, original) {
		t.Error("Backup copy differs from original")
	}

	if err := os.WriteFile(target, []byte("changed"), 0644); err != nil {
		t.Fatalf("Failed to modify target: %v", err)
	}
	if err := m.Restore(b); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	restored, _ := os.ReadFile(target)
	if !bytes.Equal(restored, original) {
		t.Errorf("Expected restored content to equal original, got %q", restored)
	}
}

func TestBackupMissingFile(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Backup(filepath.Join(t.TempDir(), "nope.ts")); err == nil {
		t.Error("Expected error for missing source")
	}
}

func TestRestoreMissingCopy(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.ts")
	os.WriteFile(target, []byte("a"), 0644)

	m := NewManager(filepath.Join(dir, "backups"))
	b, err := m.Backup(target)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	os.Remove(b.BackupPath)

	if err := m.Restore(b); !errors.Is(err, ErrMissingCopy) {
		t.Errorf("Expected ErrMissingCopy, got %v", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "a" {
		t.Error("Target must be untouched when the copy is missing")
	}
}

func TestBackupsAreDistinct(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.ts")
	m := NewManager(filepath.Join(dir, "backups"))

	os.WriteFile(target, []byte("v1"), 0644)
	b1, _ := m.Backup(target)
	os.WriteFile(target, []byte("v2"), 0644)
	b2, _ := m.Backup(target)

	if b1.ID == b2.ID || b1.BackupPath == b2.BackupPath {
		t.Fatal("Expected distinct backups")
	}
	d1, _ := os.ReadFile(b1.BackupPath)
	d2, _ := os.ReadFile(b2.BackupPath)
	if string(d1) != "v1" || string(d2) != "v2" {
		t.Errorf("Unexpected contents %q, %q", d1, d2)
	}
}

func TestPathLocksSerialize(t *testing.T) {
	locks := NewPathLocks()
	var wg sync.WaitGroup
	var mu sync.Mutex
	active, maxActive := 0, 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("/same/path")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("Expected at most one holder, saw %d", maxActive)
	}
}
