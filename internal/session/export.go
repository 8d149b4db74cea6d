package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saeedalam/projectassistant/internal/events"
	"github.com/saeedalam/projectassistant/internal/storage"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// ExternalDir holds exported files that live outside the project root
const ExternalDir = "_external"

// ExportModified copies every modified file that still exists into a fresh
// export directory, preserving project-relative structure, and writes
// metadata.json beside them. The session lock is released while copying.
func (m *Manager) ExportModified() (types.ExportResult, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return types.ExportResult{}, ErrNoSession
	}
	sessionID, projectDir := m.current.ID, m.current.ProjectDir
	modified := append([]string(nil), m.current.ModifiedFiles...)
	m.mu.Unlock()

	type entry struct{ src, rel string }
	var files []entry
	for _, p := range modified {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			m.logger.Debug().Str("file", p).Msg("skip missing modified file")
			continue
		}
		files = append(files, entry{src: p, rel: exportPath(projectDir, p)})
	}
	if len(files) == 0 {
		return types.ExportResult{}, ErrNothingToExport
	}

	exportID := storage.GenerateID("export")
	exportDir := filepath.Join(m.exportsDir, exportID)

	manifest := types.ExportManifest{
		Timestamp:  time.Now(),
		SessionID:  sessionID,
		ProjectDir: projectDir,
		Files:      []string{},
	}
	for _, f := range files {
		dst := filepath.Join(exportDir, filepath.FromSlash(f.rel))
		unlock := m.locks.Lock(f.src)
		err := copyInto(f.src, dst)
		unlock()
		if err != nil {
			m.logger.Warn().Err(err).Str("file", f.src).Msg("export copy failed")
			continue
		}
		manifest.Files = append(manifest.Files, f.rel)
	}

	if err := storage.WriteManifest(exportDir, manifest); err != nil {
		return types.ExportResult{}, fmt.Errorf("write export manifest: %w", err)
	}

	result := types.ExportResult{ExportID: exportID, ExportDir: exportDir, Count: len(manifest.Files)}

	m.mu.Lock()
	defer m.mu.Unlock()

	data := map[string]any{"exportId": exportID, "count": result.Count}
	if err := m.updateSessionLocked(sessionID, func(*types.Session) {}, "Files exported", data); err != nil {
		return result, err
	}

	m.bus.Publish(events.FilesExported, result)
	return result, nil
}

// exportPath maps a modified file to its slash-separated location inside an
// export directory
func exportPath(projectDir, path string) string {
	if rel := relative(projectDir, path); rel != "" {
		return rel
	}
	trimmed := strings.TrimPrefix(filepath.ToSlash(path), filepath.ToSlash(filepath.VolumeName(path)))
	return ExternalDir + "/" + strings.TrimLeft(trimmed, "/")
}

func copyInto(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
