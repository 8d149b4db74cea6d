package api

import (
	"net/http"
	"path/filepath"

	"github.com/saeedalam/projectassistant/internal/session"
)

// FileHandler serves file saves, reads, exports and rollbacks
type FileHandler struct {
	sessions *session.Manager
}

// NewFileHandler creates a file handler
func NewFileHandler(sessions *session.Manager) *FileHandler {
	return &FileHandler{sessions: sessions}
}

type saveRequest struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

// Save handles POST /api/file/save
func (h *FileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Path == "" || req.Content == nil {
		writeError(w, http.StatusBadRequest, "path and content are required")
		return
	}

	res, err := h.sessions.SaveFile(req.Path, *req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, res)
}

type fileResponse struct {
	Path         string `json:"path"`
	RelativePath string `json:"relativePath"`
	Content      string `json:"content"`
}

// Read handles GET /api/file?path=
func (h *FileHandler) Read(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	s := h.sessions.Current()
	if s == nil {
		writeErr(w, session.ErrNoSession)
		return
	}

	content, err := h.sessions.ReadFile(path)
	if err != nil {
		writeErr(w, err)
		return
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.ProjectDir, path)
	}
	rel, err := filepath.Rel(s.ProjectDir, full)
	if err != nil {
		rel = full
	}
	writeOK(w, fileResponse{Path: full, RelativePath: filepath.ToSlash(rel), Content: content})
}

// Export handles POST /api/export
func (h *FileHandler) Export(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessions.ExportModified()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, res)
}

type rollbackRequest struct {
	BackupID string `json:"backupId"`
}

// Rollback handles POST /api/rollback
func (h *FileHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.BackupID == "" {
		writeError(w, http.StatusBadRequest, "backupId is required")
		return
	}

	res, err := h.sessions.Rollback(req.BackupID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, res)
}

// Backups handles GET /api/backups
func (h *FileHandler) Backups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.sessions.BackupsByFile()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, groups)
}
