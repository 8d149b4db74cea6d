package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saeedalam/projectassistant/internal/orchestrator"
	"github.com/saeedalam/projectassistant/internal/session"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// maxBodyBytes bounds request bodies; saved files travel in them
const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, types.OK(data))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.Result{Success: false, Error: msg})
}

// writeErr maps domain errors onto HTTP statuses
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrNothingToExport):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrBackupNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrMissingCredential):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
