package api

import (
	"net/http"
	"strings"

	"github.com/saeedalam/projectassistant/internal/orchestrator"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// TaskHandler runs tasks through the orchestrator
type TaskHandler struct {
	orch *orchestrator.Orchestrator
}

// NewTaskHandler creates a task handler
func NewTaskHandler(orch *orchestrator.Orchestrator) *TaskHandler {
	return &TaskHandler{orch: orch}
}

type taskRequest struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Run handles POST /api/task. It answers once the task is finished; progress
// streams over /ws meanwhile.
func (h *TaskHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "task description is required")
		return
	}
	taskType := ""
	if req.Type != "" {
		t, ok := types.ParseTaskType(req.Type)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown task type: "+req.Type)
			return
		}
		taskType = t
	}

	task, err := h.orch.Run(r.Context(), req.Description, taskType)
	if err != nil {
		if task.ID == "" {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusBadGateway, types.Result{Success: false, Error: err.Error(), Data: task})
		return
	}
	writeOK(w, task)
}
