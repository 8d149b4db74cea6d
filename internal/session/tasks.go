package session

import (
	"fmt"
	"time"

	"github.com/saeedalam/projectassistant/internal/events"
	"github.com/saeedalam/projectassistant/internal/storage"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// BeginTask appends a running task to the current session
func (m *Manager) BeginTask(description, taskType string) (types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return types.Task{}, ErrNoSession
	}

	task := types.Task{
		ID:          storage.GenerateID("task"),
		Description: description,
		Type:        taskType,
		Status:      types.TaskRunning, // pending is never observable
		StartTime:   time.Now(),
	}

	m.current.Tasks = append(m.current.Tasks, task)
	m.addLogLocked(LevelInfo, "Task started", map[string]any{"taskId": task.ID, "description": description})
	if err := m.persistLocked(); err != nil {
		return types.Task{}, err
	}

	m.bus.Publish(events.TaskStarted, task.Clone())
	return task.Clone(), nil
}

// CompleteTask marks a running task completed with its result
func (m *Manager) CompleteTask(sessionID, taskID string, result types.TaskResult) (types.Task, error) {
	return m.finishTask(sessionID, taskID, func(t *types.Task) {
		t.Status = types.TaskCompleted
		t.Result = &result
	})
}

// FailTask marks a running task failed with the error message
func (m *Manager) FailTask(sessionID, taskID string, cause error) (types.Task, error) {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return m.finishTask(sessionID, taskID, func(t *types.Task) {
		t.Status = types.TaskFailed
		t.Error = msg
	})
}

// finishTask applies a terminal transition. The task's session may have been
// replaced while the task ran; it is then updated on disk instead.
func (m *Manager) finishTask(sessionID, taskID string, apply func(*types.Task)) (types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current
	detached := s == nil || s.ID != sessionID
	if detached {
		loaded, err := m.store.Load(sessionID)
		if err != nil {
			return types.Task{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		s = loaded
	}

	i := s.FindTask(taskID)
	if i < 0 {
		return types.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	task := &s.Tasks[i]
	if task.Status.Terminal() {
		return task.Clone(), fmt.Errorf("task %s already %s", taskID, task.Status)
	}

	end := time.Now()
	task.EndTime = &end
	apply(task)
	done := task.Clone()

	eventType, level, message := events.TaskCompleted, LevelInfo, "Task completed"
	if done.Status == types.TaskFailed {
		eventType, level, message = events.TaskFailed, LevelError, "Task failed"
	}
	data := map[string]any{"taskId": taskID}
	if done.Error != "" {
		data["error"] = done.Error
	}

	if detached {
		s.Logs = append(s.Logs, types.LogEntry{
			ID:        storage.GenerateID("log"),
			Timestamp: end,
			Level:     level,
			Message:   message,
			Data:      data,
		})
		s.UpdatedAt = end
		if err := m.store.Save(s); err != nil {
			return done, err
		}
	} else {
		m.addLogLocked(level, message, data)
		if err := m.persistLocked(); err != nil {
			return done, err
		}
	}

	m.bus.Publish(eventType, done)
	return done, nil
}
