// Package api exposes sessions and tasks over HTTP, with a websocket stream
// of session events for the browser UI.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/orchestrator"
	"github.com/saeedalam/projectassistant/internal/session"
)

// NewRouter creates the chi router with all routes and middleware
func NewRouter(sessions *session.Manager, orch *orchestrator.Orchestrator, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(CORS)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	sessionH := NewSessionHandler(sessions)
	fileH := NewFileHandler(sessions)
	taskH := NewTaskHandler(orch)
	eventsH := NewEventsHandler(sessions, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", sessionH.Status)
		r.Get("/session", sessionH.Current)
		r.Post("/session/start", sessionH.Start)
		r.Post("/session/load", sessionH.Load)
		r.Get("/sessions", sessionH.List)

		r.Post("/task", taskH.Run)

		r.Get("/file", fileH.Read)
		r.Post("/file/save", fileH.Save)
		r.Post("/export", fileH.Export)
		r.Post("/rollback", fileH.Rollback)
		r.Get("/backups", fileH.Backups)
	})

	r.Get("/ws", eventsH.Stream)

	return r
}
