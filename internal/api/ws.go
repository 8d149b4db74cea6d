package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/saeedalam/projectassistant/internal/events"
	"github.com/saeedalam/projectassistant/internal/session"
)

const (
	// sessionStatusEvent greets a new connection with the current session
	sessionStatusEvent = "sessionStatus"
	eventBuffer        = 64
	writeWait          = 10 * time.Second
)

type clientMessage struct {
	Type string `json:"type"`
}

// EventsHandler streams bus events to websocket clients
type EventsHandler struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewEventsHandler creates a websocket handler. Origins are not checked; the
// server only binds to the local machine.
func NewEventsHandler(sessions *session.Manager, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Stream handles GET /ws. Only this goroutine writes to the connection; the
// reader hands pongs over through a channel.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	bus := h.sessions.Bus()
	sub := bus.Subscribe(eventBuffer)
	defer bus.Unsubscribe(sub)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	h.logger.Info().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	if s := h.sessions.Current(); s != nil {
		hello := events.Event{Type: sessionStatusEvent, Timestamp: time.Now(), Data: s}
		if err := h.write(conn, hello); err != nil {
			return
		}
	}

	pongs := make(chan struct{}, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if _, ok := err.(*websocket.CloseError); !ok {
					h.logger.Debug().Err(err).Msg("websocket read")
				}
				return
			}
			if msg.Type == "ping" {
				select {
				case pongs <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
			return
		case <-pongs:
			if err := h.write(conn, clientMessage{Type: "pong"}); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				h.logger.Warn().Str("remote", r.RemoteAddr).Msg("websocket client too slow, dropped")
				return
			}
			if err := h.write(conn, ev); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) write(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
