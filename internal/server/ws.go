package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/talentbridge/talentbridge/internal/interview"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from a separate origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventFrame is one message on the channel: a named event with a JSON
// payload, in either direction.
type eventFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsEmitter adapts a websocket connection to the orchestrator's Emitter.
// The mutex guards against concurrent writes, which gorilla connections do
// not allow.
type wsEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (e *wsEmitter) Emit(event string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.WriteJSON(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: event, Data: payload})
}

// handleWS upgrades the connection and runs the per-connection event loop.
// Events on one connection are processed in order; separate connections run
// in their own goroutines, so one session's generation call never blocks
// another session.
func (h *handlers) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	em := &wsEmitter{conn: conn}

	for {
		var frame eventFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket closed", slog.String("error", err.Error()))
			}
			return
		}

		h.dispatch(r.Context(), frame, em)
	}
}

func (h *handlers) dispatch(ctx context.Context, frame eventFrame, em *wsEmitter) {
	switch frame.Event {
	case "start-interview":
		var payload struct {
			interview.Profile
			User string `json:"user,omitempty"`
		}
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				h.emitError(em, "invalid start-interview payload")
				return
			}
		}
		h.orch.StartInterview(ctx, payload.User, payload.Profile, em)

	case "user-message":
		var payload struct {
			Message   string `json:"message"`
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			h.emitError(em, "invalid user-message payload")
			return
		}
		h.orch.HandleMessage(ctx, payload.SessionID, payload.Message, em)

	case "speech-text":
		// Transcribed speech is handled exactly like a typed message.
		var payload struct {
			Text      string `json:"text"`
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			h.emitError(em, "invalid speech-text payload")
			return
		}
		h.orch.HandleMessage(ctx, payload.SessionID, payload.Text, em)

	case "get-history":
		sessionID := decodeSessionID(frame.Data)
		hist, err := h.orch.History(sessionID)
		if err != nil {
			h.emitError(em, "session not found")
			return
		}
		if err := em.Emit(interview.EventHistory, hist); err != nil {
			h.logger.Error("failed to emit history", slog.String("error", err.Error()))
		}

	default:
		h.emitError(em, "unknown event: "+frame.Event)
	}
}

// decodeSessionID accepts the session id either as a bare JSON string or as
// an object with a sessionId field.
func decodeSessionID(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		return payload.SessionID
	}
	return ""
}

func (h *handlers) emitError(em *wsEmitter, message string) {
	if err := em.Emit(interview.EventError, interview.ErrorPayload{Message: message}); err != nil {
		h.logger.Error("failed to emit error event", slog.String("error", err.Error()))
	}
}
