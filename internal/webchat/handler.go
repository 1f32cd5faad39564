// Package webchat exposes the assistant over a WebSocket for the embedded
// site widget. Each message is answered synchronously through the same chat
// service the HTTP endpoint uses, so both transports share one contract.
package webchat

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/chat"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Responder is the chat surface the widget talks to. Satisfied by
// *chat.Service.
type Responder interface {
	Respond(ctx context.Context, sessionID, message string) chat.Reply
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type        string   `json:"type"` // "message", "pong", "error"
	Text        string   `json:"text,omitempty"`
	Role        string   `json:"role,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 16 << 10
)

// Handler manages web chat connections.
type Handler struct {
	responder Responder
	upgrader  websocket.Upgrader
	logger    *logging.Logger
}

// NewHandler creates a web chat handler. checkOrigin may be nil to accept
// any origin, which is what the embeddable widget needs.
func NewHandler(responder Responder, checkOrigin func(*http.Request) bool, logger *logging.Logger) *Handler {
	if responder == nil {
		panic("webchat: responder cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		responder: responder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and serves the message loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	sessionID := r.URL.Query().Get("session")

	for {
		var in InboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		switch in.Type {
		case "ping":
			h.send(conn, OutboundMessage{Type: "pong"})

		case "message":
			if in.SessionID != "" {
				sessionID = in.SessionID
			}
			reply := h.responder.Respond(r.Context(), sessionID, in.Text)
			sessionID = reply.SessionID
			h.send(conn, OutboundMessage{
				Type:        "message",
				Role:        "assistant",
				Text:        reply.Reply,
				Suggestions: reply.Suggestions,
				SessionID:   reply.SessionID,
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
			})

		default:
			h.send(conn, OutboundMessage{Type: "error", Text: "unknown message type"})
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg OutboundMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", "error", err)
	}
}
