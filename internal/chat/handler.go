package chat

import (
	"encoding/json"
	"net/http"

	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Handler exposes the chat service over HTTP.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("chat: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ChatRequest is the widget's message envelope. An empty session_id starts a
// new conversation; the minted id comes back in the response.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse mirrors what the demo widget renders.
type ChatResponse struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions,omitempty"`
	SessionID   string   `json:"session_id"`
	Escalated   bool     `json:"escalated,omitempty"`
	Debug       Debug    `json:"debug"`
}

const maxChatBodyBytes = 16 << 10

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// An empty message is a valid turn: the engine reads it as silence.
	reply := h.svc.Respond(r.Context(), req.SessionID, req.Message)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{
		Reply:       reply.Reply,
		Suggestions: reply.Suggestions,
		SessionID:   reply.SessionID,
		Escalated:   reply.Escalated,
		Debug:       reply.Debug,
	}); err != nil {
		h.logger.Error("chat response encode failed", "error", err)
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Root handles GET / with a minimal service descriptor.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": "kai-assistant",
		"chat":    "POST /chat",
	})
}
