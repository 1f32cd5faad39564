package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// AdminSessionsHandler exposes a read-only view of a live session for
// support staff. It never creates or mutates sessions.
type AdminSessionsHandler struct {
	store  session.Store
	logger *logging.Logger
}

func NewAdminSessionsHandler(store session.Store, logger *logging.Logger) *AdminSessionsHandler {
	if store == nil {
		panic("handlers: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionsHandler{store: store, logger: logger}
}

type sessionView struct {
	SessionID    string            `json:"session_id"`
	Slots        map[string]string `json:"slots"`
	LastIntent   string            `json:"last_intent,omitempty"`
	HistoryLen   int               `json:"history_len"`
	BookingCount int               `json:"booking_count"`
	LastSeen     string            `json:"last_seen"`
}

// GetSession handles GET /admin/sessions/{id}.
func (h *AdminSessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	sess, err := h.store.Peek(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("session lookup failed", "session_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view := sessionView{
		SessionID:    sess.ID,
		Slots:        sess.Slots.Snapshot(),
		LastIntent:   sess.LastIntent,
		HistoryLen:   len(sess.History),
		BookingCount: len(sess.Bookings),
		LastSeen:     sess.LastSeen.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.logger.Error("encode session failed", "error", err)
	}
}
