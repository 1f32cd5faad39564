package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/bookings"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// AdminBookingsHandler serves the archived bookings list for the admin UI.
type AdminBookingsHandler struct {
	archive *bookings.Archive
	logger  *logging.Logger
}

func NewAdminBookingsHandler(archive *bookings.Archive, logger *logging.Logger) *AdminBookingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminBookingsHandler{archive: archive, logger: logger}
}

// ListRecent handles GET /admin/bookings?limit=N.
func (h *AdminBookingsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list bookings failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []bookings.BookingRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"bookings": rows}); err != nil {
		h.logger.Error("encode bookings failed", "error", err)
	}
}
