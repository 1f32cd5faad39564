// Package router assembles the HTTP surface of the assistant.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/chat"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/http/handlers"
	httpmiddleware "github.com/kaidodd21-ctrl/kai-assistant/internal/http/middleware"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/webchat"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger      *logging.Logger
	ChatHandler *chat.Handler

	// Optional surfaces.
	WebchatHandler *webchat.Handler
	AdminBookings  *handlers.AdminBookingsHandler
	AdminSessions  *handlers.AdminSessionsHandler
	MetricsHandler http.Handler

	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// ChatRatePerSecond limits POST /chat per client IP; zero disables.
	ChatRatePerSecond float64
	ChatRateBurst     int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/", cfg.ChatHandler.Root)
		public.Get("/health", cfg.ChatHandler.Health)

		chatRoute := public.With()
		if cfg.ChatRatePerSecond > 0 {
			chatRoute = public.With(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst))
		}
		chatRoute.Post("/chat", cfg.ChatHandler.Chat)

		if cfg.WebchatHandler != nil {
			public.Get("/webchat/ws", cfg.WebchatHandler.HandleWebSocket)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	if cfg.AdminBookings != nil || cfg.AdminSessions != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AdminBookings != nil {
				admin.Get("/bookings", cfg.AdminBookings.ListRecent)
			}
			if cfg.AdminSessions != nil {
				admin.Get("/sessions/{id}", cfg.AdminSessions.GetSession)
			}
		})
	}

	return r
}
