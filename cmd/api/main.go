package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/api/router"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/bookings"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/business"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/chat"
	appconfig "github.com/kaidodd21-ctrl/kai-assistant/internal/config"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/dialogue"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/http/handlers"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/llm"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/notify"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/observability/metrics"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/internal/webchat"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting kai-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"mode", cfg.Mode,
	)

	biz, err := business.Load(cfg.BusinessConfig)
	if err != nil {
		logger.Warn("business config fell back to defaults", "path", cfg.BusinessConfig, "error", err)
	}

	store := buildSessionStore(cfg, logger)

	controller := dialogue.NewController(biz, dialogue.Config{
		RetryCeiling:    cfg.RetryCeiling,
		HistoryLimit:    cfg.HistoryLimit,
		PaymentLinkBase: cfg.PaymentLinkBase,
	}, logger)

	var llmEngine *dialogue.LLMEngine
	if cfg.Mode == chat.ModeLLM {
		if cfg.GeminiAPIKey == "" {
			logger.Warn("ASSISTANT_MODE=llm but GEMINI_API_KEY is empty, staying in rules mode")
		} else {
			client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Error("gemini client init failed", "error", err)
				os.Exit(1)
			}
			defer client.Close()
			planner := llm.NewPlanner(client, biz, llm.PlannerConfig{
				Model:           cfg.GeminiModel,
				EscalationFloor: cfg.EscalationFloor,
				ReformatRetry:   cfg.LLMReformatRetry,
			}, logger)
			llmEngine = dialogue.NewLLMEngine(planner, biz, cfg.HistoryLimit, nil, logger)
		}
	}

	var archive *bookings.Archive
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("open database failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Error("ping database failed", "error", err)
			os.Exit(1)
		}
		archive = bookings.NewArchive(db, logger)
	}

	var confirmer *notify.Confirmer
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else if cfg.Env == "development" {
		sender = notify.NewStubEmailSender(logger)
	}
	if sender != nil {
		confirmer = notify.NewConfirmer(sender, biz.Business.Name, logger)
	}

	svc := chat.NewService(store, controller, chat.Options{
		Mode:     cfg.Mode,
		LLM:      llmEngine,
		Archive:  archive,
		Notifier: confirmer,
		Metrics:  metrics.NewChatMetrics(nil),
		Logger:   logger,
	})

	chatHandler := chat.NewHandler(svc, logger)
	webchatHandler := webchat.NewHandler(svc, nil, logger)

	var adminBookings *handlers.AdminBookingsHandler
	var adminSessions *handlers.AdminSessionsHandler
	if cfg.AdminJWTSecret != "" {
		adminBookings = handlers.NewAdminBookingsHandler(archive, logger)
		adminSessions = handlers.NewAdminSessionsHandler(store, logger)
	}

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		WebchatHandler:     webchatHandler,
		AdminBookings:      adminBookings,
		AdminSessions:      adminSessions,
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRatePerSecond:  5,
		ChatRateBurst:      10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildSessionStore prefers Redis when configured and falls back to the
// snapshotting in-memory store for single-node deployments.
func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory session store", "snapshot", cfg.SessionSnapshotPath)
		return session.NewMemoryStore(cfg.SessionTTL, cfg.SessionSnapshotPath)
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return session.NewRedisStore(client, cfg.SessionTTL)
}
