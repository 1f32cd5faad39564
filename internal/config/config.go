package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Assistant behavior
	Mode             string // "rules" (extractive slot filling) or "llm" (model-planned)
	BusinessConfig   string // path to the business/services JSON file
	HistoryLimit     int
	RetryCeiling     int
	PaymentLinkBase  string
	EscalationFloor  float64 // minimum LLM confidence before offering human handoff
	LLMReformatRetry bool    // allow one reformat round-trip on malformed LLM output

	// Session store
	SessionTTL          time.Duration
	SessionSnapshotPath string
	RedisAddr           string
	RedisPassword       string
	RedisTLS            bool

	// Booking archive (optional)
	DatabaseURL string

	// LLM fallback (optional)
	GeminiAPIKey string
	GeminiModel  string

	// Notifications (optional)
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Admin surface
	AdminJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		Mode:             strings.ToLower(strings.TrimSpace(getEnv("ASSISTANT_MODE", "rules"))),
		BusinessConfig:   getEnv("BUSINESS_CONFIG", "services.json"),
		HistoryLimit:     getEnvAsInt("HISTORY_LIMIT", 10),
		RetryCeiling:     getEnvAsInt("RETRY_CEILING", 2),
		PaymentLinkBase:  getEnv("PAYMENT_LINK_BASE", "https://example-payments/checkout"),
		EscalationFloor:  getEnvAsFloat("LLM_ESCALATION_FLOOR", 0.45),
		LLMReformatRetry: getEnvAsBool("LLM_REFORMAT_RETRY", true),

		SessionTTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionSnapshotPath: getEnv("SESSION_SNAPSHOT_PATH", "sessions.json"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisTLS:            getEnvAsBool("REDIS_TLS", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Kai Assistant"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
