package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultCorsOrigin = "http://localhost:5173"

type Config struct {
	App      AppConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Quota    QuotaConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type AuthConfig struct {
	JwtSecret   string
	TokenExpiry time.Duration
}

type DatabaseConfig struct {
	Connection    string // postgres DSN (users)
	MongoURL      string
	MongoDatabase string
	SessionStore  string // "mongo" or "memory"
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider    string // "gemini" or "ollama"
	LLMModel       string
	OllamaBaseURL  string
	RequestTimeout time.Duration
	FormatRetries  int
	MaxTokens      int
}

type QuotaConfig struct {
	DailyRequestLimit int
	GuestSessionTTL   time.Duration
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: corsOrigins(getEnv("CORS_ALLOWED_ORIGINS", defaultCorsOrigin)),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JwtSecret:   getEnv("JWT_SECRET", "default_secret"),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Database: DatabaseConfig{
			Connection:    getEnv("DB_CONNECTION_STRING", ""),
			MongoURL:      getEnv("MONGO_URL", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGO_DATABASE", "symptom_checker"),
			SessionStore:  getEnv("SESSION_STORE", "mongo"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:       getEnv("LLM_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RequestTimeout: time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
			FormatRetries:  getEnvAsInt("LLM_FORMAT_RETRIES", 1),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 2048),
		},
		Quota: QuotaConfig{
			DailyRequestLimit: getEnvAsInt("DAILY_REQUEST_LIMIT", 200),
			GuestSessionTTL:   time.Duration(getEnvAsInt("GUEST_SESSION_TTL_HOURS", 24)) * time.Hour,
		},
		Otel: OtelConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// corsOrigins rejects "*"; credentialed CORS needs explicit origins.
func corsOrigins(raw string) string {
	if strings.Contains(raw, "*") {
		log.Printf("[WARN] CORS_ALLOWED_ORIGINS=%q ignored: wildcard origins cannot be used with credentials, using %s", raw, defaultCorsOrigin)
		return defaultCorsOrigin
	}
	return raw
}
