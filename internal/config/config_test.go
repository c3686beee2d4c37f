package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DAILY_REQUEST_LIMIT", "")
	t.Setenv("LLM_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("SESSION_STORE", "memory")

	cfg := Load()

	assert.Equal(t, 200, cfg.Quota.DailyRequestLimit)
	assert.Equal(t, 60*time.Second, cfg.Ai.RequestTimeout)
	assert.Equal(t, "memory", cfg.Database.SessionStore)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DAILY_REQUEST_LIMIT", "5")
	t.Setenv("GUEST_SESSION_TTL_HOURS", "2")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, 5, cfg.Quota.DailyRequestLimit)
	assert.Equal(t, 2*time.Hour, cfg.Quota.GuestSessionTTL)
	assert.True(t, cfg.Otel.Enabled)
}

func TestLoad_WildcardCorsOriginFallsBack(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")
	assert.Equal(t, "http://localhost:5173", Load().App.CorsAllowedOrigins)

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	assert.Equal(t, "https://app.example.com, https://admin.example.com", Load().App.CorsAllowedOrigins)
}
