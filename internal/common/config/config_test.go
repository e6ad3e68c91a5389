package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "READ_TIMEOUT", "WRITE_TIMEOUT", "LOG_JSON", "SUGGEST_RPS", "CORS_ORIGINS", "RECLAMP_ON_RESIZE", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10, cfg.ReadTimeout)
	assert.Equal(t, 10, cfg.WriteTimeout)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, 0.5, cfg.SuggestRPS)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.ReclampOnResize)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "4100")
	t.Setenv("ENV", "production")
	t.Setenv("READ_TIMEOUT", "oops")
	t.Setenv("WRITE_TIMEOUT", "45")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("SUGGEST_RPS", "2.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RECLAMP_ON_RESIZE", "1")

	cfg := Load()

	assert.Equal(t, "4100", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.ReadTimeout)
	assert.Equal(t, 45, cfg.WriteTimeout)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, 2.5, cfg.SuggestRPS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.ReclampOnResize)
}
