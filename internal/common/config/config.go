package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	LogLevel string
	LogJSON  bool

	CORSOrigins []string

	DesignsDBPath   string
	ReclampOnResize bool

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	SuggestRPS   float64
	SuggestBurst int

	ConfiguratorURL string
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения.
func Load() *Config {
	// .env необязателен; переменные окружения имеют приоритет.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvAsBool("LOG_JSON", false),

		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		DesignsDBPath:   getEnv("DESIGNS_DB_PATH", "data/db/designs.db"),
		ReclampOnResize: getEnvAsBool("RECLAMP_ON_RESIZE", false),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		SuggestRPS:   getEnvAsFloat("SUGGEST_RPS", 0.5),
		SuggestBurst: getEnvAsInt("SUGGEST_BURST", 3),

		ConfiguratorURL: getEnv("CONFIGURATOR_URL", "http://localhost:3001"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
