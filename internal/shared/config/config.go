package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"novel-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string   `validate:"required,numeric"`
	Env             string   `validate:"oneof=dev local staging production"`
	DatabaseURL     string   `validate:"required_if=Env production"`
	CORSAllowOrigin []string `validate:"dive,required"`

	LLMDefaultProvider string
	LLMProvidersFile   string `validate:"omitempty,file"`
	OpenAIAPIKey       string
	OpenAIBaseURL      string `validate:"omitempty,url"`
	LLMModel           string
	GeminiAPIKey       string
	GeminiModel        string
	LLMTimeout         time.Duration `validate:"min=1s"`

	// CritiqueMaxAge marks stored critiques older than this as stale; zero disables it.
	CritiqueMaxAge           time.Duration `validate:"min=0s"`
	CritiqueBatchConcurrency int           `validate:"min=1,max=16"`

	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=1"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		LLMDefaultProvider: strings.ToLower(getEnv("LLM_DEFAULT_PROVIDER", "")),
		LLMProvidersFile:   getEnv("LLM_PROVIDERS_FILE", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		LLMModel:           getEnv("LLM_MODEL", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", ""),
		LLMTimeout:         time.Duration(getInt("LLM_TIMEOUT_SECONDS", 90)) * time.Second,

		CritiqueMaxAge:           getDuration("CRITIQUE_MAX_AGE", 0),
		CritiqueBatchConcurrency: getInt("CRITIQUE_BATCH_CONCURRENCY", 3),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 0.5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 5),
	}
}

// Validate checks the loaded values against their struct constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw})
		return def
	}
	return f
}

// getDuration accepts Go durations ("72h") or a bare number of hours.
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if h, err := strconv.Atoi(raw); err == nil {
		return time.Duration(h) * time.Hour
	}
	telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
