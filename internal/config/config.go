package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Optional bearer token for the API; empty disables auth.
	APIKey string

	// Model gateway
	OpenAIAPIKey  string
	OpenAIBaseURL string
	DefaultModel  string
	AllowedModels []string
	LLMTimeout    time.Duration

	// Parse behavior
	MaxRepairAttempts int

	// Upload limits
	MaxUploadBytes int64

	// CSV header template; the first row of this file, when present,
	// overrides the default export headers.
	HeaderTemplatePath string
}

var defaultModels = []string{"gpt-5.2", "gpt-5-mini", "gpt-5-nano", "gpt-4.1", "gpt-4o-mini", "o4-mini"}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("EXAMCONV_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		DefaultModel:  envOr("OPENAI_MODEL", "gpt-5.2"),
		AllowedModels: envList("EXAM_MODELS", defaultModels),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 120*time.Second),

		MaxRepairAttempts: envInt("MAX_REPAIR_ATTEMPTS", 2),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		HeaderTemplatePath: envOr("HEADER_TEMPLATE_PATH", "example-output.csv"),
	}

	if cfg.MaxRepairAttempts < 0 {
		cfg.MaxRepairAttempts = 2
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
