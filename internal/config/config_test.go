package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "EXAMCONV_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL", "EXAM_MODELS", "LLM_TIMEOUT", "MAX_REPAIR_ATTEMPTS",
		"MAX_UPLOAD_BYTES", "HEADER_TEMPLATE_PATH",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %s", cfg.Port)
	}
	if cfg.DefaultModel != "gpt-5.2" {
		t.Errorf("unexpected default model: %s", cfg.DefaultModel)
	}
	if len(cfg.AllowedModels) == 0 {
		t.Error("expected non-empty default model list")
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Errorf("unexpected llm timeout: %v", cfg.LLMTimeout)
	}
	if cfg.MaxRepairAttempts != 2 {
		t.Errorf("unexpected repair attempts: %d", cfg.MaxRepairAttempts)
	}
	if cfg.MaxUploadBytes != 20971520 {
		t.Errorf("unexpected upload limit: %d", cfg.MaxUploadBytes)
	}
	if cfg.HeaderTemplatePath != "example-output.csv" {
		t.Errorf("unexpected header template path: %s", cfg.HeaderTemplatePath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("EXAM_MODELS", "a, b ,,c")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("MAX_REPAIR_ATTEMPTS", "5")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("port override not applied: %s", cfg.Port)
	}
	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("model override not applied: %s", cfg.DefaultModel)
	}
	if len(cfg.AllowedModels) != 3 || cfg.AllowedModels[0] != "a" || cfg.AllowedModels[2] != "c" {
		t.Errorf("model list parse: %v", cfg.AllowedModels)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("timeout override not applied: %v", cfg.LLMTimeout)
	}
	if cfg.MaxRepairAttempts != 5 {
		t.Errorf("repair override not applied: %d", cfg.MaxRepairAttempts)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("upload override not applied: %d", cfg.MaxUploadBytes)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when OPENAI_API_KEY is missing")
	}
	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("MAX_REPAIR_ATTEMPTS", "-3")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("LLM_TIMEOUT", "soon")

	cfg := Load()
	if cfg.MaxRepairAttempts != 2 {
		t.Errorf("negative repair attempts should fall back, got %d", cfg.MaxRepairAttempts)
	}
	if cfg.MaxUploadBytes != 20971520 {
		t.Errorf("unparseable upload limit should fall back, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Errorf("unparseable timeout should fall back, got %v", cfg.LLMTimeout)
	}
}
