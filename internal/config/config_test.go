package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
detector:
  endpoint: "http://localhost:8001"
groq:
  apiKey: "gsk_test"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Detector.ConfidenceThreshold != 0.25 {
		t.Errorf("expected default threshold 0.25, got %v", cfg.Detector.ConfidenceThreshold)
	}
	if cfg.Groq.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("unexpected groq base url %s", cfg.Groq.BaseURL)
	}
	if cfg.Prompts.Source != "file" || cfg.Prompts.Dir != "prompts" {
		t.Errorf("unexpected prompts defaults: %+v", cfg.Prompts)
	}
	if cfg.TTS.Kokoro.Voice != "af_bella" {
		t.Errorf("expected default kokoro voice, got %s", cfg.TTS.Kokoro.Voice)
	}
}

func TestLoad_EnvOverridesSecret(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_from_env")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Groq.APIKey != "gsk_from_env" {
		t.Errorf("env must override file value, got %s", cfg.Groq.APIKey)
	}
}

func TestLoad_MissingDetectorEndpoint(t *testing.T) {
	if _, err := Load(writeConfig(t, "groq:\n  apiKey: x\n")); err == nil {
		t.Error("expected error for missing detector endpoint")
	}
}

func TestLoad_BadPromptSource(t *testing.T) {
	yaml := minimalYAML + "prompts:\n  source: etcd\n"
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Error("expected error for unknown prompt source")
	}
}
