package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("LLM_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("unexpected base URL %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.LowCostModelPrimary != "deepseek/deepseek-r1:free" {
		t.Errorf("unexpected primary model %q", cfg.LLM.LowCostModelPrimary)
	}
	if cfg.LLM.LowCostModelBackup != "meta-llama/llama-3.1-8b-instruct:free" {
		t.Errorf("unexpected backup model %q", cfg.LLM.LowCostModelBackup)
	}
	if cfg.LLM.CriticalModel != "deepseek/deepseek-r1:200k" {
		t.Errorf("unexpected critical model %q", cfg.LLM.CriticalModel)
	}
	if cfg.LLM.Timeout != 20*time.Second {
		t.Errorf("expected 20s timeout, got %s", cfg.LLM.Timeout)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("expected empty API key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
port = "9090"

[llm]
apiKey = "file-key"
criticalModel = "file/critical"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CRITICAL_MODEL", "env/critical")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port from file, got %q", cfg.Port)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Errorf("expected API key from file, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.CriticalModel != "env/critical" {
		t.Errorf("expected env to override file, got %q", cfg.LLM.CriticalModel)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LLM_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid LLM_TIMEOUT")
	}
}
