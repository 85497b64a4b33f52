package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.Provider != "openai-compatible" {
		t.Errorf("LLM.Provider = %q", cfg.LLM.Provider)
	}
	if cfg.Retrieval.MaxDepth != 2 {
		t.Errorf("Retrieval.MaxDepth = %d, want 2", cfg.Retrieval.MaxDepth)
	}
	if cfg.Context.CharBudget != 8000 {
		t.Errorf("Context.CharBudget = %d, want 8000", cfg.Context.CharBudget)
	}
	if cfg.Context.MaxSnippets != 5 {
		t.Errorf("Context.MaxSnippets = %d, want 5", cfg.Context.MaxSnippets)
	}
	if cfg.Catalog.Enabled {
		t.Error("catalog should be disabled by default")
	}

	if warnings := Validate(cfg); len(warnings) != 0 {
		t.Errorf("default config produced warnings: %v", warnings)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[llm]
enabled = true
provider = "ollama"
model = "llama3"
max_tokens = 500
temperature = 0.2
timeout_secs = 30

[retrieval]
max_depth = 3
max_results = 20

[context]
char_budget = 4000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Retrieval.MaxDepth != 3 {
		t.Errorf("Retrieval.MaxDepth = %d, want 3", cfg.Retrieval.MaxDepth)
	}
	if cfg.Context.CharBudget != 4000 {
		t.Errorf("Context.CharBudget = %d, want 4000", cfg.Context.CharBudget)
	}
	// Unset sections keep defaults.
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("Embedding.Provider = %q, want default", cfg.Embedding.Provider)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CODESIGHT_MODEL", "qwen2.5-coder")
	t.Setenv("CODESIGHT_CHAR_BUDGET", "1234")
	t.Setenv("CODESIGHT_RETRIEVAL_MAX_DEPTH", "4")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.LLM.Model != "qwen2.5-coder" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Context.CharBudget != 1234 {
		t.Errorf("Context.CharBudget = %d", cfg.Context.CharBudget)
	}
	if cfg.Retrieval.MaxDepth != 4 {
		t.Errorf("Retrieval.MaxDepth = %d", cfg.Retrieval.MaxDepth)
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.MaxTokens = 0
	cfg.LLM.Temperature = 5
	cfg.Retrieval.MaxDepth = -1
	cfg.Context.CharBudget = 0
	cfg.Catalog.Enabled = true
	cfg.Catalog.URL = ""

	warnings := Validate(cfg)
	if len(warnings) < 5 {
		t.Errorf("got %d warnings, want at least 5: %v", len(warnings), warnings)
	}
}
