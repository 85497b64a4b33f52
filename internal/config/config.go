package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Context   ContextConfig   `toml:"context"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Indexer   IndexerConfig   `toml:"indexer"`
}

type LLMConfig struct {
	Enabled     bool    `toml:"enabled"`
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	TimeoutSecs int     `toml:"timeout_secs"`
}

type EmbeddingConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension"`
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
}

type RetrievalConfig struct {
	MaxDepth   int `toml:"max_depth"`
	MaxResults int `toml:"max_results"`
}

type ContextConfig struct {
	CharBudget   int `toml:"char_budget"`
	TokenBudget  int `toml:"token_budget"`
	MaxSnippets  int `toml:"max_snippets"`
	SummaryLimit int `toml:"summary_limit"`
}

type CatalogConfig struct {
	Enabled   bool   `toml:"enabled"`
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

type IndexerConfig struct {
	ExcludePatterns   []string `toml:"exclude_patterns"`
	WatcherDebounceMs int      `toml:"watcher_debounce_ms"`
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from file
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		// Try default locations
		locations := []string{
			".codesight/config.toml",
			filepath.Join(os.Getenv("HOME"), ".codesight/config.toml"),
			"/etc/codesight/config.toml",
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				if _, err := toml.DecodeFile(loc, cfg); err == nil {
					break
				}
			}
		}
	}

	// Override with environment variables
	applyEnvOverrides(cfg)

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Enabled:     true,
			Provider:    "openai-compatible",
			Model:       "mistral-7b-instruct-v0.3",
			BaseURL:     "http://localhost:8000/v1",
			Temperature: 0.7,
			MaxTokens:   1000,
			TimeoutSecs: 120,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			Dimension: 768,
			BaseURL:   "http://localhost:11434",
		},
		Retrieval: RetrievalConfig{
			MaxDepth:   2,
			MaxResults: 10,
		},
		Context: ContextConfig{
			CharBudget:   8000,
			TokenBudget:  2000,
			MaxSnippets:  5,
			SummaryLimit: 20,
		},
		Catalog: CatalogConfig{
			Enabled:   false,
			URL:       "ws://localhost:8001",
			Namespace: "codesight",
			Database:  "main",
			Username:  "root",
			Password:  "root",
		},
		Indexer: IndexerConfig{
			WatcherDebounceMs: 100,
		},
	}
}

func Validate(cfg *Config) []string {
	var warnings []string

	if cfg.LLM.Enabled {
		if cfg.LLM.Provider == "" {
			warnings = append(warnings, "LLM is enabled but no provider specified")
		}
		if cfg.LLM.MaxTokens < 1 {
			warnings = append(warnings, "LLM MaxTokens must be at least 1")
		}
		if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
			warnings = append(warnings, "LLM Temperature must be between 0 and 2")
		}
		if cfg.LLM.TimeoutSecs < 1 {
			warnings = append(warnings, "LLM TimeoutSecs must be at least 1 second")
		}
	}

	if cfg.Embedding.Provider != "" {
		if cfg.Embedding.Dimension < 1 || cfg.Embedding.Dimension > 10000 {
			warnings = append(warnings, "Embedding dimension must be between 1 and 10000")
		}
	}

	if cfg.Retrieval.MaxDepth < 0 {
		warnings = append(warnings, "Retrieval MaxDepth cannot be negative")
	}
	if cfg.Retrieval.MaxResults < 1 {
		warnings = append(warnings, "Retrieval MaxResults must be at least 1")
	}

	if cfg.Context.CharBudget < 1 {
		warnings = append(warnings, "Context CharBudget must be at least 1")
	}
	if cfg.Context.TokenBudget < 1 {
		warnings = append(warnings, "Context TokenBudget must be at least 1")
	}
	if cfg.Context.MaxSnippets < 1 {
		warnings = append(warnings, "Context MaxSnippets must be at least 1")
	}

	if cfg.Catalog.Enabled {
		if cfg.Catalog.URL == "" {
			warnings = append(warnings, "Catalog URL cannot be empty")
		}
		if cfg.Catalog.Namespace == "" {
			warnings = append(warnings, "Catalog namespace cannot be empty")
		}
		if cfg.Catalog.Database == "" {
			warnings = append(warnings, "Catalog database cannot be empty")
		}
	}

	if cfg.Indexer.WatcherDebounceMs < 10 {
		warnings = append(warnings, "Watcher debounce must be at least 10ms")
	}

	return warnings
}

func applyEnvOverrides(cfg *Config) {
	// LLM settings
	if v := os.Getenv("CODESIGHT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("CODESIGHT_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("CODESIGHT_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.LLM.Provider == "anthropic" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.Provider == "google" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("CODESIGHT_MAX_TOKENS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = i
		}
	}

	// Embedding settings
	if v := os.Getenv("CODESIGHT_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("CODESIGHT_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("CODESIGHT_EMBEDDING_DIMENSION"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimension = i
		}
	}
	if v := os.Getenv("CODESIGHT_OLLAMA_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}

	// Retrieval settings
	if v := os.Getenv("CODESIGHT_RETRIEVAL_MAX_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.MaxDepth = i
		}
	}
	if v := os.Getenv("CODESIGHT_RETRIEVAL_MAX_RESULTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.MaxResults = i
		}
	}

	// Context budgets
	if v := os.Getenv("CODESIGHT_CHAR_BUDGET"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Context.CharBudget = i
		}
	}
	if v := os.Getenv("CODESIGHT_TOKEN_BUDGET"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Context.TokenBudget = i
		}
	}

	// Catalog settings
	if v := os.Getenv("CODESIGHT_CATALOG_URL"); v != "" {
		cfg.Catalog.URL = v
		cfg.Catalog.Enabled = true
	}
	if v := os.Getenv("CODESIGHT_CATALOG_NAMESPACE"); v != "" {
		cfg.Catalog.Namespace = v
	}
	if v := os.Getenv("CODESIGHT_CATALOG_DATABASE"); v != "" {
		cfg.Catalog.Database = v
	}
	if v := os.Getenv("CODESIGHT_CATALOG_USERNAME"); v != "" {
		cfg.Catalog.Username = v
	}
	if v := os.Getenv("CODESIGHT_CATALOG_PASSWORD"); v != "" {
		cfg.Catalog.Password = v
	}

	// Indexer settings
	if v := os.Getenv("CODESIGHT_WATCHER_DEBOUNCE_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.WatcherDebounceMs = i
		}
	}
}
