// Package config provides process-wide configuration: defaults, an
// optional YAML file, then environment overrides — in that order. The
// resulting Config is read once at startup and never mutated per request.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider kinds selectable via AI_PROVIDER.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderQdrantRAG  = "qdrant-rag"
)

// Config holds runtime configuration for the portfolio backend.
type Config struct {
	// Server
	Host string `yaml:"host"` // HOST — default: "0.0.0.0"
	Port int    `yaml:"port"` // PORT — default: 8080
	Env  string `yaml:"env"`  // APP_ENV — "development" | "production"

	// Provider selection
	AIProvider   string `yaml:"ai_provider"`   // AI_PROVIDER — default: "gemini"
	RAGGenerator string `yaml:"rag_generator"` // RAG_GENERATOR — delegate for qdrant-rag, default: "gemini"

	// Gemini (primary direct backend)
	GeminiAPIKey string `yaml:"gemini_api_key"` // GEMINI_API_KEY
	GeminiModel  string `yaml:"gemini_model"`   // GEMINI_MODEL — default: "gemini-2.5-flash"

	// OpenRouter (alternate direct backend)
	OpenRouterAPIKey string `yaml:"openrouter_api_key"` // OPENROUTER_API_KEY
	OpenRouterModel  string `yaml:"openrouter_model"`   // OPENROUTER_MODEL

	// Mistral embeddings
	MistralAPIKey string `yaml:"mistral_api_key"` // MISTRAL_API_KEY

	// Qdrant vector index
	QdrantURL        string `yaml:"qdrant_url"`        // QDRANT_URL
	QdrantAPIKey     string `yaml:"qdrant_api_key"`    // QDRANT_API_KEY
	QdrantCollection string `yaml:"qdrant_collection"` // QDRANT_COLLECTION — default: "portfolio_vectors"

	// Content store
	ContentDBPath string `yaml:"content_db_path"` // CONTENT_DB_PATH — default: "portfolio.db"
}

const (
	envKeyHost             = "HOST"
	envKeyPort             = "PORT"
	envKeyEnv              = "APP_ENV"
	envKeyAIProvider       = "AI_PROVIDER"
	envKeyRAGGenerator     = "RAG_GENERATOR"
	envKeyGeminiAPIKey     = "GEMINI_API_KEY"
	envKeyGeminiModel      = "GEMINI_MODEL"
	envKeyOpenRouterAPIKey = "OPENROUTER_API_KEY"
	envKeyOpenRouterModel  = "OPENROUTER_MODEL"
	envKeyMistralAPIKey    = "MISTRAL_API_KEY"
	envKeyQdrantURL        = "QDRANT_URL"
	envKeyQdrantAPIKey     = "QDRANT_API_KEY"
	envKeyQdrantCollection = "QDRANT_COLLECTION"
	envKeyContentDBPath    = "CONTENT_DB_PATH"
)

// Default returns the built-in configuration. The binary runs locally with
// no file and no env set (the provider selector then fails with its own
// actionable error for missing credentials).
func Default() Config {
	return Config{
		Host:             "0.0.0.0",
		Port:             8080,
		Env:              "development",
		AIProvider:       ProviderGemini,
		RAGGenerator:     ProviderGemini,
		GeminiModel:      "gemini-2.5-flash",
		QdrantCollection: "portfolio_vectors",
		ContentDBPath:    "portfolio.db",
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is non-empty, then environment overrides. A missing file at an
// explicitly given path is an error; env-only operation passes "".
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides non-empty environment values onto cfg.
func applyEnv(cfg *Config) {
	cfg.Host = envOr(envKeyHost, cfg.Host)
	cfg.Port = envIntOr(envKeyPort, cfg.Port)
	cfg.Env = envOr(envKeyEnv, cfg.Env)
	cfg.AIProvider = envOr(envKeyAIProvider, cfg.AIProvider)
	cfg.RAGGenerator = envOr(envKeyRAGGenerator, cfg.RAGGenerator)
	cfg.GeminiAPIKey = envOr(envKeyGeminiAPIKey, cfg.GeminiAPIKey)
	cfg.GeminiModel = envOr(envKeyGeminiModel, cfg.GeminiModel)
	cfg.OpenRouterAPIKey = envOr(envKeyOpenRouterAPIKey, cfg.OpenRouterAPIKey)
	cfg.OpenRouterModel = envOr(envKeyOpenRouterModel, cfg.OpenRouterModel)
	cfg.MistralAPIKey = envOr(envKeyMistralAPIKey, cfg.MistralAPIKey)
	cfg.QdrantURL = envOr(envKeyQdrantURL, cfg.QdrantURL)
	cfg.QdrantAPIKey = envOr(envKeyQdrantAPIKey, cfg.QdrantAPIKey)
	cfg.QdrantCollection = envOr(envKeyQdrantCollection, cfg.QdrantCollection)
	cfg.ContentDBPath = envOr(envKeyContentDBPath, cfg.ContentDBPath)
}

// IsProduction reports whether diagnostic detail should be withheld from
// HTTP error responses.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr returns the integer value of the environment variable key, or
// fallback when unset or unparseable.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}
