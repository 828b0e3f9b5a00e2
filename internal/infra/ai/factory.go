// Provider selection. Evaluated once at startup; the fallback chain is
// deterministic and performs no network I/O, so a hopeless configuration
// fails before the first request is served.
package ai

import (
	"fmt"
	"log"

	"github.com/zohaibasghar/portfolio-server/internal/infra/config"
	"github.com/zohaibasghar/portfolio-server/internal/infra/embedding"
	"github.com/zohaibasghar/portfolio-server/internal/infra/qdrant"
)

// NewProviderFromConfig instantiates the backend the configuration asks
// for, falling back to the primary Gemini backend when the requested
// kind's prerequisites are missing. Only a missing Gemini credential on
// the fallback path is fatal — it means the chat feature cannot function
// at all.
func NewProviderFromConfig(cfg config.Config) (Provider, error) {
	switch cfg.AIProvider {
	case config.ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			log.Printf("ai: OPENROUTER_API_KEY is not set, falling back to gemini")
			break
		}
		return NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, "")

	case config.ProviderQdrantRAG:
		p, err := newRAGFromConfig(cfg)
		if err != nil {
			log.Printf("ai: retrieval-augmented provider unavailable (%v), falling back to gemini", err)
			break
		}
		return p, nil
	}

	p, err := NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, "")
	if err != nil {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or configure another provider", ErrNotConfigured)
	}
	return p, nil
}

// newRAGFromConfig assembles the retrieval pipeline, checking all three
// prerequisites up front and choosing the delegate per RAG_GENERATOR.
func newRAGFromConfig(cfg config.Config) (*RAGProvider, error) {
	switch {
	case cfg.QdrantURL == "":
		return nil, fmt.Errorf("QDRANT_URL is not set")
	case cfg.QdrantAPIKey == "":
		return nil, fmt.Errorf("QDRANT_API_KEY is not set")
	case cfg.MistralAPIKey == "":
		return nil, fmt.Errorf("MISTRAL_API_KEY is not set")
	}

	generator, err := newRAGGenerator(cfg)
	if err != nil {
		return nil, err
	}

	embedder := embedding.NewClient(cfg.MistralAPIKey, "", "")
	retriever := qdrant.NewClient(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)
	return NewRAGProvider(embedder, retriever, generator), nil
}

// newRAGGenerator picks the delegate backend for the retrieval path.
// OpenRouter is only honored when its key is present; otherwise Gemini.
func newRAGGenerator(cfg config.Config) (Provider, error) {
	if cfg.RAGGenerator == config.ProviderOpenRouter && cfg.OpenRouterAPIKey != "" {
		return NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, "")
	}
	return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, "")
}
