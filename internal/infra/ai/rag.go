// Retrieval-augmented backend: embed the latest user turn, search the
// vector index, inject the retrieved text into the system prompt, then
// delegate generation to a direct backend. A broken or cold vector store
// must never block the chat feature, so the embed+search pair is the only
// soft-failure boundary in the pipeline.
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zohaibasghar/portfolio-server/internal/infra/qdrant"
)

// defaultTopK is how many nearest stored content items the retrieval step
// requests.
const defaultTopK = 5

// Embedder converts text into a query vector. Satisfied by *embedding.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever searches the vector index. Satisfied by *qdrant.Client.
type Retriever interface {
	Search(ctx context.Context, vector []float32, limit int) ([]qdrant.ScoredPoint, error)
}

// RAGProvider implements Provider by composing an Embedder, a Retriever
// and a delegate direct-completion Provider.
type RAGProvider struct {
	embedder  Embedder
	retriever Retriever
	generator Provider
	topK      int
}

// NewRAGProvider wires the retrieval pipeline around the given delegate.
func NewRAGProvider(embedder Embedder, retriever Retriever, generator Provider) *RAGProvider {
	return &RAGProvider{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		topK:      defaultTopK,
	}
}

// Chat runs the fixed sequence: extract latest user turn → retrieve →
// assemble system prompt → delegate. Steps are data-dependent; no
// reordering. Errors raised before delegation are wrapped uniformly so
// retrieval internals do not leak to the caller; delegate errors propagate
// unchanged because the delegate already wraps them.
func (p *RAGProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	lastUser, err := latestUserMessage(messages)
	if err != nil {
		return "", fmt.Errorf("failed to get response from AI: %w", err)
	}

	systemPrompt := buildRAGSystemPrompt(p.retrieveContext(ctx, lastUser))

	prompt := make([]Message, 0, ragHistoryWindow+1)
	prompt = append(prompt, Message{Role: RoleSystem, Content: systemPrompt})
	prompt = append(prompt, tail(messages, ragHistoryWindow)...)

	return p.generator.Chat(ctx, prompt)
}

// retrieveContext embeds the query and searches the index. Any failure in
// the pair is logged and degrades to the no-records sentinel.
func (p *RAGProvider) retrieveContext(ctx context.Context, query string) string {
	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("rag: context retrieval failed, proceeding with general knowledge: %v", err)
		return noRecordsSentinel
	}

	hits, err := p.retriever.Search(ctx, vector, p.topK)
	if err != nil {
		log.Printf("rag: context retrieval failed, proceeding with general knowledge: %v", err)
		return noRecordsSentinel
	}
	if len(hits) == 0 {
		return noRecordsSentinel
	}

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Text)
	}
	return strings.Join(texts, "\n\n")
}
