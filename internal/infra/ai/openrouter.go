// OpenRouter HTTP adapter — the alternate direct-completion backend.
// Unlike Gemini, OpenRouter accepts structured role-tagged turns, so the
// conversation is submitted as discrete messages with the persona as a
// system turn instead of one prompt blob.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultOpenRouterBaseURL is the production OpenRouter endpoint.
// Overridable for tests.
const DefaultOpenRouterBaseURL = "https://openrouter.ai"

// DefaultOpenRouterModel is the free-tier model the portfolio chat uses
// when OPENROUTER_MODEL is not set.
const DefaultOpenRouterModel = "nvidia/nemotron-3-nano-30b-a3b:free"

// OpenRouterProvider implements Provider against the OpenRouter
// chat/completions API.
type OpenRouterProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterProvider creates an OpenRouterProvider with a 30s default timeout.
func NewOpenRouterProvider(apiKey, model, baseURL string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter: %w", ErrInvalidAPIKey)
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	return &OpenRouterProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ─── internal OpenRouter JSON types ──────────────────────────────────────────

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type openRouterChatResponse struct {
	Choices []struct {
		Message openRouterMessage `json:"message"`
	} `json:"choices"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// Chat submits the conversation as role-tagged turns. When no system turn
// has been prepended by a caller (the RAG path does that itself), the
// persona prompt is injected first so ordering and role tagging match the
// blob rendering the primary backend uses.
func (p *OpenRouterProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if _, err := latestUserMessage(messages); err != nil {
		return "", err
	}

	turns := make([]openRouterMessage, 0, directHistoryWindow+1)
	if len(messages) == 0 || messages[0].Role != RoleSystem {
		turns = append(turns, openRouterMessage{Role: RoleSystem, Content: personaPrompt})
		messages = tail(messages, directHistoryWindow)
	}
	for _, m := range messages {
		turns = append(turns, openRouterMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(openRouterChatRequest{
		Model:       p.model,
		Messages:    turns,
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	})
	if err != nil {
		return "", err
	}

	url := p.baseURL + "/api/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openrouter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	// Optional attribution headers for OpenRouter rankings.
	req.Header.Set("HTTP-Referer", "https://zohaib-portfolio.com")
	req.Header.Set("X-Title", "Zohaib Portfolio")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI service error: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", fmt.Errorf("%w: check the OPENROUTER_API_KEY environment variable", ErrInvalidAPIKey)
		}
		return "", fmt.Errorf("AI service error: openrouter status %d: %s", resp.StatusCode, string(raw))
	}

	var out openRouterChatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", fmt.Errorf("AI service error: decode openrouter response: %w", decodeErr)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
