// Gemini HTTP adapter — the primary direct-completion backend.
// Calls the Generative Language REST API with a single prompt blob built
// from the persona, a bounded trailing window and the latest user turn.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultGeminiBaseURL is the production Generative Language endpoint.
// Overridable for tests.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Fixed generation parameters shared by both direct backends.
const (
	generationTemperature = 0.7
	generationMaxTokens   = 8192
)

// GeminiProvider implements Provider against the Gemini generateContent API.
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider creates a GeminiProvider with a 30s default timeout.
// The API key is required; the selector guarantees it is present.
func NewGeminiProvider(apiKey, model, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrInvalidAPIKey)
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ─── internal Gemini JSON types ──────────────────────────────────────────────

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// Chat builds the prompt blob and performs a non-streaming generateContent
// call. Upstream failures are wrapped as AI service errors; responses that
// smell like a credential problem surface as ErrInvalidAPIKey.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	lastUser, err := latestUserMessage(messages)
	if err != nil {
		return "", err
	}

	prompt := buildDirectPrompt(renderHistory(messages, directHistoryWindow), lastUser)

	body, err := json.Marshal(geminiGenerateRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     generationTemperature,
			MaxOutputTokens: generationMaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI service error: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		if isCredentialError(resp.StatusCode, string(raw)) {
			return "", fmt.Errorf("%w: check the GEMINI_API_KEY environment variable", ErrInvalidAPIKey)
		}
		return "", fmt.Errorf("AI service error: gemini status %d: %s", resp.StatusCode, string(raw))
	}

	var out geminiGenerateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", fmt.Errorf("AI service error: decode gemini response: %w", decodeErr)
	}

	text := firstCandidateText(out)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// firstCandidateText concatenates the parts of the first candidate.
func firstCandidateText(resp geminiGenerateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	b := strings.Builder{}
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// isCredentialError reports whether an upstream rejection indicates a
// missing or revoked key rather than a transient failure.
func isCredentialError(status int, body string) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	return strings.Contains(body, "API_KEY") || strings.Contains(body, "API key")
}
