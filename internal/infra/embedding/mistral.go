// Package embedding provides the Mistral embeddings HTTP client.
// It converts free text into the fixed 1024-dimension vectors the Qdrant
// collection is built on. Rate-limit responses are retried exactly once
// after a fixed backoff; credential rejections surface as a distinct error.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Mistral API endpoint. Overridable for tests.
const DefaultBaseURL = "https://api.mistral.ai"

// DefaultModel is the embedding model the Qdrant collection was built with.
// Its 1024-dimension output must match the collection dimension.
const DefaultModel = "mistral-embed"

// Dimension is the vector size mistral-embed produces.
const Dimension = 1024

// rateLimitBackoff is how long Embed waits before its single retry after
// an HTTP 429. Mistral free-tier limits clear within a couple of seconds.
const rateLimitBackoff = 2 * time.Second

var (
	// ErrRateLimited is returned when the embedding service rejects both
	// the initial call and the one retry with HTTP 429.
	ErrRateLimited = errors.New("embedding service rate limited")

	// ErrCredentialsRejected is returned on HTTP 403 — typically a revoked
	// or leaked key, which no retry will fix.
	ErrCredentialsRejected = errors.New("embedding service rejected credentials")
)

// Client calls the Mistral embeddings endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	backoff    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client with a 30s default timeout.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		backoff: rateLimitBackoff,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ─── internal Mistral JSON types ─────────────────────────────────────────────

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// ─── client implementation ───────────────────────────────────────────────────

// Embed computes the vector for one text. Every call performs a fresh
// network request; results are not memoized. On HTTP 429 the call waits
// the fixed backoff and retries exactly once — a second 429 propagates as
// ErrRateLimited, so a saturated upstream costs at most two calls.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("embedding: empty input text")
	}

	vec, err := c.embedOnce(ctx, text)
	if !errors.Is(err, ErrRateLimited) {
		return vec, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.backoff):
	}

	vec, err = c.embedOnce(ctx, text)
	if errors.Is(err, ErrRateLimited) {
		return nil, fmt.Errorf("retry after %s also rate limited: %w", c.backoff, ErrRateLimited)
	}
	return vec, err
}

// embedOnce performs a single embeddings call.
func (c *Client) embedOnce(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrCredentialsRejected
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding: mistral status %d: %s", resp.StatusCode, string(raw))
	}

	var out embedResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", decodeErr)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("embedding: response carried no vectors")
	}
	return out.Data[0].Embedding, nil
}
