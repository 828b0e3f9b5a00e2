// Package qdrant is a minimal REST client for the Qdrant vector index.
// The chat path only searches; the sync job additionally ensures the
// collection exists and upserts points.
package qdrant

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

// ErrUnavailable marks network or index failures. Callers on the chat path
// treat it as recoverable and continue without retrieved context.
var ErrUnavailable = errors.New("vector search unavailable")

// ScoredPoint is one search hit: the flattened source text and its
// similarity score. Results are ordered by descending score.
type ScoredPoint struct {
	Text  string
	Score float64
}

// Point is one upsert unit for the sync job. Payload must carry the
// "_text" field the search path reads back.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Client talks to one Qdrant collection.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// NewClient creates a Client with a 30s default timeout.
func NewClient(baseURL, apiKey, collection string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ─── internal Qdrant JSON types ──────────────────────────────────────────────

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type upsertRequest struct {
	Points []Point `json:"points"`
}

// ─── client implementation ───────────────────────────────────────────────────

// Search returns the limit nearest stored points to the query vector,
// descending by score. Zero hits is a valid empty result, not an error.
func (c *Client) Search(ctx context.Context, vector []float32, limit int) ([]ScoredPoint, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("qdrant: limit must be positive, got %d", limit)
	}

	body, err := json.Marshal(searchRequest{Vector: vector, Limit: limit, WithPayload: true})
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", c.collection), body)
	if err != nil {
		return nil, err
	}

	var out searchResponse
	if decodeErr := json.Unmarshal(raw, &out); decodeErr != nil {
		return nil, fmt.Errorf("qdrant: decode search response: %w", decodeErr)
	}

	points := make([]ScoredPoint, 0, len(out.Result))
	for _, hit := range out.Result {
		points = append(points, ScoredPoint{Text: payloadText(hit.Payload), Score: hit.Score})
	}
	return points, nil
}

// EnsureCollection creates the collection with the given vector dimension
// and cosine distance when it does not exist yet. The dimension must match
// the embedding model; a mismatch is a configuration error the index will
// reject at upsert time.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) error {
	path := "/collections/" + c.collection
	if _, err := c.do(ctx, http.MethodGet, path, nil); err == nil {
		return nil
	}

	body, err := json.Marshal(createCollectionRequest{
		Vectors: vectorParams{Size: dimension, Distance: "Cosine"},
	})
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("qdrant: create collection %q: %w", c.collection, err)
	}
	return nil
}

// UpsertPoints writes points into the collection, waiting for the index to
// apply them so a sync run is durable when it reports success.
func (c *Client) UpsertPoints(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body, err := json.Marshal(upsertRequest{Points: points})
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	if _, err := c.do(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	return nil
}

// do sends one request and returns the response body. All transport and
// non-2xx failures wrap ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("qdrant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrUnavailable, method, path, resp.StatusCode, string(raw))
	}
	return raw, nil
}

// payloadText extracts the "_text" field the sync job writes; any other
// payload shape falls back to its JSON rendering so a hit is never silently
// dropped.
func payloadText(payload map[string]any) string {
	if text, ok := payload["_text"].(string); ok && text != "" {
		return text
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(raw)
}
