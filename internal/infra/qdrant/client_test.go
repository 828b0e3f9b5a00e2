// Unit tests for the Qdrant REST client.
// Uses httptest.NewServer to mock the collections API.
package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Search_ExtractsTextAndScore(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/portfolio_vectors/points/search" {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		if got := r.Header.Get("api-key"); got != "test-key" {
			http.Error(w, "missing api key", http.StatusUnauthorized)
			return
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Limit != 5 || !req.WithPayload {
			http.Error(w, "bad search body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[
			{"score":0.9,"payload":{"_text":"React, Next.js"}},
			{"score":0.8,"payload":{"_text":"Node.js, MongoDB"}}
		]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "portfolio_vectors")
	points, err := c.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Text != "React, Next.js" || points[0].Score != 0.9 {
		t.Errorf("unexpected first point: %+v", points[0])
	}
	if points[1].Text != "Node.js, MongoDB" || points[1].Score != 0.8 {
		t.Errorf("unexpected second point: %+v", points[1])
	}
}

func TestClient_Search_PayloadWithoutText_FallsBackToJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[{"score":0.5,"payload":{"name":"Recordo"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "portfolio_vectors")
	points, err := c.Search(context.Background(), []float32{0.1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if points[0].Text != `{"name":"Recordo"}` {
		t.Errorf("expected JSON fallback text, got %q", points[0].Text)
	}
}

func TestClient_Search_ZeroResults_IsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "portfolio_vectors")
	points, err := c.Search(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("zero results must not fail: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty result, got %d points", len(points))
	}
}

func TestClient_Search_NonPositiveLimit_ReturnsError(t *testing.T) {
	t.Parallel()

	c := NewClient("http://unused", "", "portfolio_vectors")
	if _, err := c.Search(context.Background(), []float32{0.1}, 0); err == nil {
		t.Error("expected error for non-positive limit, got nil")
	}
}

func TestClient_Search_ServerDown_WrapsErrUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	c := NewClient(srv.URL, "", "portfolio_vectors")
	_, err := c.Search(context.Background(), []float32{0.1}, 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_Search_IndexError_WrapsErrUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"collection not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "portfolio_vectors")
	_, err := c.Search(context.Background(), []float32{0.1}, 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_EnsureCollection_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	created := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, "not found", http.StatusNotFound)
		case http.MethodPut:
			var req createCollectionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			if req.Vectors.Size != 1024 || req.Vectors.Distance != "Cosine" {
				http.Error(w, "wrong vector params", http.StatusBadRequest)
				return
			}
			created = true
			w.Write([]byte(`{"result":true}`)) //nolint:errcheck
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "portfolio_vectors")
	if err := c.EnsureCollection(context.Background(), 1024); err != nil {
		t.Fatalf("EnsureCollection failed: %v", err)
	}
	if !created {
		t.Error("expected collection creation call")
	}
}

func TestClient_EnsureCollection_ExistingCollection_NoCreate(t *testing.T) {
	t.Parallel()

	puts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts++
		}
		w.Write([]byte(`{"result":{"status":"green"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "portfolio_vectors")
	if err := c.EnsureCollection(context.Background(), 1024); err != nil {
		t.Fatalf("EnsureCollection failed: %v", err)
	}
	if puts != 0 {
		t.Errorf("existing collection must not be re-created, got %d PUTs", puts)
	}
}

func TestClient_UpsertPoints_SendsPayload(t *testing.T) {
	t.Parallel()

	var got upsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"result":{"status":"acknowledged"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "portfolio_vectors")
	err := c.UpsertPoints(context.Background(), []Point{
		{ID: "abc", Vector: []float32{0.1}, Payload: map[string]any{"_text": "Table: skills"}},
	})
	if err != nil {
		t.Fatalf("UpsertPoints failed: %v", err)
	}
	if len(got.Points) != 1 || got.Points[0].ID != "abc" {
		t.Errorf("unexpected upsert body: %+v", got)
	}
	if got.Points[0].Payload["_text"] != "Table: skills" {
		t.Errorf("payload must carry _text, got %+v", got.Points[0].Payload)
	}
}

func TestClient_UpsertPoints_Empty_NoCall(t *testing.T) {
	t.Parallel()

	c := NewClient("http://unused", "", "portfolio_vectors")
	if err := c.UpsertPoints(context.Background(), nil); err != nil {
		t.Errorf("empty upsert must be a no-op, got %v", err)
	}
}
