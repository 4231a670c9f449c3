package milvusDB

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", "doc_chunks")
}

func writeResponse(w http.ResponseWriter, code int, message string, data any) {
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func TestEnsureCollection(t *testing.T) {
	t.Run("creates, indexes and loads", func(t *testing.T) {
		var paths []string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
			}
			writeResponse(w, 0, "", map[string]any{})
		})

		if err := client.EnsureCollection(context.Background()); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := []string{
			"/v2/vectordb/collections/create",
			"/v2/vectordb/indexes/create",
			"/v2/vectordb/collections/load",
		}
		if len(paths) != len(want) {
			t.Fatalf("Expected %d calls, got %v", len(want), paths)
		}
		for i := range want {
			if paths[i] != want[i] {
				t.Errorf("Call %d: expected %s, got %s", i, want[i], paths[i])
			}
		}
	})

	t.Run("tolerates an existing collection", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v2/vectordb/collections/create" {
				writeResponse(w, 1100, "collection already exists", nil)
				return
			}
			writeResponse(w, 0, "", map[string]any{})
		})

		if err := client.EnsureCollection(context.Background()); err != nil {
			t.Fatalf("Expected existing collection to be tolerated, got %v", err)
		}
	})

	t.Run("propagates a real failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeResponse(w, 65535, "schema mismatch", nil)
		})

		if err := client.EnsureCollection(context.Background()); err == nil {
			t.Fatal("Expected an error on schema mismatch")
		}
	})
}

func TestInsertChunks(t *testing.T) {
	t.Run("ships rows without a sparse field", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/vectordb/entities/insert" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			var body struct {
				CollectionName string           `json:"collectionName"`
				Data           []map[string]any `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("Could not decode request: %v", err)
			}
			if body.CollectionName != "doc_chunks" {
				t.Errorf("Expected collection doc_chunks, got %s", body.CollectionName)
			}
			if len(body.Data) != 1 {
				t.Fatalf("Expected 1 row, got %d", len(body.Data))
			}
			if _, ok := body.Data[0]["sparse_vector"]; ok {
				t.Error("Expected sparse_vector to be computed server-side")
			}
			if body.Data[0]["chunk_id"] != "c-1" {
				t.Errorf("Expected chunk_id c-1, got %v", body.Data[0]["chunk_id"])
			}
			writeResponse(w, 0, "", map[string]any{"insertCount": 1})
		})

		err := client.InsertChunks(context.Background(), []ragModel.EmbeddedChunk{
			{ChunkID: "c-1", FileID: "f-1", Filename: "a.pdf", Page: 1, Source: "a.pdf#p1#0", Text: "hello", Vector: []float32{0.1, 0.2}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	})

	t.Run("surfaces an index error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeResponse(w, 1804, "quota exceeded", nil)
		})
		err := client.InsertChunks(context.Background(), []ragModel.EmbeddedChunk{{ChunkID: "c-1"}})
		if err == nil {
			t.Fatal("Expected an error when the index rejects the batch")
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		if err := client.InsertChunks(context.Background(), nil); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if called {
			t.Error("Expected no request for an empty batch")
		}
	})
}

func TestHybridSearch(t *testing.T) {
	t.Run("builds both sub-searches and maps hits", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/vectordb/entities/advanced_search" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			var body struct {
				Search []map[string]any `json:"search"`
				Rerank struct {
					Strategy string `json:"strategy"`
					Params   struct {
						Weights []float64 `json:"weights"`
					} `json:"params"`
				} `json:"rerank"`
				Limit int `json:"limit"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("Could not decode request: %v", err)
			}
			if len(body.Search) != 2 {
				t.Fatalf("Expected 2 sub-searches, got %d", len(body.Search))
			}
			if body.Search[0]["annsField"] != "vector" || body.Search[1]["annsField"] != "sparse_vector" {
				t.Errorf("Unexpected sub-search fields: %v", body.Search)
			}
			if body.Rerank.Strategy != "weighted" {
				t.Errorf("Expected weighted rerank, got %s", body.Rerank.Strategy)
			}
			if len(body.Rerank.Params.Weights) != 2 || body.Rerank.Params.Weights[0] != 0.7 || body.Rerank.Params.Weights[1] != 0.3 {
				t.Errorf("Expected weights [0.7 0.3], got %v", body.Rerank.Params.Weights)
			}
			if body.Limit != 3 {
				t.Errorf("Expected limit 3, got %d", body.Limit)
			}
			writeResponse(w, 0, "", []map[string]any{
				{"distance": 0.91, "text": "refunds take five days", "source": "a.pdf#p1#0", "filename": "a.pdf", "file_id": "f-1", "page": 1, "chunk_index": 0},
				{"distance": 0.42, "text": "orphan hit", "source": nil, "page": nil},
			})
		})

		results, err := client.HybridSearch(context.Background(), "refund policy", []float32{0.1, 0.2}, 3, 0.7, 0.3)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("Expected 2 results, got %d", len(results))
		}
		first := results[0]
		if first.Score == nil || *first.Score != 0.91 {
			t.Errorf("Unexpected score: %v", first.Score)
		}
		if first.Source == nil || *first.Source != "a.pdf#p1#0" {
			t.Errorf("Unexpected source: %v", first.Source)
		}
		if first.Page == nil || *first.Page != 1 {
			t.Errorf("Unexpected page: %v", first.Page)
		}
		second := results[1]
		if second.Source != nil || second.Page != nil {
			t.Errorf("Expected null fields to stay nil, got %+v", second)
		}
		if second.Text != "orphan hit" {
			t.Errorf("Unexpected text: %q", second.Text)
		}
	})

	t.Run("surfaces a search error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeResponse(w, 1100, "collection not loaded", nil)
		})
		_, err := client.HybridSearch(context.Background(), "q", []float32{0.1}, 3, 0.5, 0.5)
		if err == nil {
			t.Fatal("Expected an error when the search fails")
		}
	})
}
