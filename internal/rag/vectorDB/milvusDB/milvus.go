package milvusDB

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/customHttpClient"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

// Client talks to the vector database over its HTTP v2 API. The lexical
// (sparse) side is computed server-side from the stored chunk text, so
// inserts only ship the dense vector.
type Client struct {
	baseURL    string
	token      string
	collection string
	http       *http.Client
	logger     *logger_i.Logger
}

type baseResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func NewClient(baseURL string, token string, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		collection: collection,
		http:       customHttpClient.NewPooledClient(config.VectorIndexRequestTimeout),
		logger:     logger_i.NewLogger("Milvus"),
	}
}

// post sends one API call and decodes the envelope. The API signals errors
// with a non-zero code in a 200 response, so both layers are checked.
func (c *Client) post(ctx context.Context, path string, payload any) (*baseResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed baseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", path, err)
	}
	if parsed.Code != 0 {
		return &parsed, fmt.Errorf("%s failed with code %d: %s", path, parsed.Code, parsed.Message)
	}
	return &parsed, nil
}

// EnsureCollection creates the collection with its BM25 function, builds the
// dense and sparse indexes and loads the collection. Every step tolerates
// the "already exists" answer so restarts are clean.
func (c *Client) EnsureCollection(ctx context.Context) error {
	createPayload := map[string]any{
		"collectionName": c.collection,
		"schema":         collectionSchema(),
	}
	if resp, err := c.post(ctx, "/v2/vectordb/collections/create", createPayload); err != nil {
		if resp == nil || !isIdempotent(resp.Message) {
			return fmt.Errorf("creating collection: %w", err)
		}
		c.logger.Debug("Collection already exists", "collection", c.collection)
	}

	indexPayload := map[string]any{
		"collectionName": c.collection,
		"indexParams":    indexParams(),
	}
	if resp, err := c.post(ctx, "/v2/vectordb/indexes/create", indexPayload); err != nil {
		if resp == nil || !isIdempotent(resp.Message) {
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	loadPayload := map[string]any{"collectionName": c.collection}
	if _, err := c.post(ctx, "/v2/vectordb/collections/load", loadPayload); err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}
	c.logger.Info("Vector collection ready", "collection", c.collection)
	return nil
}

func (c *Client) InsertChunks(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	metrics.IncrementInsertBatches()

	rows := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		rows[i] = map[string]any{
			"chunk_id":    chunk.ChunkID,
			"file_id":     chunk.FileID,
			"filename":    chunk.Filename,
			"title":       chunk.Title,
			"page":        chunk.Page,
			"chunk_index": chunk.ChunkIndex,
			"source":      chunk.Source,
			"text":        chunk.Text,
			"vector":      chunk.Vector,
		}
	}
	payload := map[string]any{
		"collectionName": c.collection,
		"data":           rows,
	}
	if _, err := c.post(ctx, "/v2/vectordb/entities/insert", payload); err != nil {
		metrics.IncrementInsertErrors()
		return err
	}
	return nil
}

// HybridSearch fuses a dense sub-search over the embedding field with a
// sparse BM25 sub-search over the raw query text, reranked by the given
// weights. Weights are passed through as-is.
func (c *Client) HybridSearch(ctx context.Context, query string, vector []float32, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
	payload := map[string]any{
		"collectionName": c.collection,
		"search": []map[string]any{
			{
				"data":      []any{vector},
				"annsField": "vector",
				"limit":     topK,
				"params":    map[string]any{"nprobe": 10},
			},
			{
				"data":      []any{query},
				"annsField": "sparse_vector",
				"limit":     topK,
			},
		},
		"rerank": map[string]any{
			"strategy": "weighted",
			"params": map[string]any{
				"weights": []float64{denseWeight, sparseWeight},
			},
		},
		"limit":        topK,
		"outputFields": []string{"text", "source", "filename", "file_id", "page", "chunk_index"},
	}

	resp, err := c.post(ctx, "/v2/vectordb/entities/advanced_search", payload)
	if err != nil {
		return nil, err
	}

	var hits []map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data, &hits); err != nil {
		return nil, fmt.Errorf("decoding search hits: %w", err)
	}

	results := make([]ragModel.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, mapHit(hit))
	}
	return results, nil
}

// mapHit converts one raw hit into a SearchResult. Missing or null fields
// stay nil rather than failing the whole response.
func mapHit(hit map[string]json.RawMessage) ragModel.SearchResult {
	var r ragModel.SearchResult
	r.Score = floatField(hit, "distance")
	r.Source = stringField(hit, "source")
	r.FileID = stringField(hit, "file_id")
	r.Filename = stringField(hit, "filename")
	r.Page = intField(hit, "page")
	r.ChunkIndex = intField(hit, "chunk_index")
	if s := stringField(hit, "text"); s != nil {
		r.Text = *s
	}
	return r
}

func stringField(hit map[string]json.RawMessage, key string) *string {
	raw, ok := hit[key]
	if !ok || isJSONNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func intField(hit map[string]json.RawMessage, key string) *int {
	raw, ok := hit[key]
	if !ok || isJSONNull(raw) {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

func floatField(hit map[string]json.RawMessage, key string) *float64 {
	raw, ok := hit[key]
	if !ok || isJSONNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// isJSONNull catches an explicit null, which json.Unmarshal would otherwise
// silently turn into the zero value.
func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// isIdempotent reports whether a create-style error message means the object
// is already in place.
func isIdempotent(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "already exist") ||
		strings.Contains(m, "duplicated") ||
		strings.Contains(m, "has been created")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
