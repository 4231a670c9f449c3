package rag_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
)

func fileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnEnsureCollection func(ctx context.Context) error
	OnInsertChunks     func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error
	OnHybridSearch     func(ctx context.Context, query string, vector []float32, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error)
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx)
	}
	return nil
}

func (m *MockVectorDB) InsertChunks(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
	if m.OnInsertChunks != nil {
		return m.OnInsertChunks(ctx, chunks)
	}
	return nil
}

func (m *MockVectorDB) HybridSearch(ctx context.Context, query string, vector []float32, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
	if m.OnHybridSearch != nil {
		return m.OnHybridSearch(ctx, query, vector, topK, denseWeight, sparseWeight)
	}
	source := "default.pdf#p1#0"
	score := 0.9
	return []ragModel.SearchResult{{Text: "default context", Source: &source, Score: &score}}, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	// Return dummy vectors matching input size
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1}
	}
	return vectors, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, matches []string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, mth []string, hist []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, mth, hist)
	}
	return "mocked llm response", nil
}

// MockParser implements ingest.DocumentParser
type MockParser struct {
	OnParse func(ctx context.Context, data []byte) ([]ragModel.Page, string, error)
}

func (m *MockParser) Parse(ctx context.Context, data []byte) ([]ragModel.Page, string, error) {
	if m.OnParse != nil {
		return m.OnParse(ctx, data)
	}
	return []ragModel.Page{{Number: 1, Text: "default page text."}}, "Default Title", nil
}
