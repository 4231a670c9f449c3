package ingest_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/DocRagAPI/internal/data/store"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/rag/ingest"
)

type MockParser struct {
	ParseFunc func(ctx context.Context, data []byte) ([]ragModel.Page, string, error)
}

func (m *MockParser) Parse(ctx context.Context, data []byte) ([]ragModel.Page, string, error) {
	return m.ParseFunc(ctx, data)
}

type MockEmbedder struct {
	BatchEmbeddingFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := m.BatchEmbeddingFunc(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return m.BatchEmbeddingFunc(ctx, texts)
}

type MockVectorDB struct {
	InsertChunksFunc func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context) error { return nil }

func (m *MockVectorDB) InsertChunks(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
	return m.InsertChunksFunc(ctx, chunks)
}

func (m *MockVectorDB) HybridSearch(ctx context.Context, query string, vector []float32, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
	return nil, nil
}

func identityEmbedder() *MockEmbedder {
	return &MockEmbedder{
		BatchEmbeddingFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{0.1, 0.2}
			}
			return vectors, nil
		},
	}
}

func singlePageParser(text string) *MockParser {
	return &MockParser{
		ParseFunc: func(ctx context.Context, data []byte) ([]ragModel.Page, string, error) {
			return []ragModel.Page{{Number: 1, Text: text}}, "Test Doc", nil
		},
	}
}

func TestIngest(t *testing.T) {
	t.Run("indexes a new document end to end", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		var indexed []ragModel.EmbeddedChunk
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
				indexed = append(indexed, chunks...)
				return nil
			},
		}
		pipeline := ingest.NewPipeline(docStore, singlePageParser("Refunds are handled in five days."), identityEmbedder(), vector)

		result, err := pipeline.Ingest(context.Background(), "policy.pdf", "application/pdf", []byte("%PDF-fake"))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if result.Message != "Documents uploaded successfully" {
			t.Errorf("Unexpected message: %q", result.Message)
		}
		if result.TotalChunks != 1 || len(result.Errors) != 0 {
			t.Errorf("Expected 1 clean chunk, got %+v", result)
		}
		if result.InsertedFileID == "" || len(result.InsertedChunkIDs) != 1 {
			t.Errorf("Expected recorded ids, got %+v", result)
		}
		if len(indexed) != 1 {
			t.Fatalf("Expected 1 indexed chunk, got %d", len(indexed))
		}
		if indexed[0].ChunkID != result.InsertedChunkIDs[0] {
			t.Error("Expected indexed chunk id to match the stored chunk id")
		}

		sum := sha256.Sum256([]byte("%PDF-fake"))
		stored, err := docStore.FindFileByHash(context.Background(), hex.EncodeToString(sum[:]))
		if err != nil || stored == nil {
			t.Fatalf("Expected the file record to be stored, got %v, %v", stored, err)
		}
		if stored.SizeBytes != int64(len("%PDF-fake")) {
			t.Errorf("Expected size %d, got %d", len("%PDF-fake"), stored.SizeBytes)
		}
	})

	t.Run("skips a duplicate by content hash", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error { return nil },
		}
		pipeline := ingest.NewPipeline(docStore, singlePageParser("Some content."), identityEmbedder(), vector)

		first, err := pipeline.Ingest(context.Background(), "a.pdf", "application/pdf", []byte("same bytes"))
		if err != nil {
			t.Fatalf("First ingest failed: %v", err)
		}
		second, err := pipeline.Ingest(context.Background(), "renamed.pdf", "application/pdf", []byte("same bytes"))
		if err != nil {
			t.Fatalf("Second ingest failed: %v", err)
		}
		if second.Message != "Duplicate file; skipping embedding." {
			t.Errorf("Unexpected duplicate message: %q", second.Message)
		}
		if second.TotalChunks != 0 {
			t.Errorf("Expected no chunks for a duplicate, got %d", second.TotalChunks)
		}
		if second.InsertedFileID != first.InsertedFileID {
			t.Error("Expected the duplicate to reference the original file id")
		}
	})

	t.Run("collects embedding failures per batch", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		embedder := &MockEmbedder{
			BatchEmbeddingFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, errors.New("rate limited")
			},
		}
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
				t.Error("Expected no index insert when embedding fails")
				return nil
			},
		}
		pipeline := ingest.NewPipeline(docStore, singlePageParser("Some content."), embedder, vector)

		result, err := pipeline.Ingest(context.Background(), "a.pdf", "application/pdf", []byte("bytes"))
		if err != nil {
			t.Fatalf("Expected batch failures as values, got error %v", err)
		}
		if len(result.Errors) != result.TotalChunks || result.TotalChunks == 0 {
			t.Fatalf("Expected every chunk to fail, got %+v", result)
		}
		if !strings.HasPrefix(result.Errors[0].Error, "embed: ") {
			t.Errorf("Expected an embed-stage error, got %q", result.Errors[0].Error)
		}
	})

	t.Run("treats a vector count mismatch as an embed failure", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		embedder := &MockEmbedder{
			BatchEmbeddingFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return [][]float32{}, nil
			},
		}
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
				t.Error("Expected no index insert on a vector count mismatch")
				return nil
			},
		}
		pipeline := ingest.NewPipeline(docStore, singlePageParser("Some content."), embedder, vector)

		result, err := pipeline.Ingest(context.Background(), "a.pdf", "application/pdf", []byte("bytes"))
		if err != nil {
			t.Fatalf("Expected batch failures as values, got error %v", err)
		}
		if len(result.Errors) != result.TotalChunks || result.TotalChunks == 0 {
			t.Fatalf("Expected every chunk to fail, got %+v", result)
		}
		if !strings.HasPrefix(result.Errors[0].Error, "embed: ") || !strings.Contains(result.Errors[0].Error, "length mismatch") {
			t.Errorf("Expected an embed length mismatch error, got %q", result.Errors[0].Error)
		}
	})

	t.Run("collects index insert failures per batch", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error {
				return errors.New("collection not loaded")
			},
		}
		pipeline := ingest.NewPipeline(docStore, singlePageParser("Some content."), identityEmbedder(), vector)

		result, err := pipeline.Ingest(context.Background(), "a.pdf", "application/pdf", []byte("bytes"))
		if err != nil {
			t.Fatalf("Expected batch failures as values, got error %v", err)
		}
		if len(result.Errors) != result.TotalChunks {
			t.Fatalf("Expected every chunk to fail, got %+v", result)
		}
		if !strings.HasPrefix(result.Errors[0].Error, "insert: ") {
			t.Errorf("Expected an insert-stage error, got %q", result.Errors[0].Error)
		}
	})

	t.Run("fails when the parser cannot open the document", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		parser := &MockParser{
			ParseFunc: func(ctx context.Context, data []byte) ([]ragModel.Page, string, error) {
				return nil, "", errors.New("not a pdf")
			},
		}
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error { return nil },
		}
		pipeline := ingest.NewPipeline(docStore, parser, identityEmbedder(), vector)

		if _, err := pipeline.Ingest(context.Background(), "junk.bin", "application/pdf", []byte("junk")); err == nil {
			t.Fatal("Expected an error for an unparseable document")
		}
	})

	t.Run("caps stored error messages", func(t *testing.T) {
		docStore := store.InitInMemoryDocStore()
		embedder := &MockEmbedder{
			BatchEmbeddingFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, errors.New(strings.Repeat("x", 2000))
			},
		}
		vector := &MockVectorDB{
			InsertChunksFunc: func(ctx context.Context, chunks []ragModel.EmbeddedChunk) error { return nil },
		}
		pipeline := ingest.NewPipeline(docStore, singlePageParser("Some content."), embedder, vector)

		result, err := pipeline.Ingest(context.Background(), "a.pdf", "application/pdf", []byte("bytes"))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(result.Errors) == 0 {
			t.Fatal("Expected failed chunks")
		}
		if len(result.Errors[0].Error) > 300 {
			t.Errorf("Expected error message capped at 300 chars, got %d", len(result.Errors[0].Error))
		}
	})
}
