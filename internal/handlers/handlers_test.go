package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/DocRagAPI/internal/api"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/handlers"
)

// MockService implements rag.Service
type MockService struct {
	OnIngestDocument func(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error)
	OnHybridSearch   func(ctx context.Context, query string, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error)
	OnAnswer         func(ctx context.Context, question string) (string, []string, error)
}

func (m *MockService) IngestDocument(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error) {
	if m.OnIngestDocument != nil {
		return m.OnIngestDocument(ctx, filename, mime, data)
	}
	return ragModel.IndexingResult{Message: "Documents uploaded successfully", TotalChunks: 2}, nil
}

func (m *MockService) HybridSearch(ctx context.Context, query string, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
	if m.OnHybridSearch != nil {
		return m.OnHybridSearch(ctx, query, topK, denseWeight, sparseWeight)
	}
	return nil, nil
}

func (m *MockService) Answer(ctx context.Context, question string) (string, []string, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, question)
	}
	return "mock answer", []string{"a.pdf#p1#0"}, nil
}

func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("%PDF-1.4 fake content for " + name))
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestUpload(t *testing.T) {
	t.Run("rejects an empty upload", func(t *testing.T) {
		handler := handlers.NewRagHandler(&MockService{})
		body, contentType := multipartBody(t)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects non-PDF files before ingesting anything", func(t *testing.T) {
		ingested := 0
		handler := handlers.NewRagHandler(&MockService{
			OnIngestDocument: func(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error) {
				ingested++
				return ragModel.IndexingResult{}, nil
			},
		})
		body, contentType := multipartBody(t, "good.pdf", "bad.exe")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
		if ingested != 0 {
			t.Errorf("Expected no ingestion, got %d calls", ingested)
		}
	})

	t.Run("aggregates results and duplicates", func(t *testing.T) {
		calls := 0
		handler := handlers.NewRagHandler(&MockService{
			OnIngestDocument: func(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error) {
				calls++
				if filename == "dup.pdf" {
					return ragModel.IndexingResult{Message: "Duplicate file; skipping embedding."}, nil
				}
				return ragModel.IndexingResult{Message: "Documents uploaded successfully", TotalChunks: 3}, nil
			},
		})
		body, contentType := multipartBody(t, "new.pdf", "dup.pdf")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp api.UploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.DocumentsIndexed != 1 || resp.Duplicates != 1 || resp.TotalChunks != 3 {
			t.Errorf("Unexpected aggregate: %+v", resp)
		}
		if resp.Message != "Documents indexed successfully (1 duplicates found)." {
			t.Errorf("Unexpected message: %q", resp.Message)
		}
		if calls != 2 {
			t.Errorf("Expected 2 ingestions, got %d", calls)
		}
	})

	t.Run("reports a fully failed upload", func(t *testing.T) {
		handler := handlers.NewRagHandler(&MockService{
			OnIngestDocument: func(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error) {
				return ragModel.IndexingResult{}, errors.New("parse failed")
			},
		})
		body, contentType := multipartBody(t, "broken.pdf")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)
		var resp api.UploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.FailedFiles != 1 || resp.Message != "All files failed to process." {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})
}

func TestHybridSearch(t *testing.T) {
	t.Run("requires a query", func(t *testing.T) {
		handler := handlers.NewRagHandler(&MockService{})
		req := httptest.NewRequest(http.MethodGet, "/hybrid_search", nil)
		rec := httptest.NewRecorder()

		handler.HybridSearch(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("parses params and defaults the rest", func(t *testing.T) {
		var gotTopK int
		var gotDense, gotSparse float64
		handler := handlers.NewRagHandler(&MockService{
			OnHybridSearch: func(ctx context.Context, query string, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
				gotTopK, gotDense, gotSparse = topK, denseWeight, sparseWeight
				return nil, nil
			},
		})
		req := httptest.NewRequest(http.MethodGet, "/hybrid_search?query=refunds&top_k=7&dense_weight=0.8", nil)
		rec := httptest.NewRecorder()

		handler.HybridSearch(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if gotTopK != 7 || gotDense != 0.8 || gotSparse != 0.5 {
			t.Errorf("Unexpected params: %d %v %v", gotTopK, gotDense, gotSparse)
		}
	})

	t.Run("maps a search failure to 500", func(t *testing.T) {
		handler := handlers.NewRagHandler(&MockService{
			OnHybridSearch: func(ctx context.Context, query string, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
				return nil, errors.New("index offline")
			},
		})
		req := httptest.NewRequest(http.MethodGet, "/hybrid_search?query=refunds", nil)
		rec := httptest.NewRecorder()

		handler.HybridSearch(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", rec.Code)
		}
	})
}

func TestQuestion(t *testing.T) {
	t.Run("requires a question", func(t *testing.T) {
		handler := handlers.NewRagHandler(&MockService{})
		req := httptest.NewRequest(http.MethodPost, "/question", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.Question(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns the answer with references", func(t *testing.T) {
		handler := handlers.NewRagHandler(&MockService{})
		req := httptest.NewRequest(http.MethodPost, "/question", strings.NewReader(`{"question":"how do refunds work?"}`))
		rec := httptest.NewRecorder()

		handler.Question(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var resp api.QuestionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Answer != "mock answer" || len(resp.References) != 1 {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})
}
