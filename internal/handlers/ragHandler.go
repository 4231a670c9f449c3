package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/DocRagAPI/internal/adapter"
	"github.com/akolanti/DocRagAPI/internal/api"
	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/rag"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

const maxUploadBytes = 32 << 20

type RagHandler struct {
	service rag.Service
	logger  *logger_i.Logger
}

func NewRagHandler(service rag.Service) *RagHandler {
	return &RagHandler{
		service: service,
		logger:  logger_i.NewLogger("RAG Handler"),
	}
}

// Upload accepts a multipart form with one or more PDF files under "files".
// Every file is validated before any ingestion starts: one bad file rejects
// the whole request so the caller never gets a half-ingested upload by
// accident.
func (h *RagHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		WriteErrorResponse(w, r, http.StatusBadRequest, "No files uploaded")
		return
	}
	for _, header := range files {
		if !isPDF(header) {
			WriteErrorResponse(w, r, http.StatusBadRequest, "Only PDF files are accepted: "+header.Filename)
			return
		}
	}

	outcomes := make([]adapter.FileOutcome, 0, len(files))
	for _, header := range files {
		data, err := readUpload(header)
		if err != nil {
			h.logger.Error("Could not read upload", "filename", header.Filename, "error", err)
			outcomes = append(outcomes, adapter.FileOutcome{Filename: header.Filename, Err: err})
			continue
		}
		result, err := h.service.IngestDocument(r.Context(), header.Filename, "application/pdf", data)
		if err != nil {
			h.logger.Error("Ingestion failed", "filename", header.Filename, "error", err)
		}
		outcomes = append(outcomes, adapter.FileOutcome{Filename: header.Filename, Result: result, Err: err})
	}

	writeJsonResponse(w, http.StatusOK, adapter.BuildUploadResponse(outcomes))
}

// HybridSearch godoc: GET /hybrid_search?query=...&top_k=3&dense_weight=0.5&sparse_weight=0.5
func (h *RagHandler) HybridSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		WriteErrorResponse(w, r, http.StatusBadRequest, "query is required")
		return
	}
	topK := intParam(r, "top_k", config.DefaultTopK)
	denseWeight := floatParam(r, "dense_weight", config.DefaultDenseWeight)
	sparseWeight := floatParam(r, "sparse_weight", config.DefaultSparseWeight)

	results, err := h.service.HybridSearch(r.Context(), query, topK, denseWeight, sparseWeight)
	if err != nil {
		h.logger.Error("Hybrid search failed", "query", query, "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Search failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.SearchResponse{Query: query, Results: results})
}

func (h *RagHandler) Question(w http.ResponseWriter, r *http.Request) {
	var req api.QuestionRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Question) == "" {
		WriteErrorResponse(w, r, http.StatusBadRequest, "question is required")
		return
	}

	answer, references, err := h.service.Answer(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("Question failed", "error", err)
		WriteErrorResponse(w, r, http.StatusInternalServerError, "Could not answer the question")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.QuestionResponse{Answer: answer, References: references})
}

func isPDF(header *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return true
	}
	return header.Header.Get("Content-Type") == "application/pdf"
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func floatParam(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}
