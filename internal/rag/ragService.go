package rag

import (
	"context"
	"fmt"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/internal/rag/embedding"
	"github.com/akolanti/DocRagAPI/internal/rag/ingest"
	"github.com/akolanti/DocRagAPI/internal/rag/llm"
	"github.com/akolanti/DocRagAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

// Service is the public contract the HTTP layer and the agent tools call.
// The private struct keeps the vector index, the embedder and the LLM out of
// reach of other packages.
type Service interface {
	IngestDocument(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error)
	HybridSearch(ctx context.Context, query string, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error)
	Answer(ctx context.Context, question string) (string, []string, error)
}

type service struct {
	store       ragModel.DocumentStore
	pipeline    *ingest.Pipeline
	embedder    embedding.Embedder
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(store ragModel.DocumentStore, parser ingest.DocumentParser, em embedding.Embedder, vector vectorDB.DataProcessor, llmProvider llm.Provider) Service {
	return &service{
		store:       store,
		pipeline:    ingest.NewPipeline(store, parser, em, vector),
		embedder:    em,
		vectorDB:    vector,
		llmProvider: llmProvider,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// IngestDocument runs the pipeline and rolls the stored records back when
// every chunk failed to index, so a fully broken file leaves no trace.
func (s *service) IngestDocument(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error) {
	result, err := s.pipeline.Ingest(ctx, filename, mime, data)
	if err != nil {
		return ragModel.IndexingResult{}, err
	}

	if result.TotalChunks > 0 && len(result.Errors) == result.TotalChunks {
		s.rollback(ctx, result.InsertedFileID, filename)
	}
	return result, nil
}

func (s *service) HybridSearch(ctx context.Context, query string, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
	metrics.IncrementSearchRequests()
	if topK <= 0 {
		topK = config.DefaultTopK
	}

	vector, err := s.executeEmbeddingStep(ctx, query)
	if err != nil {
		metrics.IncrementSearchErrors()
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.executeSearchStep(ctx, query, vector, topK, denseWeight, sparseWeight)
	if err != nil {
		metrics.IncrementSearchErrors()
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return results, nil
}

// Answer retrieves context with the default weights and asks the LLM for a
// grounded answer. Returns the answer plus the deduplicated source locators
// it was grounded on.
func (s *service) Answer(ctx context.Context, question string) (string, []string, error) {
	metrics.IncrementQuestionRequests()

	results, err := s.HybridSearch(ctx, question, config.DefaultTopK, config.DefaultDenseWeight, config.DefaultSparseWeight)
	if err != nil {
		metrics.IncrementQuestionErrors()
		return "", nil, err
	}

	matches := make([]string, 0, len(results))
	references := make([]string, 0, len(results))
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Text != "" {
			matches = append(matches, r.Text)
		}
		if r.Source != nil && !seen[*r.Source] {
			seen[*r.Source] = true
			references = append(references, *r.Source)
		}
	}

	answer, err := s.executeLLMStep(ctx, question, matches)
	if err != nil {
		metrics.IncrementQuestionErrors()
		return "", nil, fmt.Errorf("generating answer: %w", err)
	}
	return answer, references, nil
}
