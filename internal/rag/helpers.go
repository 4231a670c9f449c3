package rag

import (
	"context"

	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/metrics"
)

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	stop := metrics.ObserveStage("embed")
	defer stop()
	return s.embedder.GetEmbedding(ctx, query)
}

func (s *service) executeSearchStep(ctx context.Context, query string, vector []float32, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error) {
	stop := metrics.ObserveStage("search")
	defer stop()
	return s.vectorDB.HybridSearch(ctx, query, vector, topK, denseWeight, sparseWeight)
}

func (s *service) executeLLMStep(ctx context.Context, question string, matches []string) (string, error) {
	stop := metrics.ObserveStage("generate")
	defer stop()
	return s.llmProvider.Generate(ctx, question, matches, nil)
}

// rollback removes the stored chunk and file records for a file whose chunks
// all failed to index. Both deletions are attempted even if the first one
// fails; a partial rollback is still better than none.
func (s *service) rollback(ctx context.Context, fileID string, filename string) {
	chunksDeleted, filesDeleted, err := s.store.DeleteFileAndChunks(ctx, fileID)
	if err != nil {
		s.logger.Error("Rollback failed", "filename", filename, "file_id", fileID, "error", err)
		return
	}
	s.logger.Warn("Rolled back failed ingestion",
		"filename", filename,
		"file_id", fileID,
		"chunks_deleted", chunksDeleted,
		"files_deleted", filesDeleted,
	)
}
