package vectorDB

import (
	"context"

	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
)

// DataProcessor is the vector index surface the ingestion and retrieval
// paths depend on.
type DataProcessor interface {
	// EnsureCollection creates the collection, its indexes and loads it.
	// Safe to call on every startup.
	EnsureCollection(ctx context.Context) error

	// InsertChunks indexes one batch of embedded chunks.
	InsertChunks(ctx context.Context, chunks []ragModel.EmbeddedChunk) error

	// HybridSearch runs a dense and a sparse sub-search over the same
	// collection and fuses them with the given weights.
	HybridSearch(ctx context.Context, query string, vector []float32, topK int, denseWeight float64, sparseWeight float64) ([]ragModel.SearchResult, error)
}
