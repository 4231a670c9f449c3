package embedding

import "context"

// Embedder produces dense vectors for retrieval. Implementations must return
// exactly one vector per input text, in input order.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
