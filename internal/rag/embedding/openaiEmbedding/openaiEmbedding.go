package openaiEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client wraps the OpenAI embeddings endpoint with the model and output
// dimensionality fixed at construction.
type Client struct {
	api    openai.Client
	model  string
	dims   int64
	logger *logger_i.Logger
}

func NewClient(apiKey string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		api:    openai.NewClient(opts...),
		model:  config.EmbeddingModel,
		dims:   config.EmbeddingOutputDimensionality,
		logger: logger_i.NewLogger("OpenAI Embedding"),
	}
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// BatchEmbedding embeds all texts in a single request. The response must
// carry one vector per input; anything else is treated as an error so that
// callers never index vectors against the wrong chunk.
func (c *Client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	metrics.IncrementEmbedRequests()

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(c.dims),
	})
	if err != nil {
		c.logger.Error("Embedding request failed", "texts", len(texts), "error", err)
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response carried %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	metrics.AddEmbedVectors(len(vectors))
	return vectors, nil
}
