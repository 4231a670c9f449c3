package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/internal/rag/chunker"
	"github.com/akolanti/DocRagAPI/internal/rag/embedding"
	"github.com/akolanti/DocRagAPI/internal/rag/vectorDB"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DocumentParser turns raw document bytes into ordered pages plus a title.
type DocumentParser interface {
	Parse(ctx context.Context, data []byte) ([]ragModel.Page, string, error)
}

// Pipeline runs one document through hash dedup, parsing, chunking,
// embedding and vector indexing. Batch-level failures are collected as
// values in the result, never as errors; only whole-document problems
// (duplicate lookup, parse, record insert) abort the run.
type Pipeline struct {
	store     ragModel.DocumentStore
	parser    DocumentParser
	embedder  embedding.Embedder
	vectorDB  vectorDB.DataProcessor
	batchSize int
	logger    *logger_i.Logger
}

func NewPipeline(store ragModel.DocumentStore, parser DocumentParser, embedder embedding.Embedder, vector vectorDB.DataProcessor) *Pipeline {
	return &Pipeline{
		store:     store,
		parser:    parser,
		embedder:  embedder,
		vectorDB:  vector,
		batchSize: config.EmbeddingBatchSize,
		logger:    logger_i.NewLogger("Ingest"),
	}
}

func (p *Pipeline) Ingest(ctx context.Context, filename string, mime string, data []byte) (ragModel.IndexingResult, error) {
	sum := sha256.Sum256(data)
	fileHash := hex.EncodeToString(sum[:])

	existing, err := p.store.FindFileByHash(ctx, fileHash)
	if err != nil {
		return ragModel.IndexingResult{}, fmt.Errorf("duplicate lookup: %w", err)
	}
	if existing != nil {
		p.logger.Info("Duplicate file skipped", "filename", filename, "file_id", existing.ID)
		metrics.IncrementIngestDuplicates()
		return ragModel.IndexingResult{
			Message:        "Duplicate file; skipping embedding.",
			InsertedFileID: existing.ID,
		}, nil
	}

	stopParse := metrics.ObserveStage("parse")
	pages, title, err := p.parser.Parse(ctx, data)
	stopParse()
	if err != nil {
		return ragModel.IndexingResult{}, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if len(pages) == 0 {
		return ragModel.IndexingResult{}, fmt.Errorf("parsing %s: document has no pages", filename)
	}

	fileID := uuid.New().String()
	var content strings.Builder
	for _, page := range pages {
		content.WriteString(page.Text)
		content.WriteString("\n")
	}
	file := ragModel.File{
		ID:         fileID,
		FileHash:   fileHash,
		Filename:   filename,
		Title:      title,
		Content:    content.String(),
		TotalPages: len(pages),
		SizeBytes:  int64(len(data)),
		Mime:       mime,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := p.store.InsertFile(ctx, file); err != nil {
		return ragModel.IndexingResult{}, fmt.Errorf("saving file record: %w", err)
	}

	stopChunk := metrics.ObserveStage("chunkfy")
	chunks := chunker.BuildChunks(pages, fileID, filename, title, config.ChunkMaxChars, config.ChunkOverlap)
	stopChunk()
	for i := range chunks {
		chunks[i].ID = uuid.New().String()
	}
	metrics.AddIngestChunks(len(chunks))

	result := ragModel.IndexingResult{
		Message:        "Documents uploaded successfully",
		TotalChunks:    len(chunks),
		InsertedFileID: fileID,
	}
	if len(chunks) == 0 {
		p.logger.Warn("Document produced no chunks", "filename", filename, "file_id", fileID)
		metrics.IncrementIngestFiles()
		return result, nil
	}

	chunkIDs, err := p.store.InsertChunks(ctx, chunks)
	if err != nil {
		return ragModel.IndexingResult{}, fmt.Errorf("saving chunk records: %w", err)
	}
	result.InsertedChunkIDs = chunkIDs

	failed := p.indexBatches(ctx, chunks)
	result.Errors = failed
	if len(failed) > 0 {
		p.logger.Warn("Some chunks failed to index", "filename", filename, "failed", len(failed), "total", len(chunks))
	}

	metrics.IncrementIngestFiles()
	return result, nil
}

// indexBatches embeds and indexes the chunks in fixed-size batches, one
// goroutine per batch. A failing batch never stops its siblings.
func (p *Pipeline) indexBatches(ctx context.Context, chunks []ragModel.Chunk) []ragModel.FailedChunk {
	var (
		mu     sync.Mutex
		failed []ragModel.FailedChunk
	)
	g, gCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		g.Go(func() error {
			if batchFailed := p.processBatch(gCtx, batch); len(batchFailed) > 0 {
				mu.Lock()
				failed = append(failed, batchFailed...)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return failed
}

func (p *Pipeline) processBatch(ctx context.Context, batch []ragModel.Chunk) []ragModel.FailedChunk {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	stopEmbed := metrics.ObserveStage("embed")
	vectors, err := p.embedder.BatchEmbedding(ctx, texts)
	stopEmbed()
	if err != nil {
		return failAll(batch, shortErr("embed", err))
	}
	if len(vectors) != len(batch) {
		return failAll(batch, shortErr("embed", fmt.Errorf("length mismatch (got %d, expected %d)", len(vectors), len(batch))))
	}

	embedded := make([]ragModel.EmbeddedChunk, len(batch))
	for i, c := range batch {
		embedded[i] = ragModel.EmbeddedChunk{
			ChunkID:    c.ID,
			FileID:     c.FileID,
			Filename:   c.Filename,
			Title:      c.Title,
			Page:       c.Page,
			ChunkIndex: c.ChunkIdx,
			Source:     c.Source,
			Text:       c.Text,
			Vector:     vectors[i],
		}
	}

	stopInsert := metrics.ObserveStage("index_insert")
	err = p.vectorDB.InsertChunks(ctx, embedded)
	stopInsert()
	if err != nil {
		return failAll(batch, shortErr("insert", err))
	}
	return nil
}

func failAll(batch []ragModel.Chunk, reason string) []ragModel.FailedChunk {
	out := make([]ragModel.FailedChunk, len(batch))
	for i, c := range batch {
		out[i] = ragModel.FailedChunk{
			ChunkID:  c.ID,
			Filename: c.Filename,
			Error:    reason,
		}
	}
	return out
}

// shortErr renders "stage: Type: message" capped at a fixed length so stored
// failure lists stay bounded.
func shortErr(stage string, err error) string {
	msg := fmt.Sprintf("%s: %T: %v", stage, err, err)
	if len(msg) > config.FailedChunkErrorLimit {
		msg = msg[:config.FailedChunkErrorLimit]
	}
	return msg
}
