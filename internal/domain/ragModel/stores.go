package ragModel

import "context"

// DocumentStore is the slice of the document database the ingestion
// pipeline needs. The store owns File and Chunk records; the pipeline only
// creates, reads and rolls them back.
type DocumentStore interface {
	InsertFile(ctx context.Context, file File) (string, error)
	FindFileByHash(ctx context.Context, fileHash string) (*File, error)
	InsertChunks(ctx context.Context, chunks []Chunk) ([]string, error)

	// DeleteFileAndChunks removes the chunks first, then the file record.
	// Used when every chunk of a file failed to index.
	DeleteFileAndChunks(ctx context.Context, fileID string) (chunksDeleted int64, filesDeleted int64, err error)
}
