package ragModel

import "time"

// File is the per-document record kept in the document store. FileHash is
// unique: a second upload with identical bytes never creates another File.
type File struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	FileHash   string    `bson:"file_hash" json:"file_hash"`
	Filename   string    `bson:"filename" json:"filename"`
	Title      string    `bson:"title,omitempty" json:"title,omitempty"`
	Content    string    `bson:"content" json:"content"`
	TotalPages int       `bson:"total_pages" json:"total_pages"`
	SizeBytes  int64     `bson:"size_bytes" json:"size_bytes"`
	Mime       string    `bson:"mime" json:"mime"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Chunk is one bounded slice of a page's text, the unit of embedding and
// retrieval. Page and chunk indexes are the values exposed to callers
// (page is 1-based, chunk index is the order within its page).
type Chunk struct {
	ID       string `bson:"_id,omitempty" json:"chunk_id"`
	FileID   string `bson:"file_id" json:"file_id"`
	Filename string `bson:"filename" json:"filename"`
	Title    string `bson:"title,omitempty" json:"title,omitempty"`
	Page     int    `bson:"page" json:"page"`
	ChunkIdx int    `bson:"chunk_index" json:"chunk_index"`
	Source   string `bson:"source" json:"source"`
	Text     string `bson:"text" json:"text"`
}

// EmbeddedChunk is a Chunk paired with its dense vector, shaped for one
// vector-index row. Transient: it exists only on the way to the index.
type EmbeddedChunk struct {
	ChunkID    string    `json:"chunk_id"`
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Page       int       `json:"page"`
	ChunkIndex int       `json:"chunk_index"`
	Source     string    `json:"source"`
	Text       string    `json:"text"`
	Vector     []float32 `json:"vector"`
}

type FailedChunk struct {
	ChunkID  string `json:"chunk_id"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error"`
}

// IndexingResult aggregates one ingestion run. TotalChunks counts every
// chunk produced, independent of how many of them failed downstream.
type IndexingResult struct {
	Message          string        `json:"message"`
	TotalChunks      int           `json:"total_chunks"`
	Errors           []FailedChunk `json:"errors"`
	InsertedFileID   string        `json:"inserted_file_id,omitempty"`
	InsertedChunkIDs []string      `json:"inserted_chunk_ids,omitempty"`
}

// SearchResult is one retrieved hit. Absent index fields stay nil instead of
// failing the whole response.
type SearchResult struct {
	Text       string   `json:"text"`
	Source     *string  `json:"source"`
	FileID     *string  `json:"file_id"`
	Filename   *string  `json:"filename"`
	Page       *int     `json:"page"`
	ChunkIndex *int     `json:"chunk_index"`
	Score      *float64 `json:"score"`
}

// Page is one page of extracted text, numbered from 1.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}
