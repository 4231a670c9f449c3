package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

var docStoreLogger = logger_i.NewLogger("InMem DocStore")

// InMemoryDocStore keeps file and chunk records in process memory. Used when
// the document database is offline and as the test double.
type InMemoryDocStore struct {
	mu     *sync.RWMutex
	files  map[string]ragModel.File
	chunks map[string][]ragModel.Chunk //keyed by file id
}

func InitInMemoryDocStore() *InMemoryDocStore {
	return &InMemoryDocStore{
		mu:     new(sync.RWMutex),
		files:  make(map[string]ragModel.File),
		chunks: make(map[string][]ragModel.Chunk),
	}
}

func (s *InMemoryDocStore) InsertFile(ctx context.Context, file ragModel.File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file.ID] = file
	docStoreLogger.Debug("Saved file record", "file_id", file.ID)
	return file.ID, nil
}

func (s *InMemoryDocStore) FindFileByHash(ctx context.Context, fileHash string) (*ragModel.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.FileHash == fileHash {
			found := f
			return &found, nil
		}
	}
	return nil, nil
}

func (s *InMemoryDocStore) InsertChunks(ctx context.Context, chunks []ragModel.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		s.chunks[c.FileID] = append(s.chunks[c.FileID], c)
		ids[i] = c.ID
	}
	return ids, nil
}

func (s *InMemoryDocStore) DeleteFileAndChunks(ctx context.Context, fileID string) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunksDeleted := int64(len(s.chunks[fileID]))
	delete(s.chunks, fileID)

	var filesDeleted int64
	if _, ok := s.files[fileID]; ok {
		delete(s.files, fileID)
		filesDeleted = 1
	}
	return chunksDeleted, filesDeleted, nil
}
