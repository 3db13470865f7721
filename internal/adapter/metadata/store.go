// Package metadata persists bibliographic records as one JSON object per
// document under <data_dir>/<corpus_id>/metadata/<document_id>.json.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"scholarag/internal/domain"
)

const recordCacheSize = 512

// FileStore implements domain.MetadataStore on the local filesystem with an
// LRU read cache. Records are small; the cache keeps repeated per-query
// citation lookups off the disk.
type FileStore struct {
	dataDir string
	cache   *lru.Cache[string, *domain.BibliographicRecord]
}

func NewFileStore(dataDir string) (*FileStore, error) {
	cache, err := lru.New[string, *domain.BibliographicRecord](recordCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}
	return &FileStore{dataDir: dataDir, cache: cache}, nil
}

func (s *FileStore) recordPath(corpusID, documentID string) string {
	return filepath.Join(s.dataDir, corpusID, "metadata", documentID+".json")
}

// Resolve returns the stored record, or (nil, nil) when none exists. A
// missing record is not an error; the caller omits the citation instead.
func (s *FileStore) Resolve(_ context.Context, corpusID, documentID string) (*domain.BibliographicRecord, error) {
	cacheKey := corpusID + "/" + documentID
	if rec, ok := s.cache.Get(cacheKey); ok {
		return rec, nil
	}

	data, err := os.ReadFile(s.recordPath(corpusID, documentID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata record: %w", err)
	}

	var rec domain.BibliographicRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse metadata record: %w", err)
	}

	s.cache.Add(cacheKey, &rec)
	return &rec, nil
}

func (s *FileStore) Save(_ context.Context, corpusID string, record *domain.BibliographicRecord) error {
	if record.DocumentID == "" {
		return fmt.Errorf("%w: record document id is required", domain.ErrInvalidArgument)
	}

	dir := filepath.Join(s.dataDir, corpusID, "metadata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create metadata dir: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata record: %w", err)
	}
	if err := os.WriteFile(s.recordPath(corpusID, record.DocumentID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata record: %w", err)
	}

	s.cache.Add(corpusID+"/"+record.DocumentID, record)
	return nil
}

func (s *FileStore) Delete(_ context.Context, corpusID, documentID string) error {
	s.cache.Remove(corpusID + "/" + documentID)
	err := os.Remove(s.recordPath(corpusID, documentID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata record: %w", err)
	}
	return nil
}

// DeleteCorpus removes every record of a corpus.
func (s *FileStore) DeleteCorpus(_ context.Context, corpusID string) error {
	s.cache.Purge()
	err := os.RemoveAll(filepath.Join(s.dataDir, corpusID))
	if err != nil {
		return fmt.Errorf("failed to delete corpus metadata: %w", err)
	}
	return nil
}

var _ domain.MetadataStore = (*FileStore)(nil)
