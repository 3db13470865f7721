package domain

import "context"

// IndexQuery describes one similarity query against a corpus.
type IndexQuery struct {
	Dense  []float32
	Sparse *SparseVector
	Limit  int
	// DocumentIDs restricts results to chunks of any of these documents.
	// Empty means no filter.
	DocumentIDs []string
	// UseFusion requests dense+sparse RRF fusion. Only honored when the
	// corpus is hybrid and Sparse is supplied; otherwise the query runs
	// dense-only.
	UseFusion bool
}

// VectorIndex manages one logical collection of chunk vectors per corpus.
type VectorIndex interface {
	// CreateCorpus registers a corpus. Fails with ErrAlreadyExists if the id
	// is taken.
	CreateCorpus(ctx context.Context, id, name string, denseDim int, mode SearchMode) (*Corpus, error)

	// GetCorpus returns corpus metadata, ErrNotFound if absent. Implementations
	// must answer from O(1) metadata lookup, not a listing scan.
	GetCorpus(ctx context.Context, id string) (*Corpus, error)

	// ListCorpora enumerates all corpora.
	ListCorpora(ctx context.Context) ([]Corpus, error)

	// DeleteCorpus removes the corpus and all of its chunks.
	DeleteCorpus(ctx context.Context, id string) error

	// Upsert stores chunk vectors, assigning a fresh opaque point identity per
	// chunk. Content equality never deduplicates. sparse may be nil for dense
	// corpora; when present it must be positionally aligned with chunks.
	Upsert(ctx context.Context, corpusID string, chunks []Chunk, dense [][]float32, sparse []SparseVector) error

	// Query executes a similarity search, descending by score.
	Query(ctx context.Context, corpusID string, q IndexQuery) ([]RetrievedResult, error)

	// ListChunksByDocument returns a document's stored chunks in sequence order,
	// capped at limit (0 = no cap). Used by compare/summarize, which need
	// content rather than similarity.
	ListChunksByDocument(ctx context.Context, corpusID, documentID string, limit int) ([]Chunk, error)

	// DeleteByDocument removes all chunks of one document, leaving the rest of
	// the corpus untouched.
	DeleteByDocument(ctx context.Context, corpusID, documentID string) error
}
