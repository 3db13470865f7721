package domain

import "time"

// ChunkType classifies the origin of a chunk within its source document.
type ChunkType string

const (
	ChunkTypeAbstract      ChunkType = "abstract"
	ChunkTypeBody          ChunkType = "body"
	ChunkTypeTable         ChunkType = "table"
	ChunkTypeFigureCaption ChunkType = "figure_caption"
)

// DefaultPageNumber is used when the converter cannot report page positions.
// Page tracking is best-effort; see the converter contract.
const DefaultPageNumber = 1

// Chunk is a single retrievable unit of a document. Immutable once created.
// Identity is assigned by the vector index at store time, never derived from
// content, so duplicate texts remain distinct points.
type Chunk struct {
	DocumentID    string
	CitationKey   string
	Text          string
	Type          ChunkType
	PageNumber    int
	SequenceIndex int
	Metadata      map[string]string
}

// SearchMode fixes the vector configuration of a corpus for its lifetime.
type SearchMode string

const (
	// SearchModeDense stores dense vectors only.
	SearchModeDense SearchMode = "dense"
	// SearchModeHybrid stores dense plus sparse vectors and enables RRF fusion.
	SearchModeHybrid SearchMode = "hybrid"
)

// Corpus is a named, independently lifecycle-managed set of ingested documents
// and their indexed chunk vectors.
type Corpus struct {
	ID            string
	Name          string
	Mode          SearchMode
	VectorDim     int
	DocumentCount int
	CreatedAt     time.Time
}

// SparseVector is a variable-support (index, value) embedding used for
// term-weighted search. Indices are unique; no ordering is implied.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// RetrievedResult is one scored chunk returned by a query. Ephemeral,
// never persisted.
type RetrievedResult struct {
	Chunk Chunk
	Score float32
	// PointID is the opaque identity the index assigned at store time.
	PointID string
}

// CitationKeyOf returns the vocabulary token under which a result may be
// cited: the chunk's citation key, falling back to its document id.
func (r RetrievedResult) CitationKeyOf() string {
	if r.Chunk.CitationKey != "" {
		return r.Chunk.CitationKey
	}
	return r.Chunk.DocumentID
}
