package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"scholarag/internal/domain"
)

// sparseVocabDim is the declared dimensionality of the sparsevec column.
// Sparse encoders emit unbounded term ids; they are folded into this space.
const sparseVocabDim = 1 << 30

const corpusCacheSize = 128

// PgVectorIndex implements domain.VectorIndex on PostgreSQL with the pgvector
// extension. Dense vectors use cosine distance, sparse vectors inner product;
// hybrid queries run both legs and fuse them with RRF in process.
type PgVectorIndex struct {
	pool   *pgxpool.Pool
	rrfK   float64
	logger *slog.Logger

	// corpusCache keeps corpus metadata lookups O(1) on the hot upsert and
	// query paths. Entries are dropped on corpus deletion.
	corpusCache *lru.Cache[string, domain.Corpus]
}

// NewPgVectorIndex creates the index adapter. rrfK <= 0 selects DefaultRRFK.
func NewPgVectorIndex(pool *pgxpool.Pool, rrfK float64, logger *slog.Logger) (*PgVectorIndex, error) {
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	cache, err := lru.New[string, domain.Corpus](corpusCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus cache: %w", err)
	}
	return &PgVectorIndex{pool: pool, rrfK: rrfK, logger: logger, corpusCache: cache}, nil
}

// EnsureSchema creates the extension and tables when missing.
func (x *PgVectorIndex) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS corpora (
			id          text PRIMARY KEY,
			name        text NOT NULL,
			mode        text NOT NULL,
			vector_dim  int  NOT NULL,
			created_at  timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id               uuid PRIMARY KEY,
			corpus_id        text NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
			document_id      text NOT NULL,
			citation_key     text NOT NULL,
			content          text NOT NULL,
			chunk_type       text NOT NULL,
			page_number      int  NOT NULL,
			sequence_index   int  NOT NULL,
			metadata         jsonb,
			embedding        vector,
			sparse_embedding sparsevec,
			created_at       timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS chunks_corpus_document_idx ON chunks (corpus_id, document_id)`,
	}
	for _, stmt := range stmts {
		if _, err := x.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to ensure schema: %v", domain.ErrUnavailable, err)
		}
	}
	return nil
}

func (x *PgVectorIndex) CreateCorpus(ctx context.Context, id, name string, denseDim int, mode domain.SearchMode) (*domain.Corpus, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: corpus id is required", domain.ErrInvalidArgument)
	}
	if denseDim <= 0 {
		return nil, fmt.Errorf("%w: dense dimension must be positive, got %d", domain.ErrInvalidArgument, denseDim)
	}
	if mode != domain.SearchModeDense && mode != domain.SearchModeHybrid {
		return nil, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidArgument, mode)
	}

	now := time.Now().UTC()
	_, err := x.pool.Exec(ctx,
		`INSERT INTO corpora (id, name, mode, vector_dim, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, string(mode), denseDim, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: corpus %q", domain.ErrAlreadyExists, id)
		}
		return nil, fmt.Errorf("%w: failed to create corpus: %v", domain.ErrUnavailable, err)
	}

	corpus := domain.Corpus{ID: id, Name: name, Mode: mode, VectorDim: denseDim, CreatedAt: now}
	x.corpusCache.Add(id, corpus)

	x.logger.Info("corpus_created",
		slog.String("corpus_id", id),
		slog.String("mode", string(mode)),
		slog.Int("vector_dim", denseDim))
	return &corpus, nil
}

func (x *PgVectorIndex) GetCorpus(ctx context.Context, id string) (*domain.Corpus, error) {
	corpus, err := x.corpusMeta(ctx, id)
	if err != nil {
		return nil, err
	}

	var docCount int
	err = x.pool.QueryRow(ctx,
		`SELECT count(DISTINCT document_id) FROM chunks WHERE corpus_id = $1`, id,
	).Scan(&docCount)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count documents: %v", domain.ErrUnavailable, err)
	}
	corpus.DocumentCount = docCount
	return corpus, nil
}

// corpusMeta answers mode and dimension checks from the primary-key row,
// served from cache when possible.
func (x *PgVectorIndex) corpusMeta(ctx context.Context, id string) (*domain.Corpus, error) {
	if cached, ok := x.corpusCache.Get(id); ok {
		c := cached
		return &c, nil
	}

	var c domain.Corpus
	var mode string
	err := x.pool.QueryRow(ctx,
		`SELECT id, name, mode, vector_dim, created_at FROM corpora WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &mode, &c.VectorDim, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: corpus %q", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get corpus: %v", domain.ErrUnavailable, err)
	}
	c.Mode = domain.SearchMode(mode)

	x.corpusCache.Add(id, c)
	return &c, nil
}

func (x *PgVectorIndex) ListCorpora(ctx context.Context) ([]domain.Corpus, error) {
	rows, err := x.pool.Query(ctx, `
		SELECT c.id, c.name, c.mode, c.vector_dim, c.created_at,
		       (SELECT count(DISTINCT document_id) FROM chunks WHERE corpus_id = c.id)
		FROM corpora c
		ORDER BY c.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list corpora: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var corpora []domain.Corpus
	for rows.Next() {
		var c domain.Corpus
		var mode string
		if err := rows.Scan(&c.ID, &c.Name, &mode, &c.VectorDim, &c.CreatedAt, &c.DocumentCount); err != nil {
			return nil, fmt.Errorf("failed to scan corpus: %w", err)
		}
		c.Mode = domain.SearchMode(mode)
		corpora = append(corpora, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return corpora, nil
}

func (x *PgVectorIndex) DeleteCorpus(ctx context.Context, id string) error {
	tag, err := x.pool.Exec(ctx, `DELETE FROM corpora WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete corpus: %v", domain.ErrUnavailable, err)
	}
	x.corpusCache.Remove(id)
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: corpus %q", domain.ErrNotFound, id)
	}
	x.logger.Info("corpus_deleted", slog.String("corpus_id", id))
	return nil
}

func (x *PgVectorIndex) Upsert(ctx context.Context, corpusID string, chunks []domain.Chunk, dense [][]float32, sparse []domain.SparseVector) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(dense) != len(chunks) {
		return fmt.Errorf("%w: %d chunks but %d dense vectors", domain.ErrInvalidArgument, len(chunks), len(dense))
	}
	if sparse != nil && len(sparse) != len(chunks) {
		return fmt.Errorf("%w: %d chunks but %d sparse vectors", domain.ErrInvalidArgument, len(chunks), len(sparse))
	}

	corpus, err := x.corpusMeta(ctx, corpusID)
	if err != nil {
		return err
	}
	for i, v := range dense {
		if len(v) != corpus.VectorDim {
			return fmt.Errorf("%w: vector %d has dimension %d, corpus expects %d",
				domain.ErrInvalidArgument, i, len(v), corpus.VectorDim)
		}
	}

	now := time.Now().UTC()
	rows := make([][]interface{}, len(chunks))
	for i, chunk := range chunks {
		var sparseVal interface{}
		if sparse != nil {
			sv := toPgSparse(sparse[i])
			sparseVal = sv
		}
		// Fresh point identity per call: re-upserting identical content
		// creates a new point, never an overwrite.
		rows[i] = []interface{}{
			uuid.New(),
			corpusID,
			chunk.DocumentID,
			chunk.CitationKey,
			chunk.Text,
			string(chunk.Type),
			chunk.PageNumber,
			chunk.SequenceIndex,
			chunk.Metadata,
			pgvector.NewVector(dense[i]),
			sparseVal,
			now,
		}
	}

	_, err = x.pool.CopyFrom(
		ctx,
		pgx.Identifier{"chunks"},
		[]string{"id", "corpus_id", "document_id", "citation_key", "content", "chunk_type",
			"page_number", "sequence_index", "metadata", "embedding", "sparse_embedding", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert chunks: %v", domain.ErrUnavailable, err)
	}

	x.logger.Info("chunks_upserted",
		slog.String("corpus_id", corpusID),
		slog.Int("count", len(chunks)),
		slog.Bool("sparse", sparse != nil))
	return nil
}

func (x *PgVectorIndex) Query(ctx context.Context, corpusID string, q domain.IndexQuery) ([]domain.RetrievedResult, error) {
	corpus, err := x.corpusMeta(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	if len(q.Dense) != corpus.VectorDim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, corpus expects %d",
			domain.ErrInvalidArgument, len(q.Dense), corpus.VectorDim)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	fusion := q.UseFusion && corpus.Mode == domain.SearchModeHybrid && q.Sparse != nil
	if !fusion {
		return x.denseSearch(ctx, corpusID, q.Dense, q.DocumentIDs, limit)
	}

	denseResults, err := x.denseSearch(ctx, corpusID, q.Dense, q.DocumentIDs, limit)
	if err != nil {
		return nil, err
	}
	sparseResults, err := x.sparseSearch(ctx, corpusID, *q.Sparse, q.DocumentIDs, limit)
	if err != nil {
		return nil, err
	}

	fused := fuseRRF(denseResults, sparseResults, x.rrfK, limit)
	x.logger.Info("hybrid_rrf_fusion_completed",
		slog.String("corpus_id", corpusID),
		slog.Int("dense_count", len(denseResults)),
		slog.Int("sparse_count", len(sparseResults)),
		slog.Int("fused_count", len(fused)))
	return fused, nil
}

func (x *PgVectorIndex) denseSearch(ctx context.Context, corpusID string, vec []float32, documentIDs []string, limit int) ([]domain.RetrievedResult, error) {
	query := `
		SELECT id, document_id, citation_key, content, chunk_type, page_number, sequence_index, metadata,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE corpus_id = $2`
	args := []interface{}{pgvector.NewVector(vec), corpusID}
	if len(documentIDs) > 0 {
		query += ` AND document_id = ANY($3)`
		args = append(args, documentIDs)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, limit)

	return x.scanResults(ctx, query, args)
}

func (x *PgVectorIndex) sparseSearch(ctx context.Context, corpusID string, sv domain.SparseVector, documentIDs []string, limit int) ([]domain.RetrievedResult, error) {
	query := `
		SELECT id, document_id, citation_key, content, chunk_type, page_number, sequence_index, metadata,
		       -(sparse_embedding <#> $1) AS score
		FROM chunks
		WHERE corpus_id = $2 AND sparse_embedding IS NOT NULL`
	args := []interface{}{toPgSparse(sv), corpusID}
	if len(documentIDs) > 0 {
		query += ` AND document_id = ANY($3)`
		args = append(args, documentIDs)
	}
	query += fmt.Sprintf(` ORDER BY sparse_embedding <#> $1 LIMIT %d`, limit)

	return x.scanResults(ctx, query, args)
}

func (x *PgVectorIndex) scanResults(ctx context.Context, query string, args []interface{}) ([]domain.RetrievedResult, error) {
	rows, err := x.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search chunks: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var results []domain.RetrievedResult
	for rows.Next() {
		var r domain.RetrievedResult
		var pointID uuid.UUID
		var chunkType string
		var score float64
		if err := rows.Scan(&pointID, &r.Chunk.DocumentID, &r.Chunk.CitationKey, &r.Chunk.Text,
			&chunkType, &r.Chunk.PageNumber, &r.Chunk.SequenceIndex, &r.Chunk.Metadata, &score); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.PointID = pointID.String()
		r.Chunk.Type = domain.ChunkType(chunkType)
		r.Score = float32(score)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (x *PgVectorIndex) ListChunksByDocument(ctx context.Context, corpusID, documentID string, limit int) ([]domain.Chunk, error) {
	if _, err := x.corpusMeta(ctx, corpusID); err != nil {
		return nil, err
	}

	query := `
		SELECT document_id, citation_key, content, chunk_type, page_number, sequence_index, metadata
		FROM chunks
		WHERE corpus_id = $1 AND document_id = $2
		ORDER BY sequence_index ASC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := x.pool.Query(ctx, query, corpusID, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list chunks: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var chunkType string
		if err := rows.Scan(&c.DocumentID, &c.CitationKey, &c.Text, &chunkType,
			&c.PageNumber, &c.SequenceIndex, &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		c.Type = domain.ChunkType(chunkType)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return chunks, nil
}

func (x *PgVectorIndex) DeleteByDocument(ctx context.Context, corpusID, documentID string) error {
	if _, err := x.corpusMeta(ctx, corpusID); err != nil {
		return err
	}
	tag, err := x.pool.Exec(ctx,
		`DELETE FROM chunks WHERE corpus_id = $1 AND document_id = $2`, corpusID, documentID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete document chunks: %v", domain.ErrUnavailable, err)
	}
	x.logger.Info("document_chunks_deleted",
		slog.String("corpus_id", corpusID),
		slog.String("document_id", documentID),
		slog.Int64("removed", tag.RowsAffected()))
	return nil
}

// toPgSparse folds unbounded sparse term ids into the sparsevec vocabulary.
func toPgSparse(sv domain.SparseVector) pgvector.SparseVector {
	elements := make(map[int32]float32, len(sv.Indices))
	for i, idx := range sv.Indices {
		elements[int32(idx%sparseVocabDim)] = sv.Values[i]
	}
	return pgvector.NewSparseVectorFromMap(elements, sparseVocabDim)
}

var _ domain.VectorIndex = (*PgVectorIndex)(nil)
