package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"scholarag/internal/domain"
)

// IngestInput is one document to index into a corpus.
type IngestInput struct {
	CorpusID   string
	DocumentID string
	Text       string
	// Bibliographic metadata from the conversion step. Title falls back to
	// the document id when empty.
	Title           string
	Authors         []string
	Abstract        string
	PublicationDate string
	Extra           map[string]string
}

// IngestOutput summarizes one completed ingestion.
type IngestOutput struct {
	DocumentID    string
	CitationKey   string
	ChunksCreated int
}

// IngestUsecase chunks a document, embeds the chunks, and stores vectors
// plus the bibliographic record.
type IngestUsecase interface {
	Execute(ctx context.Context, input IngestInput) (*IngestOutput, error)
	DeleteDocument(ctx context.Context, corpusID, documentID string) error
}

type ingestUsecase struct {
	index         domain.VectorIndex
	chunker       domain.Chunker
	encoder       domain.VectorEncoder
	sparseEncoder domain.SparseEncoder
	store         domain.MetadataStore
	logger        *slog.Logger
}

// NewIngestUsecase wires the ingestion write path. sparseEncoder may be nil
// when no hybrid corpora are served.
func NewIngestUsecase(
	index domain.VectorIndex,
	chunker domain.Chunker,
	encoder domain.VectorEncoder,
	sparseEncoder domain.SparseEncoder,
	store domain.MetadataStore,
	logger *slog.Logger,
) IngestUsecase {
	return &ingestUsecase{
		index:         index,
		chunker:       chunker,
		encoder:       encoder,
		sparseEncoder: sparseEncoder,
		store:         store,
		logger:        logger,
	}
}

func (u *ingestUsecase) Execute(ctx context.Context, input IngestInput) (*IngestOutput, error) {
	if input.DocumentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: document text is empty", domain.ErrInvalidArgument)
	}

	corpus, err := u.index.GetCorpus(ctx, input.CorpusID)
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = input.DocumentID
	}
	year := domain.YearFromDate(input.PublicationDate)
	citationKey := domain.CitationKeyFor(title, input.Authors, year)

	// The references tail is kept as document metadata, never chunked.
	body, references := domain.SplitReferences(input.Text)

	texts, err := u.chunker.Split(body)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID:    input.DocumentID,
			CitationKey:   citationKey,
			Text:          text,
			Type:          domain.ChunkTypeBody,
			PageNumber:    domain.DefaultPageNumber,
			SequenceIndex: i,
			Metadata:      map[string]string{"chunk_index": strconv.Itoa(i)},
		}
	}

	hybrid := corpus.Mode == domain.SearchModeHybrid && u.sparseEncoder != nil

	// Dense and sparse batch embedding run concurrently. Both calls preserve
	// input order, which the zip below relies on.
	var dense [][]float32
	var sparse []domain.SparseVector
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectors, err := u.encoder.Encode(gctx, texts)
		if err != nil {
			return fmt.Errorf("failed to encode chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: requested %d embeddings, got %d", domain.ErrUnavailable, len(texts), len(vectors))
		}
		dense = vectors
		return nil
	})
	if hybrid {
		g.Go(func() error {
			vectors, err := u.sparseEncoder.EncodeSparse(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to encode sparse chunks: %w", err)
			}
			if len(vectors) != len(texts) {
				return fmt.Errorf("%w: requested %d sparse embeddings, got %d", domain.ErrUnavailable, len(texts), len(vectors))
			}
			sparse = vectors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := u.index.Upsert(ctx, input.CorpusID, chunks, dense, sparse); err != nil {
		return nil, err
	}

	record := &domain.BibliographicRecord{
		DocumentID:      input.DocumentID,
		CitationKey:     citationKey,
		Title:           title,
		Authors:         input.Authors,
		Year:            year,
		Abstract:        input.Abstract,
		PublicationDate: input.PublicationDate,
		References:      references,
		Extra:           input.Extra,
	}
	if err := u.store.Save(ctx, input.CorpusID, record); err != nil {
		return nil, fmt.Errorf("failed to save bibliographic record: %w", err)
	}

	u.logger.Info("document_ingested",
		slog.String("corpus_id", input.CorpusID),
		slog.String("document_id", input.DocumentID),
		slog.String("citation_key", citationKey),
		slog.Int("chunk_count", len(chunks)),
		slog.Bool("hybrid", hybrid))

	return &IngestOutput{
		DocumentID:    input.DocumentID,
		CitationKey:   citationKey,
		ChunksCreated: len(chunks),
	}, nil
}

func (u *ingestUsecase) DeleteDocument(ctx context.Context, corpusID, documentID string) error {
	if err := u.index.DeleteByDocument(ctx, corpusID, documentID); err != nil {
		return err
	}
	if err := u.store.Delete(ctx, corpusID, documentID); err != nil {
		return err
	}
	return nil
}
