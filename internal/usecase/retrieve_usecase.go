package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scholarag/internal/domain"
)

// RetrieveInput defines one retrieval request against a corpus.
type RetrieveInput struct {
	CorpusID string
	Query    string
	Limit    int
	// DocumentIDs restricts the search to any of these documents.
	DocumentIDs []string
	// UseHybrid requests dense+sparse fusion. Against a dense-only corpus the
	// request silently degrades to dense search: corpora are long-lived and
	// client defaults may lag corpus configuration.
	UseHybrid bool
}

// RetrieveUsecase computes query embeddings and runs the index search.
type RetrieveUsecase interface {
	Execute(ctx context.Context, input RetrieveInput) ([]domain.RetrievedResult, error)
}

type retrieveUsecase struct {
	index         domain.VectorIndex
	encoder       domain.VectorEncoder
	sparseEncoder domain.SparseEncoder
	logger        *slog.Logger
}

// NewRetrieveUsecase creates the retrieval orchestrator. sparseEncoder may be
// nil when no hybrid corpora are served.
func NewRetrieveUsecase(
	index domain.VectorIndex,
	encoder domain.VectorEncoder,
	sparseEncoder domain.SparseEncoder,
	logger *slog.Logger,
) RetrieveUsecase {
	return &retrieveUsecase{
		index:         index,
		encoder:       encoder,
		sparseEncoder: sparseEncoder,
		logger:        logger,
	}
}

func (u *retrieveUsecase) Execute(ctx context.Context, input RetrieveInput) ([]domain.RetrievedResult, error) {
	// Rejected before any embedding call to avoid wasted backend round trips.
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidArgument)
	}

	corpus, err := u.index.GetCorpus(ctx, input.CorpusID)
	if err != nil {
		return nil, err
	}

	embeddings, err := u.encoder.Encode(ctx, []string{input.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query embedding, got %d", domain.ErrUnavailable, len(embeddings))
	}

	query := domain.IndexQuery{
		Dense:       embeddings[0],
		Limit:       input.Limit,
		DocumentIDs: input.DocumentIDs,
	}

	if input.UseHybrid {
		if corpus.Mode == domain.SearchModeHybrid && u.sparseEncoder != nil {
			sparse, err := u.sparseEncoder.EncodeSparse(ctx, []string{input.Query})
			if err != nil {
				return nil, fmt.Errorf("failed to encode sparse query: %w", err)
			}
			if len(sparse) != 1 {
				return nil, fmt.Errorf("%w: expected 1 sparse embedding, got %d", domain.ErrUnavailable, len(sparse))
			}
			query.Sparse = &sparse[0]
			query.UseFusion = true
		} else {
			u.logger.Debug("hybrid_fallback_to_dense",
				slog.String("corpus_id", input.CorpusID),
				slog.String("corpus_mode", string(corpus.Mode)))
		}
	}

	results, err := u.index.Query(ctx, input.CorpusID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search corpus: %w", err)
	}

	u.logger.Info("retrieval_completed",
		slog.String("corpus_id", input.CorpusID),
		slog.Int("result_count", len(results)),
		slog.Bool("fusion", query.UseFusion))
	return results, nil
}
