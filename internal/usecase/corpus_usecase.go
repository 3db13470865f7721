package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"scholarag/internal/domain"
)

// DimensionProber discovers the embedding backend's dense vector dimension.
// Probed once at corpus creation; the dimension is fixed for the corpus's
// lifetime.
type DimensionProber interface {
	ProbeDimension(ctx context.Context) (int, error)
}

// CorpusUsecase covers corpus lifecycle operations.
type CorpusUsecase interface {
	Create(ctx context.Context, id, name string, mode domain.SearchMode) (*domain.Corpus, error)
	Get(ctx context.Context, id string) (*domain.Corpus, error)
	List(ctx context.Context) ([]domain.Corpus, error)
	Delete(ctx context.Context, id string) error
}

type corpusUsecase struct {
	index  domain.VectorIndex
	prober DimensionProber
	store  interface {
		DeleteCorpus(ctx context.Context, corpusID string) error
	}
	logger *slog.Logger
}

func NewCorpusUsecase(
	index domain.VectorIndex,
	prober DimensionProber,
	store interface {
		DeleteCorpus(ctx context.Context, corpusID string) error
	},
	logger *slog.Logger,
) CorpusUsecase {
	return &corpusUsecase{index: index, prober: prober, store: store, logger: logger}
}

func (u *corpusUsecase) Create(ctx context.Context, id, name string, mode domain.SearchMode) (*domain.Corpus, error) {
	if mode == "" {
		mode = domain.SearchModeDense
	}

	dim, err := u.prober.ProbeDimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to probe embedding dimension: %w", err)
	}

	corpus, err := u.index.CreateCorpus(ctx, id, name, dim, mode)
	if err != nil {
		return nil, err
	}
	return corpus, nil
}

func (u *corpusUsecase) Get(ctx context.Context, id string) (*domain.Corpus, error) {
	return u.index.GetCorpus(ctx, id)
}

func (u *corpusUsecase) List(ctx context.Context) ([]domain.Corpus, error) {
	return u.index.ListCorpora(ctx)
}

func (u *corpusUsecase) Delete(ctx context.Context, id string) error {
	if err := u.index.DeleteCorpus(ctx, id); err != nil {
		return err
	}
	if err := u.store.DeleteCorpus(ctx, id); err != nil {
		u.logger.Warn("corpus_metadata_cleanup_failed",
			slog.String("corpus_id", id),
			slog.String("error", err.Error()))
	}
	return nil
}
