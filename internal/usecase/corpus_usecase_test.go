package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scholarag/internal/domain"
	"scholarag/internal/usecase"
)

func TestCorpusUsecase_CreateProbesDimension(t *testing.T) {
	index := new(MockVectorIndex)
	prober := new(MockDimensionProber)
	store := new(MockMetadataStore)

	prober.On("ProbeDimension", mock.Anything).Return(1024, nil)
	index.On("CreateCorpus", mock.Anything, "papers", "Papers", 1024, domain.SearchModeHybrid).
		Return(&domain.Corpus{ID: "papers", Name: "Papers", Mode: domain.SearchModeHybrid, VectorDim: 1024}, nil)

	uc := usecase.NewCorpusUsecase(index, prober, store, testLogger(t))

	corpus, err := uc.Create(context.Background(), "papers", "Papers", domain.SearchModeHybrid)

	require.NoError(t, err)
	assert.Equal(t, 1024, corpus.VectorDim)
	index.AssertExpectations(t)
	prober.AssertExpectations(t)
}

func TestCorpusUsecase_CreateDefaultsToDense(t *testing.T) {
	index := new(MockVectorIndex)
	prober := new(MockDimensionProber)

	prober.On("ProbeDimension", mock.Anything).Return(768, nil)
	index.On("CreateCorpus", mock.Anything, "papers", "Papers", 768, domain.SearchModeDense).
		Return(&domain.Corpus{ID: "papers", Mode: domain.SearchModeDense, VectorDim: 768}, nil)

	uc := usecase.NewCorpusUsecase(index, prober, new(MockMetadataStore), testLogger(t))

	corpus, err := uc.Create(context.Background(), "papers", "Papers", "")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchModeDense, corpus.Mode)
	index.AssertExpectations(t)
}

func TestCorpusUsecase_CreateProbeFailure(t *testing.T) {
	index := new(MockVectorIndex)
	prober := new(MockDimensionProber)

	prober.On("ProbeDimension", mock.Anything).Return(0, domain.ErrUnavailable)

	uc := usecase.NewCorpusUsecase(index, prober, new(MockMetadataStore), testLogger(t))

	_, err := uc.Create(context.Background(), "papers", "Papers", domain.SearchModeDense)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	index.AssertNotCalled(t, "CreateCorpus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCorpusUsecase_CreateDuplicate(t *testing.T) {
	index := new(MockVectorIndex)
	prober := new(MockDimensionProber)

	prober.On("ProbeDimension", mock.Anything).Return(768, nil)
	index.On("CreateCorpus", mock.Anything, "papers", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrAlreadyExists)

	uc := usecase.NewCorpusUsecase(index, prober, new(MockMetadataStore), testLogger(t))

	_, err := uc.Create(context.Background(), "papers", "Papers", domain.SearchModeDense)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCorpusUsecase_DeleteCleansMetadata(t *testing.T) {
	index := new(MockVectorIndex)
	store := new(MockMetadataStore)

	index.On("DeleteCorpus", mock.Anything, "papers").Return(nil)
	store.On("DeleteCorpus", mock.Anything, "papers").Return(nil)

	uc := usecase.NewCorpusUsecase(index, new(MockDimensionProber), store, testLogger(t))

	require.NoError(t, uc.Delete(context.Background(), "papers"))
	index.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestCorpusUsecase_DeleteToleratesMetadataCleanupFailure(t *testing.T) {
	index := new(MockVectorIndex)
	store := new(MockMetadataStore)

	index.On("DeleteCorpus", mock.Anything, "papers").Return(nil)
	store.On("DeleteCorpus", mock.Anything, "papers").Return(errors.New("disk gone"))

	uc := usecase.NewCorpusUsecase(index, new(MockDimensionProber), store, testLogger(t))

	// Vectors are gone; a leaked metadata directory is logged, not fatal.
	require.NoError(t, uc.Delete(context.Background(), "papers"))
}

func TestCorpusUsecase_DeleteIndexFailure(t *testing.T) {
	index := new(MockVectorIndex)
	store := new(MockMetadataStore)

	index.On("DeleteCorpus", mock.Anything, "missing").Return(domain.ErrNotFound)

	uc := usecase.NewCorpusUsecase(index, new(MockDimensionProber), store, testLogger(t))

	err := uc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "DeleteCorpus", mock.Anything, mock.Anything)
}
