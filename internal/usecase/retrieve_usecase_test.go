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

func denseCorpus() *domain.Corpus {
	return &domain.Corpus{ID: "papers", Name: "Papers", Mode: domain.SearchModeDense, VectorDim: 4}
}

func hybridCorpus() *domain.Corpus {
	return &domain.Corpus{ID: "papers", Name: "Papers", Mode: domain.SearchModeHybrid, VectorDim: 4}
}

func TestRetrieveUsecase_EmptyQueryRejectedBeforeEncoding(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)

	uc := usecase.NewRetrieveUsecase(index, encoder, nil, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID: "papers",
		Query:    "   \t\n",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	encoder.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
	index.AssertNotCalled(t, "GetCorpus", mock.Anything, mock.Anything)
}

func TestRetrieveUsecase_DenseSearch(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)

	embedding := []float32{0.1, 0.2, 0.3, 0.4}
	index.On("GetCorpus", mock.Anything, "papers").Return(denseCorpus(), nil)
	encoder.On("Encode", mock.Anything, []string{"what is attention"}).
		Return([][]float32{embedding}, nil)
	index.On("Query", mock.Anything, "papers", mock.MatchedBy(func(q domain.IndexQuery) bool {
		return !q.UseFusion && q.Sparse == nil && q.Limit == 5
	})).Return([]domain.RetrievedResult{
		{Chunk: domain.Chunk{DocumentID: "doc-1", Text: "attention is all you need"}, Score: 0.92},
	}, nil)

	uc := usecase.NewRetrieveUsecase(index, encoder, nil, testLogger(t))

	results, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID: "papers",
		Query:    "what is attention",
		Limit:    5,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].Chunk.DocumentID)
	index.AssertExpectations(t)
	encoder.AssertExpectations(t)
}

func TestRetrieveUsecase_HybridFallsBackToDenseOnDenseCorpus(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)
	sparseEncoder := new(MockSparseEncoder)

	index.On("GetCorpus", mock.Anything, "papers").Return(denseCorpus(), nil)
	encoder.On("Encode", mock.Anything, []string{"query"}).
		Return([][]float32{{0.5, 0.5, 0.5, 0.5}}, nil)
	index.On("Query", mock.Anything, "papers", mock.MatchedBy(func(q domain.IndexQuery) bool {
		return !q.UseFusion && q.Sparse == nil
	})).Return([]domain.RetrievedResult{}, nil)

	uc := usecase.NewRetrieveUsecase(index, encoder, sparseEncoder, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID:  "papers",
		Query:     "query",
		UseHybrid: true,
	})

	require.NoError(t, err)
	sparseEncoder.AssertNotCalled(t, "EncodeSparse", mock.Anything, mock.Anything)
	index.AssertExpectations(t)
}

func TestRetrieveUsecase_HybridFusionOnHybridCorpus(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)
	sparseEncoder := new(MockSparseEncoder)

	sparse := domain.SparseVector{Indices: []uint32{3, 17}, Values: []float32{0.8, 0.2}}
	index.On("GetCorpus", mock.Anything, "papers").Return(hybridCorpus(), nil)
	encoder.On("Encode", mock.Anything, []string{"query"}).
		Return([][]float32{{0.5, 0.5, 0.5, 0.5}}, nil)
	sparseEncoder.On("EncodeSparse", mock.Anything, []string{"query"}).
		Return([]domain.SparseVector{sparse}, nil)
	index.On("Query", mock.Anything, "papers", mock.MatchedBy(func(q domain.IndexQuery) bool {
		return q.UseFusion && q.Sparse != nil && len(q.Sparse.Indices) == 2
	})).Return([]domain.RetrievedResult{}, nil)

	uc := usecase.NewRetrieveUsecase(index, encoder, sparseEncoder, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID:  "papers",
		Query:     "query",
		UseHybrid: true,
	})

	require.NoError(t, err)
	index.AssertExpectations(t)
	sparseEncoder.AssertExpectations(t)
}

func TestRetrieveUsecase_UnknownCorpus(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)

	index.On("GetCorpus", mock.Anything, "missing").
		Return(nil, domain.ErrNotFound)

	uc := usecase.NewRetrieveUsecase(index, encoder, nil, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID: "missing",
		Query:    "query",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	encoder.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
}

func TestRetrieveUsecase_EncoderFailure(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)

	index.On("GetCorpus", mock.Anything, "papers").Return(denseCorpus(), nil)
	encoder.On("Encode", mock.Anything, mock.Anything).
		Return(nil, errors.New("backend down"))

	uc := usecase.NewRetrieveUsecase(index, encoder, nil, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID: "papers",
		Query:    "query",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode query")
	index.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieveUsecase_DocumentFilterPassedThrough(t *testing.T) {
	index := new(MockVectorIndex)
	encoder := new(MockVectorEncoder)

	index.On("GetCorpus", mock.Anything, "papers").Return(denseCorpus(), nil)
	encoder.On("Encode", mock.Anything, mock.Anything).
		Return([][]float32{{0.1, 0.2, 0.3, 0.4}}, nil)
	index.On("Query", mock.Anything, "papers", mock.MatchedBy(func(q domain.IndexQuery) bool {
		return len(q.DocumentIDs) == 2 && q.DocumentIDs[0] == "doc-1" && q.DocumentIDs[1] == "doc-2"
	})).Return([]domain.RetrievedResult{}, nil)

	uc := usecase.NewRetrieveUsecase(index, encoder, nil, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.RetrieveInput{
		CorpusID:    "papers",
		Query:       "query",
		DocumentIDs: []string{"doc-1", "doc-2"},
	})

	require.NoError(t, err)
	index.AssertExpectations(t)
}
