package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"scholarag/internal/domain"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockVectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) CreateCorpus(ctx context.Context, id, name string, denseDim int, mode domain.SearchMode) (*domain.Corpus, error) {
	args := m.Called(ctx, id, name, denseDim, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Corpus), args.Error(1)
}

func (m *MockVectorIndex) GetCorpus(ctx context.Context, id string) (*domain.Corpus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Corpus), args.Error(1)
}

func (m *MockVectorIndex) ListCorpora(ctx context.Context) ([]domain.Corpus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Corpus), args.Error(1)
}

func (m *MockVectorIndex) DeleteCorpus(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVectorIndex) Upsert(ctx context.Context, corpusID string, chunks []domain.Chunk, dense [][]float32, sparse []domain.SparseVector) error {
	return m.Called(ctx, corpusID, chunks, dense, sparse).Error(0)
}

func (m *MockVectorIndex) Query(ctx context.Context, corpusID string, q domain.IndexQuery) ([]domain.RetrievedResult, error) {
	args := m.Called(ctx, corpusID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RetrievedResult), args.Error(1)
}

func (m *MockVectorIndex) ListChunksByDocument(ctx context.Context, corpusID, documentID string, limit int) ([]domain.Chunk, error) {
	args := m.Called(ctx, corpusID, documentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

func (m *MockVectorIndex) DeleteByDocument(ctx context.Context, corpusID, documentID string) error {
	return m.Called(ctx, corpusID, documentID).Error(0)
}

// MockVectorEncoder
type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Version() string {
	return "mock-encoder-v1"
}

// MockSparseEncoder
type MockSparseEncoder struct {
	mock.Mock
}

func (m *MockSparseEncoder) EncodeSparse(ctx context.Context, texts []string) ([]domain.SparseVector, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SparseVector), args.Error(1)
}

// MockLLMClient
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Version() string {
	return "mock-llm-v1"
}

// MockMetadataStore
type MockMetadataStore struct {
	mock.Mock
}

func (m *MockMetadataStore) Resolve(ctx context.Context, corpusID, documentID string) (*domain.BibliographicRecord, error) {
	args := m.Called(ctx, corpusID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BibliographicRecord), args.Error(1)
}

func (m *MockMetadataStore) Save(ctx context.Context, corpusID string, record *domain.BibliographicRecord) error {
	return m.Called(ctx, corpusID, record).Error(0)
}

func (m *MockMetadataStore) Delete(ctx context.Context, corpusID, documentID string) error {
	return m.Called(ctx, corpusID, documentID).Error(0)
}

func (m *MockMetadataStore) DeleteCorpus(ctx context.Context, corpusID string) error {
	return m.Called(ctx, corpusID).Error(0)
}

// MockChunker
type MockChunker struct {
	mock.Mock
}

func (m *MockChunker) Split(text string) ([]string, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockDimensionProber
type MockDimensionProber struct {
	mock.Mock
}

func (m *MockDimensionProber) ProbeDimension(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
