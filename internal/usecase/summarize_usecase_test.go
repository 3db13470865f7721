package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scholarag/internal/domain"
	"scholarag/internal/usecase"
)

func TestSummarizeUsecase_RequiresDocuments(t *testing.T) {
	uc := usecase.NewSummarizeUsecase(
		new(MockVectorIndex), new(MockMetadataStore), new(MockLLMClient), testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.SummarizeInput{CorpusID: "papers"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSummarizeUsecase_SummarizesStoredChunks(t *testing.T) {
	index := new(MockVectorIndex)
	resolver := new(MockMetadataStore)
	llm := new(MockLLMClient)

	resolver.On("Resolve", mock.Anything, "papers", "doc-1").
		Return(&domain.BibliographicRecord{DocumentID: "doc-1", Title: "Attention Is All You Need"}, nil)
	index.On("ListChunksByDocument", mock.Anything, "papers", "doc-1", 10).
		Return(storedChunks("doc-1", "intro text", "method text"), nil)

	var capturedPrompt string
	llm.On("Generate", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(opts domain.GenerateOptions) bool {
		return opts.MaxTokens == 200
	})).Run(func(args mock.Arguments) {
		capturedPrompt = args.String(1)
	}).Return("A summary.", nil)

	uc := usecase.NewSummarizeUsecase(index, resolver, llm, testLogger(t))

	out, err := uc.Execute(context.Background(), usecase.SummarizeInput{
		CorpusID:    "papers",
		DocumentIDs: []string{"doc-1"},
		WordTarget:  200,
	})

	require.NoError(t, err)
	assert.Equal(t, "A summary.", out.Summary)
	require.Len(t, out.Papers, 1)

	// Sections are headed by the resolved title and carry the stored text.
	assert.Contains(t, capturedPrompt, "Attention Is All You Need:")
	assert.Contains(t, capturedPrompt, "intro text")
	assert.Contains(t, capturedPrompt, "method text")
	llm.AssertExpectations(t)
}

func TestSummarizeUsecase_MissingRecordFallsBackToDocumentID(t *testing.T) {
	index := new(MockVectorIndex)
	resolver := new(MockMetadataStore)
	llm := new(MockLLMClient)

	resolver.On("Resolve", mock.Anything, "papers", "doc-1").Return(nil, nil)
	index.On("ListChunksByDocument", mock.Anything, "papers", "doc-1", 10).
		Return(storedChunks("doc-1", "text"), nil)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "doc-1:")
	}), mock.Anything).Return("summary", nil)

	uc := usecase.NewSummarizeUsecase(index, resolver, llm, testLogger(t))

	out, err := uc.Execute(context.Background(), usecase.SummarizeInput{
		CorpusID:    "papers",
		DocumentIDs: []string{"doc-1"},
	})

	require.NoError(t, err)
	assert.Empty(t, out.Papers)
	assert.Equal(t, "summary", out.Summary)
}

func TestSummarizeUsecase_DocumentWithoutChunks(t *testing.T) {
	index := new(MockVectorIndex)
	resolver := new(MockMetadataStore)
	llm := new(MockLLMClient)

	resolver.On("Resolve", mock.Anything, "papers", "ghost").Return(nil, nil)
	index.On("ListChunksByDocument", mock.Anything, "papers", "ghost", 10).
		Return([]domain.Chunk{}, nil)

	uc := usecase.NewSummarizeUsecase(index, resolver, llm, testLogger(t))

	_, err := uc.Execute(context.Background(), usecase.SummarizeInput{
		CorpusID:    "papers",
		DocumentIDs: []string{"ghost"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}
