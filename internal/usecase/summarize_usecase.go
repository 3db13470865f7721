package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scholarag/internal/domain"
)

// SummarizeInput selects documents of one corpus to summarize.
type SummarizeInput struct {
	CorpusID    string
	DocumentIDs []string
	WordTarget  int
}

// SummarizeOutput is the generated summary plus paper metadata.
type SummarizeOutput struct {
	Summary string
	Papers  []domain.BibliographicRecord
}

// SummarizeUsecase generates a summary of one or more documents from their
// stored chunks.
type SummarizeUsecase interface {
	Execute(ctx context.Context, input SummarizeInput) (*SummarizeOutput, error)
}

type summarizeUsecase struct {
	index    domain.VectorIndex
	resolver domain.MetadataResolver
	llm      domain.LLMClient
	logger   *slog.Logger
}

func NewSummarizeUsecase(
	index domain.VectorIndex,
	resolver domain.MetadataResolver,
	llm domain.LLMClient,
	logger *slog.Logger,
) SummarizeUsecase {
	return &summarizeUsecase{index: index, resolver: resolver, llm: llm, logger: logger}
}

func (u *summarizeUsecase) Execute(ctx context.Context, input SummarizeInput) (*SummarizeOutput, error) {
	if len(input.DocumentIDs) == 0 {
		return nil, fmt.Errorf("%w: at least 1 document is required", domain.ErrInvalidArgument)
	}
	wordTarget := input.WordTarget
	if wordTarget <= 0 {
		wordTarget = defaultWordTarget
	}

	var papers []domain.BibliographicRecord
	var sections []string
	for _, documentID := range input.DocumentIDs {
		record, err := u.resolver.Resolve(ctx, input.CorpusID, documentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve document %q: %w", documentID, err)
		}

		title := documentID
		if record != nil {
			papers = append(papers, *record)
			title = record.Title
		}

		chunks, err := u.index.ListChunksByDocument(ctx, input.CorpusID, documentID, chunksPerDocument)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			return nil, fmt.Errorf("%w: document %q has no indexed chunks", domain.ErrNotFound, documentID)
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		sections = append(sections, fmt.Sprintf("%s:\n%s", title, strings.Join(texts, "\n\n")))
	}

	prompt := fmt.Sprintf(`Summarize the following research paper content. Cover the motivation,
the approach, and the main results. Be faithful to the text; do not add
external knowledge.

%s

Summary:`, strings.Join(sections, "\n\n---\n\n"))

	summary, err := u.llm.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature: answerTemperature,
		MaxTokens:   wordTarget,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	u.logger.Info("summary_generated",
		slog.String("corpus_id", input.CorpusID),
		slog.Int("document_count", len(input.DocumentIDs)))

	return &SummarizeOutput{Summary: summary, Papers: papers}, nil
}
