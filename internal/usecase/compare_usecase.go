package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scholarag/internal/domain"
)

// Compare aspects.
const (
	AspectMethodology = "methodology"
	AspectFindings    = "findings"
	AspectAll         = "all"
)

// chunksPerDocument caps how much stored content feeds a comparison or
// summary prompt.
const chunksPerDocument = 10

var aspectInstructions = map[string]string{
	AspectMethodology: "Focus specifically on comparing the research methodologies, experimental designs, and approaches used.",
	AspectFindings:    "Focus specifically on comparing the key findings, results, and conclusions.",
	AspectAll:         "Compare all aspects including methodologies, findings, and implications.",
}

// CompareInput selects documents of one corpus to compare.
type CompareInput struct {
	CorpusID    string
	DocumentIDs []string
	Aspect      string
	WordTarget  int
}

// CompareOutput is the generated comparison plus the metadata of the papers
// involved.
type CompareOutput struct {
	Comparison string
	Papers     []domain.BibliographicRecord
}

// CompareUsecase generates a structured comparison of two or more documents.
type CompareUsecase interface {
	Execute(ctx context.Context, input CompareInput) (*CompareOutput, error)
}

type compareUsecase struct {
	index    domain.VectorIndex
	resolver domain.MetadataResolver
	llm      domain.LLMClient
	logger   *slog.Logger
}

func NewCompareUsecase(
	index domain.VectorIndex,
	resolver domain.MetadataResolver,
	llm domain.LLMClient,
	logger *slog.Logger,
) CompareUsecase {
	return &compareUsecase{index: index, resolver: resolver, llm: llm, logger: logger}
}

func (u *compareUsecase) Execute(ctx context.Context, input CompareInput) (*CompareOutput, error) {
	if len(input.DocumentIDs) < 2 {
		return nil, fmt.Errorf("%w: at least 2 documents are required for comparison, got %d",
			domain.ErrInvalidArgument, len(input.DocumentIDs))
	}

	aspect, ok := aspectInstructions[input.Aspect]
	if !ok {
		aspect = aspectInstructions[AspectAll]
	}
	wordTarget := input.WordTarget
	if wordTarget <= 0 {
		wordTarget = defaultWordTarget
	}

	var papers []domain.BibliographicRecord
	var sections []string
	for i, documentID := range input.DocumentIDs {
		record, err := u.resolver.Resolve(ctx, input.CorpusID, documentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve document %q: %w", documentID, err)
		}
		if record != nil {
			papers = append(papers, *record)
		}

		chunks, err := u.index.ListChunksByDocument(ctx, input.CorpusID, documentID, chunksPerDocument)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			return nil, fmt.Errorf("%w: document %q has no indexed chunks", domain.ErrNotFound, documentID)
		}

		texts := make([]string, len(chunks))
		for j, chunk := range chunks {
			texts[j] = chunk.Text
		}
		// Paper A, Paper B, ...
		label := fmt.Sprintf("Paper %c", 'A'+i)
		sections = append(sections, fmt.Sprintf("%s (%s):\n%s", label, documentID, strings.Join(texts, "\n\n")))
	}

	prompt := fmt.Sprintf(`Compare the following %d research papers. %s

%s

Provide a structured comparison covering:
1. **Similarities**: What do these papers have in common?
2. **Differences**: How do they differ in approach, methods, or conclusions?
3. **Key Insights**: What can we learn from comparing these papers?

Be specific and reference the papers by their labels (Paper A, Paper B, etc.).`,
		len(input.DocumentIDs), aspect, strings.Join(sections, "\n\n---\n\n"))

	comparison, err := u.llm.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature: answerTemperature,
		MaxTokens:   wordTarget,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate comparison: %w", err)
	}

	u.logger.Info("comparison_generated",
		slog.String("corpus_id", input.CorpusID),
		slog.Int("document_count", len(input.DocumentIDs)),
		slog.String("aspect", input.Aspect))

	return &CompareOutput{Comparison: comparison, Papers: papers}, nil
}
