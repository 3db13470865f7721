package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scholarag/internal/domain"
)

const (
	answerTemperature = 0.3
	defaultWordTarget = 500
)

// AnswerInput carries a query and its retrieved results into generation.
type AnswerInput struct {
	CorpusID string
	Query    string
	Results  []domain.RetrievedResult
	// WordTarget is the approximate desired answer length in words. Advisory,
	// also used as the generation token budget.
	WordTarget int
}

// AnswerOutput is the generated answer plus the citation map covering every
// resolvable citation key among the results.
type AnswerOutput struct {
	Answer string
	// Citations maps citation key to bibliographic record. Keys whose record
	// cannot be resolved are omitted; their chunks remain in the results.
	Citations map[string]domain.BibliographicRecord
}

// AnswerUsecase assembles the citation-bound prompt and generates the answer.
type AnswerUsecase interface {
	Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error)
}

type answerUsecase struct {
	promptBuilder PromptBuilder
	llm           domain.LLMClient
	resolver      domain.MetadataResolver
	logger        *slog.Logger
}

func NewAnswerUsecase(
	promptBuilder PromptBuilder,
	llm domain.LLMClient,
	resolver domain.MetadataResolver,
	logger *slog.Logger,
) AnswerUsecase {
	return &answerUsecase{
		promptBuilder: promptBuilder,
		llm:           llm,
		resolver:      resolver,
		logger:        logger,
	}
}

func (u *answerUsecase) Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidArgument)
	}

	// Nothing retrieved: return empty answer and map without touching the
	// generator.
	if len(input.Results) == 0 {
		return &AnswerOutput{Answer: "", Citations: map[string]domain.BibliographicRecord{}}, nil
	}

	wordTarget := input.WordTarget
	if wordTarget <= 0 {
		wordTarget = defaultWordTarget
	}

	keys := distinctKeys(input.Results)
	prompt := u.promptBuilder.Build(AnswerPromptInput{
		Query:      input.Query,
		Keys:       keys,
		Excerpts:   sanitizedExcerpts(input.Results),
		WordTarget: wordTarget,
	})

	answer, err := u.llm.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature: answerTemperature,
		MaxTokens:   wordTarget,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	if strings.Contains(strings.ToLower(answer), strings.ToLower(RefusalPhrase)) {
		u.logger.Info("answer_refused",
			slog.String("corpus_id", input.CorpusID),
			slog.Int("excerpt_count", len(input.Results)))
		answer = RefusalReplacement
	}

	citations, err := u.buildCitationMap(ctx, input.CorpusID, keys, input.Results)
	if err != nil {
		return nil, err
	}

	return &AnswerOutput{Answer: answer, Citations: citations}, nil
}

// buildCitationMap resolves the bibliographic record of every distinct
// citation key. A key with no resolvable record is omitted; the map may be
// smaller than the key set but never larger.
func (u *answerUsecase) buildCitationMap(
	ctx context.Context,
	corpusID string,
	keys []string,
	results []domain.RetrievedResult,
) (map[string]domain.BibliographicRecord, error) {
	documentByKey := make(map[string]string, len(keys))
	for _, r := range results {
		key := r.CitationKeyOf()
		if _, ok := documentByKey[key]; !ok {
			documentByKey[key] = r.Chunk.DocumentID
		}
	}

	citations := make(map[string]domain.BibliographicRecord, len(keys))
	for _, key := range keys {
		record, err := u.resolver.Resolve(ctx, corpusID, documentByKey[key])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve citation %q: %w", key, err)
		}
		if record == nil {
			u.logger.Debug("citation_metadata_missing",
				slog.String("corpus_id", corpusID),
				slog.String("citation_key", key))
			continue
		}
		citations[key] = *record
	}
	return citations, nil
}
