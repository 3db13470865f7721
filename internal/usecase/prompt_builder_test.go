package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"scholarag/internal/usecase"
)

func TestPromptBuilder_AdvertisesOnlyGivenKeys(t *testing.T) {
	builder := usecase.NewPromptBuilder()

	prompt := builder.Build(usecase.AnswerPromptInput{
		Query: "how does attention scale",
		Keys:  []string{"VaswaniAttentionIs2017", "DevlinBertPretraining2019"},
		Excerpts: []usecase.LabeledExcerpt{
			{Key: "VaswaniAttentionIs2017", Text: "attention is quadratic in sequence length"},
			{Key: "DevlinBertPretraining2019", Text: "pretraining uses masked tokens"},
		},
		WordTarget: 400,
	})

	assert.Contains(t, prompt, "Valid citation labels, the ONLY ones you may use: [VaswaniAttentionIs2017], [DevlinBertPretraining2019]")
	assert.Contains(t, prompt, "e.g. [VaswaniAttentionIs2017]")
	assert.Contains(t, prompt, "Question: how does attention scale")
	assert.Contains(t, prompt, "[VaswaniAttentionIs2017]: attention is quadratic in sequence length")
	assert.Contains(t, prompt, "approximately 400 words")
	assert.Contains(t, prompt, usecase.RefusalPhrase)
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestPromptBuilder_NoKeys(t *testing.T) {
	builder := usecase.NewPromptBuilder()

	prompt := builder.Build(usecase.AnswerPromptInput{
		Query:      "anything",
		WordTarget: 100,
	})

	// The citation example falls back to a placeholder label.
	assert.Contains(t, prompt, "e.g. [AuthorTitle2024]")
	assert.NotContains(t, prompt, "[]")
}

func TestPromptBuilder_ExcerptOrderPreserved(t *testing.T) {
	builder := usecase.NewPromptBuilder()

	prompt := builder.Build(usecase.AnswerPromptInput{
		Query:      "q",
		Keys:       []string{"First2020", "Second2021"},
		WordTarget: 100,
		Excerpts: []usecase.LabeledExcerpt{
			{Key: "First2020", Text: "alpha"},
			{Key: "Second2021", Text: "beta"},
			{Key: "First2020", Text: "gamma"},
		},
	})

	alpha := strings.Index(prompt, "[First2020]: alpha")
	beta := strings.Index(prompt, "[Second2021]: beta")
	gamma := strings.Index(prompt, "[First2020]: gamma")
	assert.True(t, alpha >= 0 && beta > alpha && gamma > beta)
}
