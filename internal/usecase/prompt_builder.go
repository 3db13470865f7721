package usecase

import (
	"fmt"
	"strings"

	"scholarag/internal/domain"
)

// RefusalPhrase is the fixed phrase the generation prompt instructs the model
// to emit verbatim when the excerpts cannot answer the question. Detected
// case-insensitively and rewritten before reaching the user.
const RefusalPhrase = "Sorry, I do not know the answer for this"

// RefusalReplacement is the neutral user-facing message substituted for a
// model refusal.
const RefusalReplacement = "The retrieved passages do not contain enough information to answer " +
	"this question. Try broadening your query or selecting different papers."

// AnswerPromptInput feeds the citation-bound answer prompt.
type AnswerPromptInput struct {
	Query string
	// Keys is the complete citation vocabulary, in order of first appearance
	// among the retrieved results. The prompt advertises exactly this set.
	Keys []string
	// Excerpts are the sanitized chunk texts, positionally aligned with the
	// key that labels each excerpt.
	Excerpts []LabeledExcerpt
	// WordTarget is the approximate desired answer length. Advisory only.
	WordTarget int
}

// LabeledExcerpt is one sanitized chunk text under its citation label.
type LabeledExcerpt struct {
	Key  string
	Text string
}

// PromptBuilder renders the generation prompt.
type PromptBuilder interface {
	Build(input AnswerPromptInput) string
}

// NewPromptBuilder creates the default excerpt-grounded prompt builder.
func NewPromptBuilder() PromptBuilder {
	return &excerptPromptBuilder{}
}

type excerptPromptBuilder struct{}

// Build renders the prompt. The citable vocabulary is exactly input.Keys:
// the instructions list them explicitly and forbid any other citation.
func (b *excerptPromptBuilder) Build(input AnswerPromptInput) string {
	var sb strings.Builder

	sb.WriteString("Based on the following excerpts from research papers, provide a clear and ")
	sb.WriteString("coherent answer to the question. Cite sources using their labels in square ")
	sb.WriteString("brackets, e.g. [")
	if len(input.Keys) > 0 {
		sb.WriteString(input.Keys[0])
	} else {
		sb.WriteString("AuthorTitle2024")
	}
	sb.WriteString("].\n\n")

	sb.WriteString("Valid citation labels, the ONLY ones you may use: ")
	for i, key := range input.Keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[" + key + "]")
	}
	sb.WriteString("\n\n")

	sb.WriteString("Answer only from the excerpts below, not from prior knowledge. ")
	sb.WriteString(fmt.Sprintf("Aim for approximately %d words.\n", input.WordTarget))
	sb.WriteString("If the excerpts provide insufficient information to answer the question, ")
	sb.WriteString(fmt.Sprintf("reply with %q\n\n", RefusalPhrase))

	sb.WriteString("Question: " + input.Query + "\n\n")

	sb.WriteString("Excerpts:\n")
	for _, excerpt := range input.Excerpts {
		sb.WriteString("[" + excerpt.Key + "]: " + excerpt.Text + "\n\n")
	}

	sb.WriteString("Answer:")
	return sb.String()
}

var _ PromptBuilder = (*excerptPromptBuilder)(nil)

// sanitizedExcerpts strips inherited numeric citation markers from each
// result and labels it with its citation key.
func sanitizedExcerpts(results []domain.RetrievedResult) []LabeledExcerpt {
	excerpts := make([]LabeledExcerpt, 0, len(results))
	for _, r := range results {
		excerpts = append(excerpts, LabeledExcerpt{
			Key:  r.CitationKeyOf(),
			Text: domain.StripCitationMarkers(r.Chunk.Text),
		})
	}
	return excerpts
}

// distinctKeys returns the citation keys of results in order of first
// appearance, without duplicates.
func distinctKeys(results []domain.RetrievedResult) []string {
	seen := make(map[string]struct{}, len(results))
	var keys []string
	for _, r := range results {
		key := r.CitationKeyOf()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
