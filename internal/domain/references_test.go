package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scholarag/internal/domain"
)

func TestSplitReferences_MarkdownHeading(t *testing.T) {
	text := "Introduction text.\n\nMethods text.\n\n## References\n\n1. Smith et al. 2020.\n"

	body, refs := domain.SplitReferences(text)

	assert.Equal(t, "Introduction text.\n\nMethods text.", body)
	assert.Equal(t, "## References\n\n1. Smith et al. 2020.\n", refs)
}

func TestSplitReferences_HeadingVariants(t *testing.T) {
	tests := []struct {
		name    string
		heading string
	}{
		{name: "plain", heading: "References"},
		{name: "lowercase", heading: "references"},
		{name: "bibliography", heading: "Bibliography"},
		{name: "works cited", heading: "Works Cited"},
		{name: "literature cited", heading: "Literature Cited"},
		{name: "bold", heading: "**References**"},
		{name: "deep heading", heading: "### References"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "Body.\n" + tt.heading + "\n[1] Someone.\n"
			body, refs := domain.SplitReferences(text)
			assert.Equal(t, "Body.", body)
			assert.NotEmpty(t, refs)
		})
	}
}

func TestSplitReferences_NoHeading(t *testing.T) {
	text := "A paper that cites references inline but has no bibliography heading."

	body, refs := domain.SplitReferences(text)

	assert.Equal(t, text, body)
	assert.Empty(t, refs)
}

func TestSplitReferences_HeadingMidSentenceIgnored(t *testing.T) {
	// "references" inside a sentence is not a section heading.
	text := "We list references throughout the text.\nMore body."

	body, refs := domain.SplitReferences(text)

	assert.Equal(t, text, body)
	assert.Empty(t, refs)
}
