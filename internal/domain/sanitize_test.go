package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scholarag/internal/domain"
)

func TestStripCitationMarkers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "parenthesized list",
			input:    "shown previously (2, 3, 11, 12) in mice",
			expected: "shown previously  in mice",
		},
		{
			name:     "bracketed list",
			input:    "as reported [7,32] earlier",
			expected: "as reported  earlier",
		},
		{
			name:     "chained brackets",
			input:    "several studies [2][3][4] agree",
			expected: "several studies  agree",
		},
		{
			name:     "parenthesized with punctuation",
			input:    "was demonstrated (2). Later work",
			expected: "was demonstrated  Later work",
		},
		{
			name:     "single bracket",
			input:    "method [14] applies",
			expected: "method  applies",
		},
		{
			name:     "no markers untouched",
			input:    "a p-value of 0.05 (p < 0.05) was used",
			expected: "a p-value of 0.05 (p < 0.05) was used",
		},
		{
			name:     "bare parenthesized number stripped",
			input:    "Smith et al. (2020) showed",
			expected: "Smith et al.  showed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.StripCitationMarkers(tt.input))
		})
	}
}
