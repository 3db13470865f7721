package domain

import "regexp"

// Numeric in-text citation markers inherited from source documents. They are
// stripped before chunk text reaches the generation prompt so the model
// cannot confuse a paper's own numbered references with our citation keys.
var citationMarkerPatterns = []*regexp.Regexp{
	// (2, 3, 11, 12)
	regexp.MustCompile(`\(\s*\d+(?:\s*,\s*\d+)*\s*\)`),
	// [2, 3, 11, 12] and [7,32]
	regexp.MustCompile(`\[\s*\d+(?:\s*,\s*\d+)*\s*\]`),
	// [2][3][4]
	regexp.MustCompile(`(?:\[\d+\])+`),
	// (2). and (3),
	regexp.MustCompile(`\(\d+\)[.,]+`),
}

// StripCitationMarkers removes numeric citation markers from chunk text.
func StripCitationMarkers(text string) string {
	for _, p := range citationMarkerPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return text
}
