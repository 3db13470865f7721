package domain

import (
	"fmt"
	"strings"
)

// FormatAPA renders a bibliographic record as an APA-style citation string.
//
// Example: Vaswani, A., Shazeer, N., & Polosukhin, I. (2017). Attention Is All You Need. NeurIPS.
func FormatAPA(rec BibliographicRecord) string {
	var parts []string

	if len(rec.Authors) > 0 {
		parts = append(parts, formatAuthorsAPA(rec.Authors))
	}
	if rec.Year > 0 {
		parts = append(parts, fmt.Sprintf("(%d)", rec.Year))
	}
	parts = append(parts, rec.Title)
	if rec.Venue != "" {
		parts = append(parts, rec.Venue)
	}

	return strings.Join(parts, ". ") + "."
}

// FormatBibTeX renders a bibliographic record as a BibTeX @article entry
// keyed by the citation key.
func FormatBibTeX(rec BibliographicRecord) string {
	key := rec.CitationKey
	if key == "" {
		key = rec.DocumentID
	}

	lines := []string{fmt.Sprintf("@article{%s,", key)}
	lines = append(lines, fmt.Sprintf("  title = {%s},", rec.Title))
	if len(rec.Authors) > 0 {
		lines = append(lines, fmt.Sprintf("  author = {%s},", strings.Join(rec.Authors, " and ")))
	}
	if rec.Year > 0 {
		lines = append(lines, fmt.Sprintf("  year = {%d},", rec.Year))
	}
	if rec.Venue != "" {
		lines = append(lines, fmt.Sprintf("  journal = {%s},", rec.Venue))
	}

	last := lines[len(lines)-1]
	lines[len(lines)-1] = strings.TrimSuffix(last, ",")
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

// formatAuthorsAPA joins the author list per APA rules: two authors with an
// ampersand, up to twenty listed in full, beyond that the first nineteen
// followed by an ellipsis and the final author.
func formatAuthorsAPA(authors []string) string {
	switch {
	case len(authors) == 0:
		return ""
	case len(authors) == 1:
		return authors[0]
	case len(authors) == 2:
		return fmt.Sprintf("%s, & %s", authors[0], authors[1])
	case len(authors) <= 20:
		return fmt.Sprintf("%s, & %s", strings.Join(authors[:len(authors)-1], ", "), authors[len(authors)-1])
	default:
		return fmt.Sprintf("%s, ... %s", strings.Join(authors[:19], ", "), authors[len(authors)-1])
	}
}
