package domain

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// BibliographicRecord holds the citation-facing metadata of one document.
type BibliographicRecord struct {
	DocumentID      string            `json:"document_id"`
	CitationKey     string            `json:"citation_key"`
	Title           string            `json:"title"`
	Authors         []string          `json:"authors,omitempty"`
	Year            int               `json:"year,omitempty"`
	Abstract        string            `json:"abstract,omitempty"`
	Venue           string            `json:"venue,omitempty"`
	DOI             string            `json:"doi,omitempty"`
	PublicationDate string            `json:"publication_date,omitempty"`
	References      string            `json:"references,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// MetadataResolver looks up the bibliographic record for a document.
// A missing record is reported as (nil, nil), not an error.
type MetadataResolver interface {
	Resolve(ctx context.Context, corpusID, documentID string) (*BibliographicRecord, error)
}

// MetadataStore extends resolution with the write path used at ingestion.
type MetadataStore interface {
	MetadataResolver
	Save(ctx context.Context, corpusID string, record *BibliographicRecord) error
	Delete(ctx context.Context, corpusID, documentID string) error
}

// EnrichedMetadata is the subset of bibliographic fields an external catalog
// can improve on converter-extracted metadata.
type EnrichedMetadata struct {
	Title           string
	Authors         []string
	Abstract        string
	PublicationDate string
	DOI             string
	Venue           string
}

// MetadataEnricher looks up works in an external catalog. Lookups are
// best-effort: a nil result means no match, and failures never surface as
// errors that would block preprocessing.
type MetadataEnricher interface {
	LookupByTitle(ctx context.Context, title string) *EnrichedMetadata
}

var (
	nonLetters = regexp.MustCompile(`[^a-zA-Z]`)
	yearDigits = regexp.MustCompile(`\d{4}`)
)

// CitationKeyFor derives the stable, human-readable citation key for a
// document: first author's last name, first two title words, year.
// Derived once at ingestion; stable for the document's lifetime.
func CitationKeyFor(title string, authors []string, year int) string {
	var parts []string

	if len(authors) > 0 {
		fields := strings.Fields(authors[0])
		if len(fields) > 0 {
			last := nonLetters.ReplaceAllString(fields[len(fields)-1], "")
			if last != "" {
				parts = append(parts, last)
			}
		}
	}

	words := strings.Fields(title)
	if len(words) > 2 {
		words = words[:2]
	}
	var titlePart strings.Builder
	for _, w := range words {
		w = nonLetters.ReplaceAllString(w, "")
		if w == "" {
			continue
		}
		titlePart.WriteString(strings.ToUpper(w[:1]))
		titlePart.WriteString(strings.ToLower(w[1:]))
	}
	if titlePart.Len() > 0 {
		parts = append(parts, titlePart.String())
	}

	if year > 0 {
		parts = append(parts, strconv.Itoa(year))
	}

	key := strings.Join(parts, "")
	if key == "" {
		return "UnknownPaper"
	}
	return key
}

// YearFromDate extracts a four-digit year from a free-form date string,
// returning 0 when none is present.
func YearFromDate(date string) int {
	match := yearDigits.FindString(date)
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}
