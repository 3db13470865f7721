package domain

import "context"

// ConvertedDocument is the output of the external document conversion step:
// normalized markdown text plus the bibliographic metadata the converter
// could extract.
type ConvertedDocument struct {
	Text            string
	Title           string
	Authors         []string
	Abstract        string
	PublicationDate string
}

// DocumentConverter turns a source file into text and metadata. The concrete
// backends are external sidecar services; converters are not assumed safe for
// concurrent use, so batch conversion gives each task its own instance.
//
// Convert fails with ErrNotFound when the source is missing and ErrUnavailable
// when the backend errors.
type DocumentConverter interface {
	Name() string
	Convert(ctx context.Context, sourcePath string) (*ConvertedDocument, error)
}

// ConverterFactory builds a fresh converter instance per conversion task.
type ConverterFactory func() DocumentConverter
