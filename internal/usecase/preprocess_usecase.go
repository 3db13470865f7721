package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"scholarag/internal/domain"
	"scholarag/internal/worker"
)

// ConverterProvider yields converter factories by backend name.
type ConverterProvider interface {
	Factory(name string) (domain.ConverterFactory, error)
	Names() []string
}

// PreprocessInput describes one batch conversion run.
type PreprocessInput struct {
	SourcePaths []string
	// Converter names the conversion backend to use for every file.
	Converter string
	// MaxWorkers is the requested concurrency; the pool applies its own cap.
	MaxWorkers int
	// OutputDir receives one markdown file and one metadata JSON per
	// successfully converted source.
	OutputDir string
}

// PreprocessUsecase converts source documents to markdown with bibliographic
// metadata, processing files concurrently and streaming results as each one
// finishes.
type PreprocessUsecase interface {
	Execute(ctx context.Context, input PreprocessInput) (<-chan worker.Result, error)
}

type preprocessUsecase struct {
	converters ConverterProvider
	enricher   domain.MetadataEnricher
	logger     *slog.Logger
}

// NewPreprocessUsecase builds the batch preprocessor. enricher may be nil to
// disable external metadata lookup.
func NewPreprocessUsecase(
	converters ConverterProvider,
	enricher domain.MetadataEnricher,
	logger *slog.Logger,
) PreprocessUsecase {
	return &preprocessUsecase{converters: converters, enricher: enricher, logger: logger}
}

func (u *preprocessUsecase) Execute(ctx context.Context, input PreprocessInput) (<-chan worker.Result, error) {
	if len(input.SourcePaths) == 0 {
		return nil, fmt.Errorf("%w: no source paths given", domain.ErrInvalidArgument)
	}

	factory, err := u.converters.Factory(input.Converter)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(input.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	pool := worker.NewConvertPool(input.MaxWorkers, u.logger)
	results := pool.Run(ctx, input.SourcePaths, func(ctx context.Context, sourcePath string) worker.Result {
		return u.processFile(ctx, factory, input.OutputDir, sourcePath)
	})
	return results, nil
}

// processFile converts one source document, enriches its metadata, and
// writes the markdown and metadata outputs. Each call gets its own converter
// instance from the factory.
func (u *preprocessUsecase) processFile(
	ctx context.Context,
	factory domain.ConverterFactory,
	outputDir string,
	sourcePath string,
) worker.Result {
	documentID := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	result := worker.Result{SourcePath: sourcePath, DocumentID: documentID}

	doc, err := factory().Convert(ctx, sourcePath)
	if err != nil {
		result.Err = err
		return result
	}

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = documentID
	}

	record := domain.BibliographicRecord{
		DocumentID:      documentID,
		Title:           title,
		Authors:         doc.Authors,
		Abstract:        doc.Abstract,
		PublicationDate: doc.PublicationDate,
	}
	if u.enricher != nil {
		if enriched := u.enricher.LookupByTitle(ctx, title); enriched != nil {
			applyEnrichment(&record, enriched)
		}
	}
	record.Year = domain.YearFromDate(record.PublicationDate)
	record.CitationKey = domain.CitationKeyFor(record.Title, record.Authors, record.Year)

	markdownPath := filepath.Join(outputDir, documentID+".md")
	if err := os.WriteFile(markdownPath, []byte(doc.Text), 0o644); err != nil {
		result.Err = fmt.Errorf("failed to write markdown: %w", err)
		return result
	}

	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		result.Err = fmt.Errorf("failed to encode metadata: %w", err)
		return result
	}
	metadataPath := filepath.Join(outputDir, documentID+".metadata.json")
	if err := os.WriteFile(metadataPath, encoded, 0o644); err != nil {
		result.Err = fmt.Errorf("failed to write metadata: %w", err)
		return result
	}

	u.logger.Info("document_preprocessed",
		slog.String("document_id", documentID),
		slog.String("output_path", markdownPath))

	result.Title = record.Title
	result.OutputPath = markdownPath
	return result
}

// applyEnrichment overrides converter-extracted fields with catalog values
// where the catalog has something better.
func applyEnrichment(record *domain.BibliographicRecord, enriched *domain.EnrichedMetadata) {
	if enriched.Title != "" {
		record.Title = enriched.Title
	}
	if len(enriched.Authors) > 0 {
		record.Authors = enriched.Authors
	}
	if enriched.Abstract != "" {
		record.Abstract = enriched.Abstract
	}
	if enriched.PublicationDate != "" {
		record.PublicationDate = enriched.PublicationDate
	}
	record.DOI = enriched.DOI
	record.Venue = enriched.Venue
}
