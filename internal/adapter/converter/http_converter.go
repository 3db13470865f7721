// Package converter provides clients for the external document-conversion
// sidecars and a registry of the named backend variants.
package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"scholarag/internal/domain"
)

// Backend names. docling is the thorough, layout-aware converter; fasttext
// is the fast text-extraction one.
const (
	BackendDocling  = "docling"
	BackendFastText = "fasttext"
)

// HTTPConverter converts one source file via a conversion sidecar. The
// sidecar is not assumed safe for concurrent use of a single session, so
// batch conversion constructs one HTTPConverter per task.
type HTTPConverter struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPConverter(name, baseURL string, client *http.Client) *HTTPConverter {
	return &HTTPConverter{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *HTTPConverter) Name() string {
	return c.name
}

type convertRequest struct {
	SourcePath string `json:"source_path"`
}

type convertResponse struct {
	Markdown        string   `json:"markdown"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Abstract        string   `json:"abstract"`
	PublicationDate string   `json:"publication_date"`
}

func (c *HTTPConverter) Convert(ctx context.Context, sourcePath string) (*domain.ConvertedDocument, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("%w: source %q", domain.ErrNotFound, sourcePath)
	}

	payload, err := json.Marshal(convertRequest{SourcePath: sourcePath})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/convert", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call converter %s: %v", domain.ErrUnavailable, c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: converter %s returned %d: %s",
			domain.ErrUnavailable, c.name, resp.StatusCode, string(body))
	}

	var converted convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&converted); err != nil {
		return nil, fmt.Errorf("%w: failed to decode converter response: %v", domain.ErrUnavailable, err)
	}

	return &domain.ConvertedDocument{
		Text:            converted.Markdown,
		Title:           converted.Title,
		Authors:         converted.Authors,
		Abstract:        converted.Abstract,
		PublicationDate: converted.PublicationDate,
	}, nil
}

var _ domain.DocumentConverter = (*HTTPConverter)(nil)

// Registry maps backend names to converter factories. Built explicitly at
// startup; unknown names are rejected rather than defaulted.
type Registry struct {
	factories map[string]domain.ConverterFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]domain.ConverterFactory)}
}

func (r *Registry) Register(name string, factory domain.ConverterFactory) {
	r.factories[name] = factory
}

// Factory returns the factory for a named backend.
func (r *Registry) Factory(name string) (domain.ConverterFactory, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown converter backend %q (available: %v)",
			domain.ErrInvalidArgument, name, r.Names())
	}
	return factory, nil
}

// Names lists the registered backend names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}
