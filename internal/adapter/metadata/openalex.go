package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"scholarag/internal/domain"
)

// OpenAlexClient looks up works by title on the OpenAlex API. Enrichment is
// best-effort: any failure is logged and reported as a nil result, never an
// error that blocks ingestion.
type OpenAlexClient struct {
	BaseURL string
	Client  *http.Client
	logger  *slog.Logger
}

func NewOpenAlexClient(baseURL string, client *http.Client, logger *slog.Logger) *OpenAlexClient {
	if baseURL == "" {
		baseURL = "https://api.openalex.org"
	}
	return &OpenAlexClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		logger:  logger,
	}
}

type openAlexWork struct {
	Title           string `json:"title"`
	DOI             string `json:"doi"`
	PublicationDate string `json:"publication_date"`
	Authorships     []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

// LookupByTitle searches for the best-matching work. Returns nil when the
// lookup fails or finds nothing.
func (c *OpenAlexClient) LookupByTitle(ctx context.Context, title string) *domain.EnrichedMetadata {
	if strings.TrimSpace(title) == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/works?search=%s&per-page=1", c.BaseURL, url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		c.logger.Debug("openalex_lookup_failed", slog.String("error", err.Error()))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("openalex_lookup_bad_status", slog.Int("status", resp.StatusCode))
		return nil
	}

	var body openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || len(body.Results) == 0 {
		return nil
	}

	work := body.Results[0]
	enriched := &domain.EnrichedMetadata{
		Title:           work.Title,
		DOI:             work.DOI,
		PublicationDate: work.PublicationDate,
		Venue:           work.PrimaryLocation.Source.DisplayName,
	}
	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			enriched.Authors = append(enriched.Authors, authorship.Author.DisplayName)
		}
	}
	return enriched
}
