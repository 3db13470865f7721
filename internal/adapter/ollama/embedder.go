package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"scholarag/internal/domain"
)

// Embedder produces dense embeddings through Ollama's /api/embed endpoint.
// Calls are rate limited to avoid overrunning the backend during bulk
// ingestion.
type Embedder struct {
	BaseURL string
	Model   string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewEmbedder constructs an embedder. maxRPS <= 0 disables rate limiting.
func NewEmbedder(baseURL, model string, client *http.Client, maxRPS float64) *Embedder {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if maxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxRPS), 1)
	}
	return &Embedder{
		BaseURL: baseURL,
		Model:   model,
		Client:  client,
		limiter: limiter,
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Encode embeds texts in a single batch call. Output order matches input
// order; a response with a different embedding count fails the whole call
// rather than returning a partial batch.
func (e *Embedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	slog.Info("ollama_embed_started",
		slog.Int("text_count", len(texts)),
		slog.String("model", e.Model))
	start := time.Now()

	jsonData, err := json.Marshal(embedRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		slog.Error("ollama_embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("%w: failed to call ollama: %v", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Error("ollama_embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("%w: ollama returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUnavailable, err)
	}
	if len(respBody.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
			domain.ErrUnavailable, len(texts), len(respBody.Embeddings))
	}

	slog.Info("ollama_embed_completed",
		slog.Int("embedding_count", len(respBody.Embeddings)),
		slog.Duration("elapsed", time.Since(start)))

	return respBody.Embeddings, nil
}

// ProbeDimension embeds a short sample text to discover the backend's vector
// dimension. Called once at corpus creation.
func (e *Embedder) ProbeDimension(ctx context.Context) (int, error) {
	vectors, err := e.Encode(ctx, []string{"dimension probe"})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return 0, fmt.Errorf("%w: probe returned no embedding", domain.ErrUnavailable)
	}
	return len(vectors[0]), nil
}

// Ping checks backend reachability via the version endpoint, which answers
// without loading a model.
func (e *Embedder) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/version", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to reach ollama: %v", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (e *Embedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*Embedder)(nil)
