package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scholarag/internal/domain"
)

// SparseEncoderClient calls a sparse-embedding sidecar (a fastembed-style
// BM42 service) over HTTP. The sidecar returns one (indices, values) pair
// per input text, in input order.
type SparseEncoderClient struct {
	BaseURL string
	Client  *http.Client
}

func NewSparseEncoderClient(baseURL string, client *http.Client) *SparseEncoderClient {
	return &SparseEncoderClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

type sparseEmbedRequest struct {
	Texts []string `json:"texts"`
}

type sparseEmbedding struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

type sparseEmbedResponse struct {
	Embeddings []sparseEmbedding `json:"embeddings"`
}

func (s *SparseEncoderClient) EncodeSparse(ctx context.Context, texts []string) ([]domain.SparseVector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(sparseEmbedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/embed/sparse", s.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call sparse embedder: %v", domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: sparse embedder returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var respBody sparseEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUnavailable, err)
	}
	if len(respBody.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d sparse embeddings, got %d",
			domain.ErrUnavailable, len(texts), len(respBody.Embeddings))
	}

	vectors := make([]domain.SparseVector, len(respBody.Embeddings))
	for i, emb := range respBody.Embeddings {
		if len(emb.Indices) != len(emb.Values) {
			return nil, fmt.Errorf("%w: sparse embedding %d has %d indices but %d values",
				domain.ErrUnavailable, i, len(emb.Indices), len(emb.Values))
		}
		vectors[i] = domain.SparseVector{Indices: emb.Indices, Values: emb.Values}
	}
	return vectors, nil
}

var _ domain.SparseEncoder = (*SparseEncoderClient)(nil)
