// Package openaiapi provides an embedding and generation backend speaking
// the OpenAI API, usable as an alternative to the Ollama adapters for any
// OpenAI-compatible endpoint.
package openaiapi

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"scholarag/internal/domain"
)

// Client implements domain.VectorEncoder and domain.LLMClient over the
// OpenAI API.
type Client struct {
	api            *openai.Client
	embeddingModel string
	chatModel      string
}

// New builds a client. baseURL may point at any OpenAI-compatible server;
// empty means api.openai.com.
func New(apiKey, baseURL, embeddingModel, chatModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:            openai.NewClientWithConfig(cfg),
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
	}
}

// Encode embeds texts in one batch request. The API returns one datum per
// input with its index; results are placed by index so output order always
// matches input order.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding request failed: %v", domain.ErrUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
			domain.ErrUnavailable, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, datum := range resp.Data {
		if datum.Index < 0 || datum.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", domain.ErrUnavailable, datum.Index)
		}
		vectors[datum.Index] = datum.Embedding
	}
	return vectors, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion failed: %v", domain.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", domain.ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// ProbeDimension embeds a short sample text to discover the model's vector
// dimension.
func (c *Client) ProbeDimension(ctx context.Context) (int, error) {
	vectors, err := c.Encode(ctx, []string{"dimension probe"})
	if err != nil {
		return 0, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return 0, fmt.Errorf("%w: probe returned an empty vector", domain.ErrUnavailable)
	}
	return len(vectors[0]), nil
}

// Ping checks API reachability with a model listing, the cheapest
// authenticated call the API offers.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: failed to reach openai endpoint: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) Version() string {
	return c.embeddingModel
}

var (
	_ domain.VectorEncoder = (*Client)(nil)
	_ domain.LLMClient     = (*Client)(nil)
)
