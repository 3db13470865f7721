package domain

import "context"

// VectorEncoder produces dense embeddings. Encode must preserve input order:
// output vector i corresponds to input text i. The ingestion write path zips
// chunks with vectors by position. A partial batch is never returned; either
// every requested embedding is present or the call fails as a whole.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}

// SparseEncoder produces sparse term-weighted embeddings. Only invoked for
// hybrid corpora; calling it for a dense corpus is a caller error, not a
// concern of the encoder.
type SparseEncoder interface {
	EncodeSparse(ctx context.Context, texts []string) ([]SparseVector, error)
}

// GenerateOptions tune a single generation call. MaxTokens doubles as the
// advisory answer-length hint in the prompt.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMClient sends a prompt to the generation backend and returns its text.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Version() string
}
