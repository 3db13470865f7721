package domain

import (
	"fmt"
)

// ChunkMode selects the unit the sliding window operates on.
type ChunkMode string

const (
	// ChunkModeChars slides the window over characters (runes).
	ChunkModeChars ChunkMode = "chars"
	// ChunkModeTokens slides the window over tokenizer output.
	ChunkModeTokens ChunkMode = "tokens"
)

// Tokenizer is the injectable collaborator required for token-mode chunking.
// Decode must invert Encode for any contiguous sub-slice of the encoded ids.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
}

// Chunker splits normalized document text into overlapping retrievable units.
type Chunker interface {
	Split(text string) ([]string, error)
}

type windowChunker struct {
	mode      ChunkMode
	size      int
	overlap   int
	tokenizer Tokenizer
}

// NewChunker creates a sliding-window chunker. size and overlap are in the
// units of mode. Token mode requires a tokenizer.
func NewChunker(mode ChunkMode, size, overlap int, tokenizer Tokenizer) (Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidArgument, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidArgument, overlap)
	}
	if overlap >= size {
		// A non-positive step would loop forever on the same window.
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidArgument, overlap, size)
	}
	if mode == ChunkModeTokens && tokenizer == nil {
		return nil, fmt.Errorf("%w: token mode requires a tokenizer", ErrInvalidArgument)
	}
	return &windowChunker{mode: mode, size: size, overlap: overlap, tokenizer: tokenizer}, nil
}

// Split applies the sliding window. Consecutive chunks share exactly overlap
// units; the final chunk may be shorter. A body no longer than size is
// returned as a single chunk.
func (c *windowChunker) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}

	switch c.mode {
	case ChunkModeTokens:
		ids := c.tokenizer.Encode(text)
		windows := slideWindow(len(ids), c.size, c.overlap)
		chunks := make([]string, 0, len(windows))
		for _, w := range windows {
			chunks = append(chunks, c.tokenizer.Decode(ids[w[0]:w[1]]))
		}
		return chunks, nil
	default:
		runes := []rune(text)
		windows := slideWindow(len(runes), c.size, c.overlap)
		chunks := make([]string, 0, len(windows))
		for _, w := range windows {
			chunks = append(chunks, string(runes[w[0]:w[1]]))
		}
		return chunks, nil
	}
}

// slideWindow computes [start, end) index pairs covering n units with the
// given window size and overlap.
func slideWindow(n, size, overlap int) [][2]int {
	if n == 0 {
		return nil
	}
	if n <= size {
		return [][2]int{{0, n}}
	}

	step := size - overlap
	var windows [][2]int
	for start := 0; start < n; start += step {
		end := start + size
		if end > n {
			end = n
		}
		windows = append(windows, [2]int{start, end})
		if end >= n {
			break
		}
	}
	return windows
}
