package chunker

import (
	"fmt"
	"strings"

	"edututor/internal/domain"
)

// WordChunker splits text into overlapping windows of whitespace-delimited
// words. Window i covers words [start, start+maxWords); the next window
// starts maxWords-overlap words later.
type WordChunker struct {
	maxWords int
	overlap  int
}

// NewWordChunker creates a word-window chunker. The overlap must be
// smaller than the window size or chunking would never advance.
func NewWordChunker(maxWords, overlap int) (*WordChunker, error) {
	if maxWords <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidChunking, maxWords)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidChunking, overlap)
	}
	if overlap >= maxWords {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidChunking, overlap, maxWords)
	}
	return &WordChunker{maxWords: maxWords, overlap: overlap}, nil
}

// Chunk returns the ordered windows for the input. Empty or
// whitespace-only input yields no chunks. The last window may be shorter
// than the configured size.
func (c *WordChunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.maxWords - c.overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + c.maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
