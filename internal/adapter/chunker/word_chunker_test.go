package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"edututor/internal/domain"
)

func TestWordChunkerInvalidConfig(t *testing.T) {
	cases := []struct {
		name     string
		maxWords int
		overlap  int
	}{
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 15},
		{"zero size", 0, 0},
		{"negative overlap", 10, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWordChunker(tc.maxWords, tc.overlap)
			if !errors.Is(err, domain.ErrInvalidChunking) {
				t.Errorf("expected ErrInvalidChunking, got %v", err)
			}
		})
	}
}

func TestWordChunkerEmptyInput(t *testing.T) {
	c, err := NewWordChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Chunk(""); len(got) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(got))
	}
	if got := c.Chunk("   \n\t  "); len(got) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %d", len(got))
	}
}

func TestWordChunkerSingleWord(t *testing.T) {
	c, err := NewWordChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	got := c.Chunk("hello")
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("expected [hello], got %v", got)
	}
}

func TestWordChunkerWindowing(t *testing.T) {
	c, err := NewWordChunker(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	got := c.Chunk("a b c d e f g")
	want := []string{"a b c d", "d e f g", "g"}
	if len(got) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestWordChunkerLastChunkShorter(t *testing.T) {
	c, err := NewWordChunker(3, 0)
	if err != nil {
		t.Fatal(err)
	}

	got := c.Chunk("a b c d")
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(got), got)
	}
	if got[1] != "d" {
		t.Errorf("expected last chunk %q, got %q", "d", got[1])
	}
}

func TestWordChunkerCoverage(t *testing.T) {
	// Every word of the input must appear in at least one chunk, for a
	// spread of valid size/overlap combinations.
	words := make([]string, 137)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	configs := []struct{ maxWords, overlap int }{
		{5, 0}, {5, 4}, {10, 3}, {50, 10}, {200, 40}, {1, 0},
	}

	for _, cfg := range configs {
		c, err := NewWordChunker(cfg.maxWords, cfg.overlap)
		if err != nil {
			t.Fatal(err)
		}
		chunks := c.Chunk(text)
		joined := " " + strings.Join(chunks, " ") + " "
		for _, w := range words {
			if !strings.Contains(joined, " "+w+" ") {
				t.Errorf("config %+v: word %q missing from chunks", cfg, w)
			}
		}
	}
}
