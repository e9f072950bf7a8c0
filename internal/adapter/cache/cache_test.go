package cache

import (
	"path/filepath"
	"testing"
	"time"

	"edututor/internal/adapter/embedding"
	"edututor/internal/domain"
)

func TestQueryCacheHitAndMiss(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	hits := []domain.SearchHit{{Score: 0.1, Metadata: domain.Metadata{ID: "a"}}}
	c.Put("what is calculus", 5, hits)

	got, ok := c.Get("what is calculus", 5)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Metadata.ID != "a" {
		t.Errorf("unexpected cached hits: %+v", got)
	}

	if _, ok := c.Get("what is calculus", 3); ok {
		t.Error("different topK should miss")
	}
	if _, ok := c.Get("something else", 5); ok {
		t.Error("different query should miss")
	}
}

func TestQueryCacheInvalidate(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("q", 5, []domain.SearchHit{{Score: 1}})

	c.Invalidate()

	if _, ok := c.Get("q", 5); ok {
		t.Error("expected miss after invalidation")
	}
	if c.Size() != 0 {
		t.Errorf("expected empty cache, got size %d", c.Size())
	}
}

func TestQueryCacheEviction(t *testing.T) {
	c := NewQueryCache(2, time.Minute)
	c.Put("q1", 5, nil)
	c.Put("q2", 5, nil)
	c.Put("q3", 5, nil)

	if c.Size() != 2 {
		t.Errorf("expected size 2 after eviction, got %d", c.Size())
	}
	if _, ok := c.Get("q1", 5); ok {
		t.Error("expected oldest entry to be evicted")
	}
}

type countingEmbedder struct {
	inner *embedding.MockEmbedder
	calls int
}

func (e *countingEmbedder) Embed(texts []string) ([][]float32, error) {
	e.calls += len(texts)
	return e.inner.Embed(texts)
}

func (e *countingEmbedder) Dimension() int    { return e.inner.Dimension() }
func (e *countingEmbedder) ModelName() string { return e.inner.ModelName() }

func TestCachedEmbedderMemoizes(t *testing.T) {
	counting := &countingEmbedder{inner: embedding.NewMockEmbedder(8)}
	cached, err := NewCachedEmbedder(counting, filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cached.Close()

	first, err := cached.Embed([]string{"alpha", "beta"})
	if err != nil {
		t.Fatal(err)
	}
	if counting.calls != 2 {
		t.Fatalf("expected 2 embedding calls, got %d", counting.calls)
	}

	// Second pass: one cached text, one new.
	second, err := cached.Embed([]string{"alpha", "gamma"})
	if err != nil {
		t.Fatal(err)
	}
	if counting.calls != 3 {
		t.Errorf("expected 3 embedding calls total, got %d", counting.calls)
	}

	// Cached vector must match the original byte for byte.
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("cached vector differs at position %d", i)
		}
	}
}

func TestCachedEmbedderEmptyInput(t *testing.T) {
	cached, err := NewCachedEmbedder(embedding.NewMockEmbedder(4), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cached.Close()

	got, err := cached.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d vectors", len(got))
	}
}
