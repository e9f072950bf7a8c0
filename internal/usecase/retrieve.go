package usecase

import (
	"fmt"

	"edututor/internal/adapter/cache"
	"edututor/internal/domain"
	"edututor/internal/port"
)

// RetrieveUseCase answers queries against the vector index.
type RetrieveUseCase struct {
	embedder   port.Embedder
	index      port.VectorIndex
	queryCache *cache.QueryCache // optional
}

// NewRetrieveUseCase creates a retrieve use case. queryCache may be nil.
func NewRetrieveUseCase(embedder port.Embedder, index port.VectorIndex, queryCache *cache.QueryCache) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder:   embedder,
		index:      index,
		queryCache: queryCache,
	}
}

// Retrieve embeds the query and returns up to topK hits in ascending
// distance order. An empty index yields no hits, not an error.
func (u *RetrieveUseCase) Retrieve(query string, topK int) ([]domain.SearchHit, error) {
	if u.index.Count() == 0 {
		return nil, nil
	}

	if u.queryCache != nil {
		if hits, ok := u.queryCache.Get(query, topK); ok {
			return hits, nil
		}
	}

	vectors, err := u.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	hits, err := u.index.Search(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if u.queryCache != nil {
		u.queryCache.Put(query, topK, hits)
	}
	return hits, nil
}
