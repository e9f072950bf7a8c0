package port

import "edututor/internal/domain"

// VectorIndex is a durable nearest-neighbor index over chunk vectors.
// Vectors and metadata are appended in lock-step; position i in the
// vector structure always corresponds to position i in the metadata list.
type VectorIndex interface {
	// Add appends vectors with their metadata and persists the index.
	// Every vector must match the index dimension and
	// len(vectors) == len(metas); validation precedes any mutation.
	Add(vectors [][]float32, metas []domain.Metadata) error

	// Search returns up to topK hits ordered by ascending L2 distance.
	Search(query []float32, topK int) ([]domain.SearchHit, error)

	// Count returns the number of stored vectors.
	Count() int

	// Dimension returns the configured vector dimension.
	Dimension() int
}
