package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"edututor/internal/adapter/cache"
	"edututor/internal/adapter/extract"
	"edututor/internal/domain"
	"edututor/internal/port"
)

// IngestUseCase turns documents into indexed, searchable chunks.
type IngestUseCase struct {
	chunker    port.Chunker
	embedder   port.Embedder
	index      port.VectorIndex
	queryCache *cache.QueryCache // optional, invalidated after each add
}

// NewIngestUseCase creates an ingest use case. queryCache may be nil.
func NewIngestUseCase(chunker port.Chunker, embedder port.Embedder, index port.VectorIndex, queryCache *cache.QueryCache) *IngestUseCase {
	return &IngestUseCase{
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		queryCache: queryCache,
	}
}

// IngestResult reports what an ingestion batch accomplished.
type IngestResult struct {
	FilesIngested int
	ChunksIndexed int
	Warnings      []string
}

// ProgressFunc reports batch progress to the caller.
type ProgressFunc func(processed, total int, currentFile string)

// Ingest extracts, chunks, embeds and indexes each document. A document
// that fails extraction or embedding is recorded as a warning and the
// batch continues; an index error stops the batch.
func (u *IngestUseCase) Ingest(paths []string, progress ProgressFunc) (*IngestResult, error) {
	result := &IngestResult{}
	seenBasenames := make(map[string]int)

	for i, path := range paths {
		if progress != nil {
			progress(i, len(paths), path)
		}

		text, err := extract.Text(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		pieces := u.chunker.Chunk(text)
		if len(pieces) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no text extracted", path))
			continue
		}

		base := filepath.Base(path)
		// A repeated basename in one batch would collide chunk IDs;
		// disambiguate with a content hash suffix.
		if seenBasenames[base] > 0 {
			base = base + "-" + shortHash(text)
		}
		seenBasenames[filepath.Base(path)]++

		vectors, err := u.embedder.Embed(pieces)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: embedding failed: %v", path, err))
			continue
		}

		metas := make([]domain.Metadata, len(pieces))
		for j, piece := range pieces {
			metas[j] = domain.Metadata{
				ID:   fmt.Sprintf("%s_chunk_%d", base, j),
				Text: piece,
			}
		}

		if err := u.index.Add(vectors, metas); err != nil {
			return result, fmt.Errorf("failed to index %s: %w", path, err)
		}

		result.FilesIngested++
		result.ChunksIndexed += len(pieces)
	}

	if progress != nil {
		progress(len(paths), len(paths), "")
	}

	if u.queryCache != nil && result.ChunksIndexed > 0 {
		u.queryCache.Invalidate()
	}

	return result, nil
}

func shortHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:4])
}
