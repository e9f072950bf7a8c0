package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edututor/internal/adapter/cache"
	"edututor/internal/adapter/chunker"
	"edututor/internal/adapter/embedding"
	"edututor/internal/adapter/index"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestIngest(t *testing.T, maxWords, overlap int) (*IngestUseCase, *index.Flat) {
	t.Helper()
	chk, err := chunker.NewWordChunker(maxWords, overlap)
	if err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewMockEmbedder(16)
	idx, err := index.Open(t.TempDir(), emb.Dimension())
	if err != nil {
		t.Fatal(err)
	}
	return NewIngestUseCase(chk, emb, idx, nil), idx
}

func TestIngestAssignsChunkIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "notes.txt", "alpha beta gamma delta epsilon zeta")

	uc, idx := newTestIngest(t, 2, 0)
	result, err := uc.Ingest([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesIngested != 1 {
		t.Errorf("expected 1 file ingested, got %d", result.FilesIngested)
	}
	if result.ChunksIndexed != 3 {
		t.Errorf("expected 3 chunks, got %d", result.ChunksIndexed)
	}
	if idx.Count() != 3 {
		t.Errorf("expected 3 vectors in index, got %d", idx.Count())
	}

	hits, err := idx.Search(make([]float32, 16), 3)
	if err != nil {
		t.Fatal(err)
	}
	ids := make(map[string]bool)
	for _, h := range hits {
		ids[h.Metadata.ID] = true
	}
	for _, want := range []string{"notes.txt_chunk_0", "notes.txt_chunk_1", "notes.txt_chunk_2"} {
		if !ids[want] {
			t.Errorf("missing chunk id %q in %v", want, ids)
		}
	}
}

func TestIngestSkipsFailedDocuments(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "good.txt", "one two three")
	bad := filepath.Join(dir, "missing.txt")
	unsupported := writeDoc(t, dir, "image.png", "binary")

	uc, _ := newTestIngest(t, 10, 0)
	result, err := uc.Ingest([]string{good, bad, unsupported}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesIngested != 1 {
		t.Errorf("expected 1 file ingested, got %d", result.FilesIngested)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
}

func TestIngestEmptyDocumentYieldsNoChunks(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "blank.txt", "   \n  ")

	uc, idx := newTestIngest(t, 10, 0)
	result, err := uc.Ingest([]string{path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.ChunksIndexed != 0 || idx.Count() != 0 {
		t.Errorf("expected no chunks for empty document, got %d", result.ChunksIndexed)
	}
}

func TestIngestDisambiguatesDuplicateBasenames(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a/notes.txt", "first document body")
	b := writeDoc(t, dir, "b/notes.txt", "second document body")

	uc, idx := newTestIngest(t, 10, 0)
	if _, err := uc.Ingest([]string{a, b}, nil); err != nil {
		t.Fatal(err)
	}

	hits, err := idx.Search(make([]float32, 16), 10)
	if err != nil {
		t.Fatal(err)
	}
	ids := make(map[string]bool)
	for _, h := range hits {
		if ids[h.Metadata.ID] {
			t.Fatalf("duplicate chunk id %q", h.Metadata.ID)
		}
		ids[h.Metadata.ID] = true
	}

	var suffixed int
	for id := range ids {
		if strings.HasPrefix(id, "notes.txt-") {
			suffixed++
		}
	}
	if suffixed == 0 {
		t.Errorf("expected hash-suffixed ids for the colliding basename, got %v", ids)
	}
}

func TestIngestInvalidatesQueryCache(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "notes.txt", "alpha beta gamma")

	chk, err := chunker.NewWordChunker(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewMockEmbedder(16)
	idx, err := index.Open(t.TempDir(), emb.Dimension())
	if err != nil {
		t.Fatal(err)
	}
	qc := cache.NewQueryCache(10, 0)
	qc.Put("stale", 5, nil)

	uc := NewIngestUseCase(chk, emb, idx, qc)
	if _, err := uc.Ingest([]string{path}, nil); err != nil {
		t.Fatal(err)
	}

	if _, ok := qc.Get("stale", 5); ok {
		t.Error("expected query cache to be invalidated after ingestion")
	}
}

func TestIngestReportsProgress(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.txt", "one")
	b := writeDoc(t, dir, "b.txt", "two")

	uc, _ := newTestIngest(t, 10, 0)

	var calls []int
	_, err := uc.Ingest([]string{a, b}, func(processed, total int, _ string) {
		calls = append(calls, processed)
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) == 0 || calls[len(calls)-1] != 2 {
		t.Errorf("expected final progress call with processed=2, got %v", calls)
	}
}
