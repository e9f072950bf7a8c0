package index

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"edututor/internal/domain"
)

const (
	vectorsFile = "vectors.bin"
	metaFile    = "meta.json"

	formatVersion = 1
)

var magic = [4]byte{'E', 'D', 'V', 'I'}

// Flat is an exact brute-force L2 index over chunk vectors, persisted as
// two companion artifacts in a directory: a binary vector file and an
// ordered JSON metadata list. The two are always written as a pair, and
// position i in the vector file corresponds to position i in the
// metadata list.
type Flat struct {
	mu      sync.RWMutex
	dir     string
	dim     int
	vectors [][]float32
	metas   []domain.Metadata
}

// Open loads the persisted index at dir if present, or initializes an
// empty index of the given dimension. A persisted index with a different
// dimension is discarded and replaced; corrupted or inconsistent
// artifacts are logged and likewise replaced with an empty index.
func Open(dir string, dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	f := &Flat{dir: dir, dim: dim}
	if err := f.load(); err != nil {
		log.Printf("warning: %v; recreating empty index at %s", err, dir)
		f.vectors = nil
		f.metas = nil
	}
	return f, nil
}

func (f *Flat) load() error {
	vecPath := filepath.Join(f.dir, vectorsFile)
	metaPath := filepath.Join(f.dir, metaFile)

	_, vErr := os.Stat(vecPath)
	_, mErr := os.Stat(metaPath)
	if os.IsNotExist(vErr) && os.IsNotExist(mErr) {
		return nil // fresh index
	}
	if os.IsNotExist(vErr) || os.IsNotExist(mErr) {
		return fmt.Errorf("%w: companion artifact missing", domain.ErrIndexCorrupted)
	}

	vectors, dim, err := readVectors(vecPath)
	if err != nil {
		return err
	}
	if dim != f.dim {
		return fmt.Errorf("persisted index dimension %d disagrees with requested %d", dim, f.dim)
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexCorrupted, err)
	}
	var metas []domain.Metadata
	if err := json.Unmarshal(data, &metas); err != nil {
		return fmt.Errorf("%w: unreadable metadata list: %v", domain.ErrIndexCorrupted, err)
	}

	if len(metas) != len(vectors) {
		return fmt.Errorf("%w: %d vectors but %d metadata records", domain.ErrIndexCorrupted, len(vectors), len(metas))
	}

	f.vectors = vectors
	f.metas = metas
	return nil
}

func readVectors(path string) ([][]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrIndexCorrupted, err)
	}

	r := bytes.NewReader(data)
	var header struct {
		Magic   [4]byte
		Version uint32
		Dim     uint32
		Count   uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("%w: truncated vector file header", domain.ErrIndexCorrupted)
	}
	if header.Magic != magic {
		return nil, 0, fmt.Errorf("%w: bad vector file magic", domain.ErrIndexCorrupted)
	}
	if header.Version != formatVersion {
		return nil, 0, fmt.Errorf("%w: unsupported vector file version %d", domain.ErrIndexCorrupted, header.Version)
	}

	dim := int(header.Dim)
	count := int(header.Count)
	if dim <= 0 {
		return nil, 0, fmt.Errorf("%w: non-positive dimension in vector file", domain.ErrIndexCorrupted)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, 0, fmt.Errorf("%w: truncated vector data", domain.ErrIndexCorrupted)
		}
		vectors[i] = vec
	}

	return vectors, dim, nil
}

// Add appends vectors with their metadata in lock-step and persists both
// artifacts. Validation precedes any mutation: a dimension mismatch or a
// length disagreement leaves the index untouched.
func (f *Flat) Add(vectors [][]float32, metas []domain.Metadata) error {
	if len(vectors) != len(metas) {
		return fmt.Errorf("got %d vectors but %d metadata records", len(vectors), len(metas))
	}
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: expected %d, got %d at position %d", domain.ErrDimensionMismatch, f.dim, len(v), i)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.vectors = append(f.vectors, vectors...)
	f.metas = append(f.metas, metas...)

	if err := f.save(); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}
	return nil
}

// Search returns up to topK hits ordered by ascending L2 distance. Fewer
// hits are returned when the index holds fewer than topK vectors.
func (f *Flat) Search(query []float32, topK int) ([]domain.SearchHit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", domain.ErrDimensionMismatch, len(query), f.dim)
	}
	if topK <= 0 {
		return nil, nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	hits := make([]domain.SearchHit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = domain.SearchHit{
			Score:    l2Distance(query, v),
			Metadata: f.metas[i],
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score < hits[j].Score
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (f *Flat) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Dimension returns the configured vector dimension.
func (f *Flat) Dimension() int {
	return f.dim
}

// Reset discards all stored vectors and metadata and rewrites empty
// artifacts.
func (f *Flat) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors = nil
	f.metas = nil
	return f.save()
}

// save writes the vector artifact, then the metadata artifact. Each is
// written to a temp file and renamed into place.
func (f *Flat) save() error {
	var buf bytes.Buffer
	header := struct {
		Magic   [4]byte
		Version uint32
		Dim     uint32
		Count   uint32
	}{magic, formatVersion, uint32(f.dim), uint32(len(f.vectors))}

	if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
		return err
	}
	for _, v := range f.vectors {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	if err := writeAtomic(filepath.Join(f.dir, vectorsFile), buf.Bytes()); err != nil {
		return err
	}

	data, err := json.Marshal(f.metas)
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(f.dir, metaFile), data)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// l2Distance is the Euclidean distance between two equal-length vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
