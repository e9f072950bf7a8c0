package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"go.etcd.io/bbolt"

	"edututor/internal/port"
)

var bucketEmbeddings = []byte("embeddings")

// CachedEmbedder decorates an Embedder with a persistent BoltDB cache
// keyed by sha256(model|text). Document ingestion re-runs every session,
// so caching spares repeated embedding calls for unchanged chunks.
type CachedEmbedder struct {
	inner port.Embedder
	db    *bbolt.DB
}

// NewCachedEmbedder wraps inner with the cache database at path.
func NewCachedEmbedder(inner port.Embedder, path string) (*CachedEmbedder, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embeddings bucket: %w", err)
	}

	return &CachedEmbedder{inner: inner, db: db}, nil
}

func (e *CachedEmbedder) cacheKey(text string) []byte {
	h := sha256.New()
	h.Write([]byte(e.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil)
}

// Embed returns cached vectors where available and delegates the misses
// to the wrapped embedder in a single batch.
func (e *CachedEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	err := e.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			data := b.Get(e.cacheKey(text))
			if data == nil {
				missTexts = append(missTexts, text)
				missIdx = append(missIdx, i)
				continue
			}
			vec, err := decodeVector(data)
			if err != nil || len(vec) != e.inner.Dimension() {
				// Stale or unreadable entry; re-embed.
				missTexts = append(missTexts, text)
				missIdx = append(missIdx, i)
				continue
			}
			vectors[i] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := e.inner.Embed(missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	err = e.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for j, vec := range fresh {
			vectors[missIdx[j]] = vec
			if err := b.Put(e.cacheKey(missTexts[j]), encodeVector(vec)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store cached embeddings: %w", err)
	}

	return vectors, nil
}

func (e *CachedEmbedder) Dimension() int {
	return e.inner.Dimension()
}

func (e *CachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}

// Close closes the cache database.
func (e *CachedEmbedder) Close() error {
	return e.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 0, len(vec)*4)
	var scratch [4]byte
	for _, v := range vec {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
		buf = append(buf, scratch[:]...)
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("malformed cached vector of %d bytes", len(data))
	}
	vec := make([]float32, len(data)/4)
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
		return nil, err
	}
	return vec, nil
}
