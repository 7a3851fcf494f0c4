// Package mock provides a deterministic hash-based embedder for tests
// and local development. Identical text always embeds to the identical
// unit vector.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder generates pseudo-random but deterministic embeddings seeded
// by the text's hash.
type Embedder struct {
	dimensions int
}

// New returns an embedder producing 384-dimensional vectors, matching
// all-MiniLM-L6-v2.
func New() *Embedder {
	return &Embedder{dimensions: 384}
}

// NewWithDimensions returns an embedder producing vectors of the given
// size.
func NewWithDimensions(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &Embedder{dimensions: dimensions}
}

// Embed derives a unit vector from the text's FNV hash through an LCG
// stream.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, e.dimensions)
	for i := range embedding {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(embedding), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
