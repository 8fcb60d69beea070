// Package hashed provides a deterministic offline pseudo-embedder.
//
// It stands in for a real embedding model when no API credential is
// configured: vectors are derived from an FNV hash of the text, so results
// are reproducible but carry no semantic meaning.
package hashed

import "hash/fnv"

const dimension = 10

// Embedder maps text to a fixed-dimension pseudo-vector.
type Embedder struct{}

func New() *Embedder {
	return &Embedder{}
}

// Name returns the identifier of this embedder implementation.
func (*Embedder) Name() string { return "hashed" }

// Dimension returns the dimensionality of the produced vectors.
func (*Embedder) Dimension() int { return dimension }

// Embed returns a deterministic vector with components in [0, 1).
func (*Embedder) Embed(text string) ([]float64, error) {
	vec := make([]float64, dimension)
	for i := range vec {
		h := fnv.New64a()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i)})
		vec[i] = float64(h.Sum64()%1000) / 1000.0
	}
	return vec, nil
}
