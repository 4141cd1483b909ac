// Package vector provides the chunk embedding index and similarity search.
package vector

import (
	"context"

	"github.com/hyperjump/fintax/internal/models"
)

// VectorIndex defines vector storage and similarity search.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Capabilities() models.Capabilities
	Close() error
}

// VectorResult is a single vector search hit; ID is the chunk ID.
type VectorResult struct {
	ID         string
	Similarity float64 // inner product, cosine similarity for normalized vectors
}

// Distance returns the squared Euclidean distance of the hit. For unit vectors
// this is 2 - 2*cos, ranging from 0 (identical) to 4 (opposite).
func (r *VectorResult) Distance() float64 {
	return 2 * (1 - r.Similarity)
}
