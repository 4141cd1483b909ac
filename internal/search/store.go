// Package search retrieves the chunks most relevant to a question.
package search

import (
	"context"
	"fmt"

	"github.com/hyperjump/fintax/internal/embedding"
	"github.com/hyperjump/fintax/internal/keyword"
	"github.com/hyperjump/fintax/internal/models"
	"github.com/hyperjump/fintax/internal/vector"
)

// Hit is one ranked chunk from a Store. Distance is meaningful only when the
// store's capabilities declare scores.
type Hit struct {
	ChunkID  string
	Distance float64
}

// Store ranks chunk IDs for a question.
type Store interface {
	Search(ctx context.Context, question string, k int) ([]Hit, error)
	Capabilities() models.Capabilities
}

// SemanticStore embeds the question and searches the vector index.
type SemanticStore struct {
	embedder embedding.Embedder
	vectors  vector.VectorIndex
}

// NewSemanticStore creates a store over a vector index.
func NewSemanticStore(embedder embedding.Embedder, vectors vector.VectorIndex) *SemanticStore {
	return &SemanticStore{embedder: embedder, vectors: vectors}
}

// Search returns the k nearest chunks with their squared L2 distance.
func (s *SemanticStore) Search(ctx context.Context, question string, k int) ([]Hit, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	results, err := s.vectors.Search(ctx, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{ChunkID: r.ID, Distance: r.Distance()}
	}
	return hits, nil
}

// Capabilities delegates to the vector index.
func (s *SemanticStore) Capabilities() models.Capabilities {
	return s.vectors.Capabilities()
}

// KeywordStore searches the keyword index.
type KeywordStore struct {
	keywords keyword.KeywordIndex
}

// NewKeywordStore creates a store over a keyword index.
func NewKeywordStore(keywords keyword.KeywordIndex) *KeywordStore {
	return &KeywordStore{keywords: keywords}
}

// Search returns up to k chunks by keyword relevance.
func (s *KeywordStore) Search(ctx context.Context, question string, k int) ([]Hit, error) {
	results, err := s.keywords.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{ChunkID: r.ID}
	}
	return hits, nil
}

// Capabilities delegates to the keyword index.
func (s *KeywordStore) Capabilities() models.Capabilities {
	return s.keywords.Capabilities()
}
