package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/fintax/internal/models"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// ResultKind tells whether results carry a score.
type ResultKind int

const (
	// ScoredResult results carry a rounded distance.
	ScoredResult ResultKind = iota
	// UnscoredResult results carry a null score.
	UnscoredResult
)

func (k ResultKind) String() string {
	if k == ScoredResult {
		return "scored"
	}
	return "unscored"
}

// ChunkLookup resolves chunk IDs to stored chunks.
type ChunkLookup interface {
	GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error)
}

// Retriever returns the top-k chunks for a question.
type Retriever struct {
	store  Store
	chunks ChunkLookup
	k      int
	kind   ResultKind
}

// NewRetriever creates a retriever. The result kind is fixed from the store's
// declared capabilities.
func NewRetriever(store Store, chunks ChunkLookup, k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	kind := UnscoredResult
	if store.Capabilities().Scores {
		kind = ScoredResult
	}
	return &Retriever{store: store, chunks: chunks, k: k, kind: kind}
}

// Kind returns the result shape this retriever produces.
func (r *Retriever) Kind() ResultKind {
	return r.kind
}

// TopK returns the retrieval depth.
func (r *Retriever) TopK() int {
	return r.k
}

// Retrieve returns the raw top-k chunks in retrieval order, without deduplication.
// Content is the stored chunk text, untrimmed.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]*models.QueryResult, error) {
	if r == nil || r.store == nil || r.chunks == nil {
		return nil, models.ErrNotInitialized
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, models.ErrEmptyQuestion
	}

	hits, err := r.store.Search(ctx, question, r.k)
	if err != nil {
		return nil, err
	}
	results := make([]*models.QueryResult, 0, len(hits))
	for _, hit := range hits {
		chunk, err := r.chunks.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			return nil, fmt.Errorf("resolve chunk %s: %w", hit.ChunkID, err)
		}
		result := &models.QueryResult{
			Content:    chunk.Content,
			Source:     chunk.Source,
			Section:    chunk.Section,
			ChunkIndex: chunk.ChunkIndex,
		}
		if r.kind == ScoredResult {
			score := RoundScore(hit.Distance)
			result.Score = &score
		}
		results = append(results, result)
	}
	return results, nil
}

// Query retrieves, deduplicates, and trims the content of each result.
func (r *Retriever) Query(ctx context.Context, question string) ([]*models.QueryResult, error) {
	results, err := r.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	unique := Dedupe(results)
	for _, res := range unique {
		res.Content = strings.TrimSpace(res.Content)
	}
	return unique, nil
}

type dedupeKey struct {
	section    string
	chunkIndex int
}

// Dedupe keeps the first result for each (section, chunk index) pair, preserving order.
func Dedupe(results []*models.QueryResult) []*models.QueryResult {
	seen := make(map[dedupeKey]struct{}, len(results))
	unique := make([]*models.QueryResult, 0, len(results))
	for _, res := range results {
		key := dedupeKey{section: res.Section, chunkIndex: res.ChunkIndex}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, res)
	}
	return unique
}

// RoundScore rounds a distance to 4 decimal places.
func RoundScore(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
