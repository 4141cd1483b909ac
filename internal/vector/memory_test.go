package vector

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	ids := []string{"a", "b", "c"}
	if err := idx.Add(ctx, ids, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", results[0].ID, results[1].ID)
	}
	if math.Abs(results[0].Distance()) > 1e-9 {
		t.Errorf("identical vector should have zero distance, got %f", results[0].Distance())
	}
}

func TestMemoryIndex_SearchKLargerThanIndex(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}})
	results, err := idx.Search(ctx, []float32{0, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestMemoryIndex_Errors(t *testing.T) {
	if _, err := NewMemoryIndex(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	if err := idx.Add(ctx, []string{"a"}, [][]float32{{1, 0, 0}}); err == nil {
		t.Error("expected dimension mismatch on Add")
	}
	if err := idx.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0}}); err == nil {
		t.Error("expected length mismatch on Add")
	}
	if _, err := idx.Search(ctx, []float32{1}, 1); err == nil {
		t.Error("expected dimension mismatch on Search")
	}
}

func TestMemoryIndex_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx", "vectors.bin")
	ctx := context.Background()
	idx, _ := NewMemoryIndex(2)
	_ = idx.Add(ctx, []string{"chunk-one", "chunk-two"}, [][]float32{{1, 0}, {0.6, 0.8}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewMemoryIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 2 {
		t.Fatalf("loaded size = %d", loaded.Size())
	}
	results, _ := loaded.Search(ctx, []float32{0, 1}, 1)
	if results[0].ID != "chunk-two" {
		t.Errorf("top result = %s, want chunk-two", results[0].ID)
	}

	wrongDims, _ := NewMemoryIndex(3)
	if err := wrongDims.Load(path); err == nil {
		t.Error("expected dimension mismatch on Load")
	}
	if err := loaded.Load(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMemoryIndex_Capabilities(t *testing.T) {
	idx, _ := NewMemoryIndex(1)
	if !idx.Capabilities().Scores {
		t.Error("memory index should declare scores")
	}
}

func TestVectorResult_Distance(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		want       float64
	}{
		{"identical", 1, 0},
		{"orthogonal", 0, 2},
		{"opposite", -1, 4},
		{"close", 0.9, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &VectorResult{ID: "x", Similarity: tt.similarity}
			if got := r.Distance(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryIndex_SearchOrthogonalDistance(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}})
	results, err := idx.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || math.Abs(results[0].Distance()-2) > 1e-9 {
		t.Errorf("orthogonal unit vectors should be at squared distance 2, got %+v", results)
	}
}
