package search

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/fintax/internal/embedding"
	"github.com/hyperjump/fintax/internal/indexer"
	"github.com/hyperjump/fintax/internal/models"
	"github.com/hyperjump/fintax/internal/storage"
)

type fakeStore struct {
	hits   []Hit
	scores bool
	err    error
	calls  int
}

func (f *fakeStore) Search(ctx context.Context, question string, k int) ([]Hit, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeStore) Capabilities() models.Capabilities {
	return models.Capabilities{Scores: f.scores}
}

type mapLookup map[string]*models.DocumentChunk

func (m mapLookup) GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error) {
	if ch, ok := m[id]; ok {
		return ch, nil
	}
	return nil, fmt.Errorf("chunk %s: %w", id, storage.ErrNotFound)
}

func testChunks() mapLookup {
	return mapLookup{
		"a":  {ID: "a", Source: "gst.txt", Section: "Section 16.", ChunkIndex: 0, Content: "  Section 16. Input tax credit.\n"},
		"a2": {ID: "a2", Source: "gst.txt", Section: "Section 16.", ChunkIndex: 0, Content: "duplicate of a"},
		"b":  {ID: "b", Source: "gst.txt", Section: "Section 16.", ChunkIndex: 1, Content: "conditions apply"},
		"c":  {ID: "c", Source: "gst.txt", Section: "Section 17.", ChunkIndex: 0, Content: "apportionment"},
	}
}

func TestRetriever_Kind(t *testing.T) {
	if k := NewRetriever(&fakeStore{scores: true}, testChunks(), 3).Kind(); k != ScoredResult {
		t.Errorf("scored store: kind = %s", k)
	}
	if k := NewRetriever(&fakeStore{scores: false}, testChunks(), 3).Kind(); k != UnscoredResult {
		t.Errorf("unscored store: kind = %s", k)
	}
	if NewRetriever(&fakeStore{}, testChunks(), 0).TopK() != DefaultTopK {
		t.Error("non-positive k should use the default")
	}
}

func TestRetriever_RetrieveScored(t *testing.T) {
	store := &fakeStore{scores: true, hits: []Hit{
		{ChunkID: "a", Distance: 0.123456},
		{ChunkID: "a2", Distance: 0.2},
		{ChunkID: "c", Distance: 0.99999},
	}}
	r := NewRetriever(store, testChunks(), 3)
	results, err := r.Retrieve(context.Background(), "  input tax credit ")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("Retrieve should not dedupe: got %d", len(results))
	}
	if results[0].Score == nil || *results[0].Score != 0.1235 {
		t.Errorf("score = %v, want 0.1235", results[0].Score)
	}
	if *results[2].Score != 1 {
		t.Errorf("score = %v, want 1", *results[2].Score)
	}
	if results[0].Content != "  Section 16. Input tax credit.\n" {
		t.Errorf("Retrieve should keep raw content, got %q", results[0].Content)
	}
}

func TestRetriever_QueryDedupesAndTrims(t *testing.T) {
	store := &fakeStore{scores: false, hits: []Hit{{ChunkID: "a"}, {ChunkID: "b"}, {ChunkID: "a2"}}}
	r := NewRetriever(store, testChunks(), 3)
	results, err := r.Query(context.Background(), "credit")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 unique results, got %d", len(results))
	}
	if results[0].Content != "Section 16. Input tax credit." {
		t.Errorf("first occurrence should win and be trimmed, got %q", results[0].Content)
	}
	if results[1].ChunkIndex != 1 {
		t.Errorf("order not preserved: %+v", results[1])
	}
	for _, res := range results {
		if res.Score != nil {
			t.Errorf("unscored retriever produced score %v", *res.Score)
		}
	}
}

func TestRetriever_Errors(t *testing.T) {
	ctx := context.Background()

	var nilRetriever *Retriever
	if _, err := nilRetriever.Retrieve(ctx, "q"); !errors.Is(err, models.ErrNotInitialized) {
		t.Errorf("nil retriever: err = %v", err)
	}

	store := &fakeStore{scores: true}
	r := NewRetriever(store, testChunks(), 3)
	if _, err := r.Query(ctx, " \t"); !errors.Is(err, models.ErrEmptyQuestion) {
		t.Errorf("blank question: err = %v", err)
	}
	if store.calls != 0 {
		t.Error("blank question must not reach the store")
	}

	store.err = errors.New("boom")
	if _, err := r.Query(ctx, "q"); err == nil {
		t.Error("expected store error")
	}

	missing := NewRetriever(&fakeStore{hits: []Hit{{ChunkID: "gone"}}}, testChunks(), 3)
	if _, err := missing.Retrieve(ctx, "q"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown chunk: err = %v", err)
	}
}

func TestDedupe(t *testing.T) {
	one := 0.1
	two := 0.2
	in := []*models.QueryResult{
		{Section: "Section 1.", ChunkIndex: 0, Content: "first", Score: &one},
		{Section: "Section 1.", ChunkIndex: 1, Content: "second"},
		{Section: "Section 1.", ChunkIndex: 0, Content: "dup", Score: &two},
		{Section: "Section 2.", ChunkIndex: 0, Content: "third"},
		{Section: "Section 2.", ChunkIndex: 0, Content: "dup2"},
	}
	out := Dedupe(in)
	want := []string{"first", "second", "third"}
	if len(out) != len(want) {
		t.Fatalf("got %d results, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i].Content != want[i] {
			t.Errorf("out[%d] = %q, want %q", i, out[i].Content, want[i])
		}
	}
	if *out[0].Score != 0.1 {
		t.Error("first occurrence should be kept with its score")
	}
	if len(Dedupe(nil)) != 0 {
		t.Error("nil input should yield empty output")
	}
}

func TestRoundScore(t *testing.T) {
	tests := map[float64]float64{
		0:         0,
		0.12344:   0.1234,
		0.12346:   0.1235,
		1.0000001: 1,
		-0.00004:  0,
	}
	for in, want := range tests {
		if got := RoundScore(in); got != want {
			t.Errorf("RoundScore(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestRetriever_BuiltIndex(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "gst.txt")
	content := "Section 22. Every supplier shall be liable to be registered if aggregate turnover exceeds twenty lakh rupees.\n" +
		"Section 16. Every registered person shall be entitled to take credit of input tax.\n" +
		"Section 9. There shall be levied a tax called the central goods and services tax."
	if err := writeFile(src, content); err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewHashEmbedder(256)
	idx, err := indexer.NewBuilder(emb, 500).Build(context.Background(), src, filepath.Join(dir, "idx"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	ctx := context.Background()
	semantic := NewRetriever(NewSemanticStore(emb, idx.Vectors), idx.Storage, 3)
	results, err := semantic.Query(ctx, "liable to be registered turnover")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || results[0].Section != "Section 22." {
		t.Fatalf("semantic results = %+v", results)
	}
	if results[0].Score == nil || *results[0].Score < 0 || *results[0].Score > 4 {
		t.Errorf("unexpected score %v", results[0].Score)
	}

	kw := NewRetriever(NewKeywordStore(idx.Keywords), idx.Storage, 3)
	if kw.Kind() != UnscoredResult {
		t.Error("keyword retriever should be unscored")
	}
	results, err = kw.Query(ctx, "input")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Section != "Section 16." || results[0].Score != nil {
		t.Errorf("keyword results = %+v", results)
	}
	if !strings.HasPrefix(results[0].Content, "Section 16.") {
		t.Errorf("content = %q", results[0].Content)
	}
}
