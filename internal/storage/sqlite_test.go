package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/fintax/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "chunks.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_Document(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "file:abc", Source: "sample2.txt", Path: "/tmp/sample2.txt", Content: "Section 1. Intro"}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetDocument(ctx, "file:abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != "sample2.txt" || got.Content != "Section 1. Intro" {
		t.Errorf("got %+v", got)
	}

	_, err = store.GetDocument(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_Chunks(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_ = store.CreateDocument(ctx, &models.Document{ID: "d1", Source: "s.txt", Path: "s.txt", Content: "C"})

	chunks := []*models.DocumentChunk{
		{ID: "c1", DocumentID: "d1", Source: "s.txt", Section: "Section 2.", ChunkIndex: 0, Content: "second"},
		{ID: "c2", DocumentID: "d1", Source: "s.txt", Section: "Section 1.", ChunkIndex: 0, Content: "first"},
		{ID: "c3", DocumentID: "d1", Source: "s.txt", Section: "Section 1.", ChunkIndex: 1, Content: "first tail"},
	}
	if err := store.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatal(err)
	}

	list, err := store.GetChunksByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(list))
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if list[i].ID != want {
			t.Errorf("chunk %d = %s, want %s (insertion order)", i, list[i].ID, want)
		}
	}

	got, err := store.GetChunk(ctx, "c3")
	if err != nil {
		t.Fatal(err)
	}
	if got.Section != "Section 1." || got.ChunkIndex != 1 || got.Content != "first tail" || got.Source != "s.txt" {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetChunk(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	n, err := store.CountDocuments(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountDocuments: %v, %d", err, n)
	}
	_ = store.CreateDocument(ctx, &models.Document{ID: "x", Source: "x", Path: "x", Content: "c"})
	_ = store.BatchCreateChunks(ctx, []*models.DocumentChunk{
		{ID: "x1", DocumentID: "x", Source: "x", Section: "Unknown", Content: "c"},
	})
	n, _ = store.CountDocuments(ctx)
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
	n, _ = store.CountChunks(ctx)
	if n != 1 {
		t.Errorf("expected 1 chunk, got %d", n)
	}
}
