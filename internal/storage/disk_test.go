package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "chunks.db"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "keyword.bleve")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "store"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := DiskUsageBytes(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("got %d bytes, want 7", got)
	}
}

func TestDiskUsageBytes_missingOrEmpty(t *testing.T) {
	got, err := DiskUsageBytes(filepath.Join(t.TempDir(), "gone"))
	if err != nil || got != 0 {
		t.Errorf("missing dir: got %d, %v", got, err)
	}
	got, err = DiskUsageBytes("")
	if err != nil || got != 0 {
		t.Errorf("empty path: got %d, %v", got, err)
	}
}
