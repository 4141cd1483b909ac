package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// DocumentID returns a stable ID for the document at absPath with the given
// content. Rebuilding an unchanged file yields the same ID.
func DocumentID(absPath, content string) string {
	h := sha256.New()
	h.Write([]byte(filepath.Clean(absPath)))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return "doc:" + hex.EncodeToString(h.Sum(nil))[:32]
}
