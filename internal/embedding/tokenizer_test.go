package embedding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("hello world", 10)
	if len(ids) != 10 {
		t.Errorf("len(ids)=%d", len(ids))
	}
	if ids[0] != clsID {
		t.Errorf("expected CLS 101, got %d", ids[0])
	}
	if ids[3] != sepID {
		t.Errorf("expected SEP after two words, got %d", ids[3])
	}
	if attn[0] != 1 || attn[3] != 1 || attn[4] != 0 {
		t.Errorf("unexpected attention mask %v", attn)
	}
}

func writeVocab(t *testing.T) string {
	t.Helper()
	tokens := []string{"[PAD]"}
	for i := 1; i < 100; i++ {
		tokens = append(tokens, "[unused]")
	}
	tokens = append(tokens, "[UNK]", "[CLS]", "[SEP]", "input", "tax", "credit", "gst", "##r", "-", "1")
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(strings.Join(tokens, "\n")), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWordPieceTokenizer_Tokenize(t *testing.T) {
	tok, err := LoadWordPieceTokenizer(writeVocab(t))
	if err != nil {
		t.Fatal(err)
	}
	// input=103 tax=104 credit=105 gst=106 ##r=107 -=108 1=109
	ids, attn, types := tok.Tokenize("Input Tax Credit GSTR-1 zzz", 16)
	want := []int64{clsID, 103, 104, 105, 106, 107, 108, 109, unkID, sepID}
	for i, w := range want {
		if ids[i] != w {
			t.Fatalf("ids[%d] = %d, want %d (ids=%v)", i, ids[i], w, ids)
		}
		if attn[i] != 1 {
			t.Errorf("attn[%d] = 0", i)
		}
	}
	if ids[len(want)] != padID || attn[len(want)] != 0 {
		t.Error("expected padding after SEP")
	}
	if len(types) != 16 {
		t.Errorf("token types length = %d", len(types))
	}
}

func TestWordPieceTokenizer_Truncates(t *testing.T) {
	tok, err := LoadWordPieceTokenizer(writeVocab(t))
	if err != nil {
		t.Fatal(err)
	}
	ids, _, _ := tok.Tokenize(strings.Repeat("tax ", 50), 8)
	if len(ids) != 8 || ids[0] != clsID || ids[6] != 104 || ids[7] != sepID {
		t.Errorf("unexpected truncation %v", ids)
	}
}

func TestLoadWordPieceTokenizer_Missing(t *testing.T) {
	if _, err := LoadWordPieceTokenizer(filepath.Join(t.TempDir(), "none.txt")); err == nil {
		t.Error("expected error for missing vocab")
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  a  b  c  ")
	if len(words) != 3 {
		t.Errorf("expected 3 words, got %v", words)
	}
	if SplitWords("") != nil {
		t.Error("empty string should return nil")
	}
}

func TestHashString(t *testing.T) {
	h := HashString("abc")
	if h == 0 {
		t.Error("hash should be non-zero")
	}
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
}
