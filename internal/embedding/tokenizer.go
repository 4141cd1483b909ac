package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// BERT special token IDs shared by the uncased vocabularies.
const (
	padID = 0
	unkID = 100
	clsID = 101
	sepID = 102
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs, used when no vocabulary is available.
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	words := SplitWords(text)
	ids := make([]int64, len(words))
	for i, word := range words {
		ids[i] = int64(HashString(word) % 30000)
	}
	return pack(ids, maxTokens)
}

// WordPieceTokenizer implements greedy longest-match WordPiece over an uncased vocabulary.
type WordPieceTokenizer struct {
	vocab map[string]int64
}

// LoadWordPieceTokenizer reads a vocab.txt file with one token per line; the line number is the ID.
func LoadWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("empty vocab: %s", path)
	}
	return &WordPieceTokenizer{vocab: vocab}, nil
}

// Tokenize lowercases text, splits punctuation into separate tokens, and maps
// each word to WordPiece IDs.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	var ids []int64
	for _, word := range basicTokens(text) {
		ids = append(ids, t.wordPieces(word)...)
		if maxTokens > 0 && len(ids) >= maxTokens {
			break
		}
	}
	return pack(ids, maxTokens)
}

func (t *WordPieceTokenizer) wordPieces(word string) []int64 {
	runes := []rune(word)
	if len(runes) > 100 {
		return []int64{t.lookup("[UNK]", unkID)}
	}
	var pieces []int64
	for start := 0; start < len(runes); {
		end := len(runes)
		found := int64(-1)
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				found = id
				break
			}
			end--
		}
		if found < 0 {
			return []int64{t.lookup("[UNK]", unkID)}
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}

func (t *WordPieceTokenizer) lookup(token string, fallback int64) int64 {
	if id, ok := t.vocab[token]; ok {
		return id
	}
	return fallback
}

// basicTokens lowercases and splits on whitespace, emitting punctuation as its own token.
func basicTokens(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// pack wraps ids in [CLS] ... [SEP], truncating and padding to maxTokens.
func pack(ids []int64, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsID
	attentionMask[0] = 1

	pos := 1
	for _, id := range ids {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = id
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sepID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// SplitWords splits text on whitespace and returns non-empty words.
func SplitWords(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	return words
}

// HashString returns a deterministic non-negative hash for use as a simple token ID.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -(h + 1)
	}
	return h
}
