// Package indexer splits the source document into section chunks and builds the index.
package indexer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/hyperjump/fintax/internal/models"
)

// UnknownSection labels the single section of a document without markers.
const UnknownSection = "Unknown"

// DefaultChunkSize is the chunk length in characters.
const DefaultChunkSize = 500

// sectionMarker matches "Section 12." and "Section 12:". Case-sensitive. The
// separator is any Unicode whitespace (NBSP and \v included) and the number any
// decimal digits, not only ASCII.
var sectionMarker = regexp.MustCompile(`Section[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+\p{Nd}+[.:]`)

// isSpace reports Unicode whitespace plus the ASCII separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// SplitSections splits text at every section marker. Each section runs from its
// marker to the next one; its text is the trimmed label, a space, and the body,
// with the whole trimmed. Text before the first marker belongs to no section.
// Text without markers yields one Unknown section holding the text unchanged.
func SplitSections(text string) []models.Section {
	locs := sectionMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []models.Section{{Label: UnknownSection, Text: text}}
	}
	sections := make([]models.Section, 0, len(locs))
	for i, loc := range locs {
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		label := trimSpace(text[loc[0]:loc[1]])
		body := text[loc[1]:bodyEnd]
		sections = append(sections, models.Section{
			Label: label,
			Text:  trimSpace(label + " " + body),
		})
	}
	return sections
}

// Chunker cuts section text into fixed-length character windows.
type Chunker struct {
	chunkSize int
}

// NewChunker creates a chunker producing chunks of chunkSize characters
// (DefaultChunkSize when chunkSize <= 0).
func NewChunker(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{chunkSize: chunkSize}
}

// Size returns the chunk length in characters.
func (c *Chunker) Size() int {
	return c.chunkSize
}

// Chunk splits the document into sections and each section into chunks, in
// section order then ordinal order. It returns models.ErrNoContent when the
// document is empty or whitespace-only.
func (c *Chunker) Chunk(doc *models.Document) ([]*models.DocumentChunk, error) {
	if trimSpace(doc.Content) == "" {
		return nil, models.ErrNoContent
	}
	var chunks []*models.DocumentChunk
	for _, section := range SplitSections(doc.Content) {
		for i, piece := range c.Split(section.Text) {
			chunks = append(chunks, &models.DocumentChunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Source:     doc.Source,
				Section:    section.Label,
				ChunkIndex: i,
				Content:    piece,
			})
		}
	}
	return chunks, nil
}

// Split cuts text into consecutive pieces of chunkSize characters, the last
// holding the remainder. Characters are code points, so multi-byte text is never
// split mid-character. Empty text yields no pieces.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)+c.chunkSize-1)/c.chunkSize)
	for start := 0; start < len(runes); start += c.chunkSize {
		end := min(start+c.chunkSize, len(runes))
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
