package indexer

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Preprocess strips a UTF-8 byte order mark and normalizes CRLF and CR line
// endings to LF. Other whitespace is preserved: chunk boundaries are character
// offsets into the section text.
func Preprocess(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	return lineEndings.Replace(text)
}
