// Package utils provides shared utilities for text, math, and logging.
package utils

// Truncate returns s cut to maxLen characters, with "..." appended if truncated.
// Characters are runes, so multi-byte text is never split mid-character.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
