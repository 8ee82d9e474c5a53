package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func CleanToValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

// SafeText strips NUL bytes and invalid UTF-8 so text can be sent to an LLM API.
func SafeText(s string) string {
	s = CleanToValidUTF8(s)
	return strings.ReplaceAll(s, "\x00", "")
}
