package pipeline

import "unicode/utf8"

// maxMessageBytes is the hard cap on one message, measured in UTF-8 bytes.
const maxMessageBytes = 300

// ClampUTF8 truncates s to at most maxBytes of UTF-8, always cutting on
// a rune boundary.
func ClampUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	total := 0
	for i, r := range s {
		size := utf8.RuneLen(r)
		if total+size > maxBytes {
			return s[:i]
		}
		total += size
	}
	return s
}
