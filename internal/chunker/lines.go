package chunker

import "strings"

// contentLines splits text on every line boundary and returns the trimmed,
// non-blank lines in order.
func contentLines(text string) []string {
	fields := strings.FieldsFunc(text, isLineBreak)
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if line := strings.TrimSpace(f); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
