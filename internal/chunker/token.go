package chunker

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docslice/internal/doctree"
)

// EstimateTokens gives a rough token count for mixed Chinese/Latin text:
// every Han character counts as one token, and the remaining words count
// ~1.33 tokens each.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	han := 0
	rest := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Han, r) {
			han++
			return ' '
		}
		return r
	}, text)
	tokens := han + int(float64(len(strings.Fields(rest)))*1.33)
	if tokens < 1 && strings.TrimSpace(text) != "" {
		tokens = 1
	}
	return tokens
}

// EstimateChunkTokens sums EstimateTokens over the content of chunks.
func EstimateChunkTokens(chunks []doctree.Chunk) int {
	total := 0
	for _, c := range chunks {
		total += EstimateTokens(c.Content)
	}
	return total
}
