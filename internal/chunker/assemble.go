package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docslice/internal/doctree"
)

// DefaultSplitter separates serialized chunk groups.
const DefaultSplitter = "\n\n\n\n"

// AssembleConfig controls flat-text rendering of chunks.
type AssembleConfig struct {
	Splitter    string // Placed between groups. Empty means DefaultSplitter.
	LengthLimit int    // Max characters per group. <= 0 puts every chunk in its own group.
	Filename    string // When non-empty, prefixed as the first line of every block.
}

// Groups serializes each chunk as a block ("[filename\n]chapter\ncontent\n")
// and packs consecutive blocks into groups of at most LengthLimit characters.
// A block that alone exceeds the limit forms its own group; it is never split.
func Groups(chunks []doctree.Chunk, cfg AssembleConfig) []string {
	if cfg.LengthLimit <= 0 {
		groups := make([]string, 0, len(chunks))
		for _, c := range chunks {
			groups = append(groups, block(c, cfg.Filename))
		}
		return groups
	}

	var groups []string
	var current strings.Builder
	currentLen := 0

	for _, c := range chunks {
		b := block(c, cfg.Filename)
		n := utf8.RuneCountInString(b)
		if currentLen > 0 && currentLen+n > cfg.LengthLimit {
			groups = append(groups, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(b)
		currentLen += n
	}
	if currentLen > 0 {
		groups = append(groups, current.String())
	}

	return groups
}

// Assemble renders chunks as one flat text. Without a length limit every
// block is followed by the splitter; with a limit the splitter goes between
// groups only, so the text does not end with one.
func Assemble(chunks []doctree.Chunk, cfg AssembleConfig) string {
	splitter := cfg.Splitter
	if splitter == "" {
		splitter = DefaultSplitter
	}

	groups := Groups(chunks, cfg)
	if cfg.LengthLimit > 0 {
		return strings.Join(groups, splitter)
	}

	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(g)
		sb.WriteString(splitter)
	}
	return sb.String()
}

func block(c doctree.Chunk, filename string) string {
	var sb strings.Builder
	if filename != "" {
		sb.WriteString(filename)
		sb.WriteString("\n")
	}
	sb.WriteString(c.Chapter)
	sb.WriteString("\n")
	sb.WriteString(c.Content)
	sb.WriteString("\n")
	return sb.String()
}
