package chunker

import (
	"strings"

	"github.com/dgallion1/docslice/internal/doctree"
)

// SegmentSingle splits text at every line matching chapter. Each heading line
// opens a new chunk and is its first content line; anything before the first
// heading forms a chunk of its own. Chapter and article fields stay empty.
func SegmentSingle(text string, chapter *Pattern) []doctree.Chunk {
	var chunks []doctree.Chunk
	var buf []string

	for _, line := range contentLines(text) {
		if chapter.Match(line) && len(buf) > 0 {
			chunks = append(chunks, doctree.Chunk{Content: strings.Join(buf, "\n")})
			buf = nil
		}
		buf = append(buf, line)
	}
	if len(buf) > 0 {
		chunks = append(chunks, doctree.Chunk{Content: strings.Join(buf, "\n")})
	}

	return chunks
}
