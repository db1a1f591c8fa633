package chunker

import (
	"strings"

	"github.com/dgallion1/docslice/internal/doctree"
)

// Segment splits text according to d. Text without recognizable headings
// becomes a single chunk; text without any non-blank line yields no chunks.
func Segment(text string, d Detection) []doctree.Chunk {
	switch d.Kind {
	case KindDouble:
		return SegmentDouble(text, d.Chapter, d.Article)
	case KindSingle:
		return SegmentSingle(text, d.Chapter)
	default:
		lines := contentLines(text)
		if len(lines) == 0 {
			return nil
		}
		return []doctree.Chunk{{Content: strings.Join(lines, "\n")}}
	}
}

// Split resolves the heading structure of text (from exprs when given,
// otherwise by detection against catalog) and segments it.
func Split(text string, exprs []string, catalog Catalog) (Detection, []doctree.Chunk, error) {
	d, err := Resolve(text, exprs, catalog)
	if err != nil {
		return Detection{}, nil, err
	}
	return d, Segment(text, d), nil
}
