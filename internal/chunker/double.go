package chunker

import (
	"strings"

	"github.com/dgallion1/docslice/internal/doctree"
)

type scanState int

const (
	stateIdle          scanState = iota // nothing buffered
	stateInChapterOnly                  // loose lines under the current chapter
	stateInArticle                      // an article heading plus its lines
)

type lineKind int

const (
	lineText lineKind = iota
	lineChapter
	lineArticle
)

// scan is the accumulator carried across lines by SegmentDouble.
type scan struct {
	state   scanState
	chapter string
	article string
	buf     []string
	out     []doctree.Chunk
}

// SegmentDouble rebuilds the chapter/article hierarchy of text.
//
// Chapter heading lines are never content: they close whatever is buffered
// and become the chapter of the chunks that follow. An article heading closes
// the previous article (or the loose lines before it) and is the first content
// line of its own chunk. Adjacent chapter headings, and a trailing one, yield
// a chunk with empty content so no chapter disappears. This includes a chapter
// heading on the very last line, which is emitted on purpose.
func SegmentDouble(text string, chapter, article *Pattern) []doctree.Chunk {
	var s scan
	for _, line := range contentLines(text) {
		s = s.step(classify(line, chapter, article), line)
	}
	return s.finish()
}

// classify checks the chapter pattern first; a line matching both is a chapter.
func classify(line string, chapter, article *Pattern) lineKind {
	switch {
	case chapter.Match(line):
		return lineChapter
	case article.Match(line):
		return lineArticle
	default:
		return lineText
	}
}

func (s scan) step(kind lineKind, line string) scan {
	switch kind {
	case lineChapter:
		if s.state == stateIdle {
			if s.chapter != "" {
				s.out = append(s.out, doctree.Chunk{Chapter: s.chapter})
			}
		} else {
			s = s.flush()
		}
		s.chapter = line

	case lineArticle:
		if s.state != stateIdle {
			s = s.flush()
		}
		s.article = line
		s.buf = []string{line}
		s.state = stateInArticle

	default:
		s.buf = append(s.buf, line)
		if s.state == stateIdle {
			s.state = stateInChapterOnly
		}
	}
	return s
}

// flush emits the buffered lines under the current headings and returns to idle.
func (s scan) flush() scan {
	s.out = append(s.out, doctree.Chunk{
		Chapter: s.chapter,
		Article: s.article,
		Content: strings.Join(s.buf, "\n"),
	})
	s.article = ""
	s.buf = nil
	s.state = stateIdle
	return s
}

func (s scan) finish() []doctree.Chunk {
	if s.state != stateIdle {
		return s.flush().out
	}
	if s.chapter != "" {
		// Document ends on a chapter heading with no body.
		s.out = append(s.out, doctree.Chunk{Chapter: s.chapter})
	}
	return s.out
}
