package chunker

// Kind tells which heading structure a document was found to have.
type Kind int

const (
	KindNone   Kind = iota // No recognizable headings.
	KindSingle             // One heading type only; chunks carry no chapter/article.
	KindDouble             // Chapter headings with nested article headings.
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindDouble:
		return "double"
	default:
		return "none"
	}
}

// Detection is the outcome of heading detection for one document.
// For KindSingle only Chapter is set; for KindDouble both are set.
type Detection struct {
	Kind    Kind
	Family  string // Family that produced the patterns, "" for caller patterns.
	Example string
	Chapter *Pattern
	Article *Pattern
}

// None is the detection for text without recognizable headings.
func None() Detection {
	return Detection{Kind: KindNone}
}

// Single is the detection for chapter-only text split on p.
func Single(p *Pattern) Detection {
	return Detection{Kind: KindSingle, Chapter: p}
}

// Double is the detection for text with chapter and article headings.
func Double(chapter, article *Pattern) Detection {
	return Detection{Kind: KindDouble, Chapter: chapter, Article: article}
}

// Detect decides which heading structure text uses.
//
// Families are scanned in catalog order, one pass over the lines each. The
// first family whose chapter and article patterns both match somewhere in
// the text wins. Otherwise the very first pattern that matched any line
// during the whole scan is returned as a Single detection, and if nothing
// matched at all the result is None.
func Detect(text string, catalog Catalog) Detection {
	lines := contentLines(text)
	if len(lines) == 0 {
		return None()
	}

	var first *Pattern
	for _, fam := range catalog.families {
		chapterSeen, articleSeen := false, false
		for _, line := range lines {
			if fam.Chapter.Match(line) {
				chapterSeen = true
				if first == nil {
					first = fam.Chapter
				}
			}
			if fam.Article.Match(line) {
				articleSeen = true
				if first == nil {
					first = fam.Article
				}
			}
			if chapterSeen && articleSeen {
				d := Double(fam.Chapter, fam.Article)
				d.Family = fam.Name
				d.Example = fam.Example
				return d
			}
		}
	}

	if first != nil {
		d := Single(first)
		if fam, ok := catalog.owner(first); ok {
			d.Family = fam.Name
			d.Example = fam.Example
		}
		return d
	}
	return None()
}

// owner returns the family that holds p.
func (c Catalog) owner(p *Pattern) (Family, bool) {
	for _, f := range c.families {
		if f.Chapter == p || f.Article == p {
			return f, true
		}
	}
	return Family{}, false
}

// Resolve turns caller-supplied expressions into a detection: none means
// run Detect against catalog, one is a Single detection, two are the chapter
// and article of a Double detection. More than two is an error.
func Resolve(text string, exprs []string, catalog Catalog) (Detection, error) {
	exprs = CleanPatterns(exprs)
	switch len(exprs) {
	case 0:
		return Detect(text, catalog), nil
	case 1:
		p, err := CompilePattern(exprs[0])
		if err != nil {
			return Detection{}, err
		}
		return Single(p), nil
	case 2:
		chapter, err := CompilePattern(exprs[0])
		if err != nil {
			return Detection{}, err
		}
		article, err := CompilePattern(exprs[1])
		if err != nil {
			return Detection{}, err
		}
		return Double(chapter, article), nil
	default:
		return Detection{}, ErrTooManyPatterns
	}
}
