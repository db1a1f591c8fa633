package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrTooManyPatterns is returned when a caller supplies more than a chapter
// and an article expression.
var ErrTooManyPatterns = errors.New("at most two patterns (chapter, article) may be supplied")

// PatternCompileError reports a caller-supplied expression that is not a
// valid regular expression.
type PatternCompileError struct {
	Expr string
	Err  error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("compile pattern %q: %v", e.Expr, e.Err)
}

func (e *PatternCompileError) Unwrap() error {
	return e.Err
}

// Pattern matches heading lines. It is anchored to the start of the line and
// only needs to match a prefix; whatever follows the match is ignored.
// A compiled Pattern is safe for concurrent use.
type Pattern struct {
	expr string
	re   *regexp.Regexp
}

// CompilePattern compiles expr into a line-start anchored Pattern.
func CompilePattern(expr string) (*Pattern, error) {
	// Wrapped even when expr starts with "^" so an alternation stays anchored.
	re, err := regexp.Compile("^(?:" + expr + ")")
	if err != nil {
		return nil, &PatternCompileError{Expr: expr, Err: err}
	}
	return &Pattern{expr: expr, re: re}, nil
}

// CleanPatterns drops blank expressions. An empty expression would compile to
// a pattern matching every line.
func CleanPatterns(exprs []string) []string {
	var out []string
	for _, e := range exprs {
		if strings.TrimSpace(e) != "" {
			out = append(out, e)
		}
	}
	return out
}

// MustCompilePattern is like CompilePattern but panics on error. Intended for
// package-level catalogs.
func MustCompilePattern(expr string) *Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether line starts with a heading of this pattern.
func (p *Pattern) Match(line string) bool {
	return p.re.MatchString(line)
}

// String returns the expression the pattern was compiled from.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}
