package chunker

import (
	"fmt"
)

// Family is one real-world heading numbering convention: a chapter pattern
// with an article pattern nested under it.
type Family struct {
	Name    string
	Chapter *Pattern
	Article *Pattern
	Example string // Shown in diagnostics only.
}

// Catalog is an ordered, read-only list of families. Detection tries the
// families in catalog order, so more specific conventions go first.
type Catalog struct {
	families []Family
}

// NewCatalog builds a catalog from families, preserving their order.
func NewCatalog(families ...Family) (Catalog, error) {
	seen := make(map[string]bool, len(families))
	out := make([]Family, 0, len(families))
	for i, f := range families {
		if f.Name == "" {
			return Catalog{}, fmt.Errorf("family %d: name is required", i)
		}
		if seen[f.Name] {
			return Catalog{}, fmt.Errorf("family %q: duplicate name", f.Name)
		}
		if f.Chapter == nil || f.Article == nil {
			return Catalog{}, fmt.Errorf("family %q: chapter and article patterns are required", f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return Catalog{families: out}, nil
}

// Families returns a copy of the catalog's families in order.
func (c Catalog) Families() []Family {
	out := make([]Family, len(c.families))
	copy(out, c.families)
	return out
}

// Len returns the number of families.
func (c Catalog) Len() int {
	return len(c.families)
}

// Chinese numerals used by the built-in families.
const cnDigits = `[一二三四五六七八九十百]`

var defaultCatalog = Catalog{families: []Family{
	{
		// 第一章 ... 第一条 ...
		Name:    "chapters_with_articles",
		Chapter: MustCompilePattern(`^第` + cnDigits + `+\s?章[^\n]*`),
		Article: MustCompilePattern(`^第` + cnDigits + `+\s?条[^\n]*`),
		Example: "第一章  第一条。。。",
	},
	{
		// 第一条 ... （一）...
		Name:    "articles_with_parentheses",
		Chapter: MustCompilePattern(`^第` + cnDigits + `+\s?条\s?[^\n]*`),
		Article: MustCompilePattern(`^[（(]` + cnDigits + `*?[）)][^\n]*`),
		Example: "第一条  （一）。。。",
	},
	{
		// 一、 ... （一）...
		Name:    "chinese_dots_with_articles",
		Chapter: MustCompilePattern(`^` + cnDigits + `+\s?、[^\n]*`),
		Article: MustCompilePattern(`^[（(]` + cnDigits + `*?[）)][^\n]*`),
		Example: "一、  （一）。。。",
	},
}}

// DefaultCatalog returns the built-in catalog. The patterns are compiled once
// and shared by every caller.
func DefaultCatalog() Catalog {
	return defaultCatalog
}
