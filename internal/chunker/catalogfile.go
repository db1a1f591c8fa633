package chunker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk form of a catalog.
//
//	families:
//	  - name: chapters_with_articles
//	    chapter: '^第[一二三四五六七八九十百]+\s?章'
//	    article: '^第[一二三四五六七八九十百]+\s?条'
//	    example: 第一章  第一条
type catalogFile struct {
	Families []familyEntry `yaml:"families" toml:"families"`
}

type familyEntry struct {
	Name    string `yaml:"name" toml:"name"`
	Chapter string `yaml:"chapter" toml:"chapter"`
	Article string `yaml:"article" toml:"article"`
	Example string `yaml:"example" toml:"example"`
}

// LoadCatalog reads a catalog from a .yaml, .yml or .toml file. Families keep
// the order they have in the file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var cf catalogFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cf); err != nil {
			return Catalog{}, fmt.Errorf("decode yaml catalog: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cf)
		if err != nil {
			return Catalog{}, fmt.Errorf("decode toml catalog: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Catalog{}, fmt.Errorf("decode toml catalog: unknown keys %v", undecoded)
		}
	default:
		return Catalog{}, fmt.Errorf("unsupported catalog format: %s", ext)
	}

	if len(cf.Families) == 0 {
		return Catalog{}, fmt.Errorf("catalog %s defines no families", path)
	}

	families := make([]Family, 0, len(cf.Families))
	for _, e := range cf.Families {
		if e.Chapter == "" || e.Article == "" {
			return Catalog{}, fmt.Errorf("family %q: chapter and article expressions are required", e.Name)
		}
		chapter, err := CompilePattern(e.Chapter)
		if err != nil {
			return Catalog{}, fmt.Errorf("family %q chapter: %w", e.Name, err)
		}
		article, err := CompilePattern(e.Article)
		if err != nil {
			return Catalog{}, fmt.Errorf("family %q article: %w", e.Name, err)
		}
		families = append(families, Family{
			Name:    e.Name,
			Chapter: chapter,
			Article: article,
			Example: e.Example,
		})
	}
	return NewCatalog(families...)
}
