package chunker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadCatalog_YAML(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", `
families:
  - name: english
    chapter: 'Chapter \d+'
    article: 'Article \d+'
    example: Chapter 1 / Article 1
  - name: parts
    chapter: '^Part [IVX]+'
    article: '^\d+\.'
`)
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fams := cat.Families()
	if len(fams) != 2 {
		t.Fatalf("expected 2 families, got %d", len(fams))
	}
	if fams[0].Name != "english" || fams[1].Name != "parts" {
		t.Errorf("expected file order [english parts], got [%s %s]", fams[0].Name, fams[1].Name)
	}
	if fams[0].Example != "Chapter 1 / Article 1" {
		t.Errorf("expected example to be kept, got %q", fams[0].Example)
	}

	d := Detect("Part I\n1. Scope\n", cat)
	if d.Kind != KindDouble || d.Family != "parts" {
		t.Errorf("expected double detection from %q, got %s %q", "parts", d.Kind, d.Family)
	}
}

func TestLoadCatalog_TOML(t *testing.T) {
	path := writeCatalog(t, "catalog.toml", `
[[families]]
name = "english"
chapter = 'Chapter \d+'
article = 'Article \d+'
`)
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected 1 family, got %d", cat.Len())
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unsupported extension", "catalog.json", `{}`},
		{"no families", "catalog.yaml", "families: []\n"},
		{"unknown yaml field", "catalog.yaml", "families:\n  - name: a\n    chapter: x\n    article: y\n    weight: 3\n"},
		{"unknown toml key", "catalog.toml", "[[families]]\nname = \"a\"\nchapter = \"x\"\narticle = \"y\"\nweight = 3\n"},
		{"missing article", "catalog.yaml", "families:\n  - name: a\n    chapter: x\n"},
		{"duplicate names", "catalog.yaml", "families:\n  - {name: a, chapter: x, article: y}\n  - {name: a, chapter: x, article: y}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadCatalog(writeCatalog(t, tc.file, tc.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadCatalog_BadExpression(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", "families:\n  - {name: a, chapter: 'x(', article: y}\n")
	_, err := LoadCatalog(path)
	var compileErr *PatternCompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("expected PatternCompileError, got %v", err)
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
