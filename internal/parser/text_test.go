package parser

import (
	"context"
	"strings"
	"testing"
)

func TestTextParser_ReturnsContent(t *testing.T) {
	input := "第一章 总则\n第一条 目的\n\n  正文  \n"
	p := &TextParser{}
	got, err := p.Parse(context.Background(), strings.NewReader(input), "rules.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestTextParser_StripsBOM(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(context.Background(), strings.NewReader("\ufeff第一章"), "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "第一章" {
		t.Errorf("expected BOM to be stripped, got %q", got)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(context.Background(), strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestTextParser_InvalidUTF8(t *testing.T) {
	p := &TextParser{}
	if _, err := p.Parse(context.Background(), strings.NewReader("\xff\xfe\xfd"), "bad.txt"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestCSVParser_RowsBecomeLines(t *testing.T) {
	input := "name,role\nalice,admin\nbob,user,extra\n"
	p := &CSVParser{}
	got, err := p.Parse(context.Background(), strings.NewReader(input), "people.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "name: alice, role: admin\nname: bob, role: user, extra\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_BlocksBecomeLines(t *testing.T) {
	input := `<html><head><title>t</title><style>p{}</style></head><body>
<nav>menu</nav>
<h1>第一章 总则</h1>
<p>第一条 目的<br>说明</p>
<ul><li>（一）甲</li><li>（二）乙</li></ul>
<script>var x = 1;</script>
</body></html>`
	p := &HTMLParser{}
	got, err := p.Parse(context.Background(), strings.NewReader(input), "rules.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "第一章 总则\n第一条 目的\n说明\n（一）甲\n（二）乙"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

type fakeConverter struct {
	markdown string
	gotName  string
	gotData  []byte
}

func (f *fakeConverter) Convert(_ context.Context, data []byte, filename string) (string, error) {
	f.gotName = filename
	f.gotData = data
	return f.markdown, nil
}

func TestPDFParser_UsesConverter(t *testing.T) {
	conv := &fakeConverter{markdown: "# 第一章 总则\n\n第一条 目的\n"}
	p, err := ForFile("scan.pdf", Options{PDFConverter: conv})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := p.Parse(context.Background(), strings.NewReader("%PDF-1.4"), "scan.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "第一章 总则\n第一条 目的" {
		t.Errorf("expected flattened markdown, got %q", got)
	}
	if conv.gotName != "scan.pdf" || string(conv.gotData) != "%PDF-1.4" {
		t.Errorf("expected converter to receive the file, got %q %q", conv.gotName, conv.gotData)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"a.txt", true},
		{"a.MD", true},
		{"a.markdown", true},
		{"a.csv", true},
		{"a.htm", true},
		{"a.pdf", true},
		{"a.docx", true},
		{"a.doc", false},
		{"a.xlsx", false},
		{"noext", false},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename, Options{})
		if (err == nil) != tt.ok {
			t.Errorf("ForFile(%q): expected ok=%v, got err=%v", tt.filename, tt.ok, err)
		}
		if IsSupportedExtension(tt.filename) != tt.ok {
			t.Errorf("IsSupportedExtension(%q): expected %v", tt.filename, tt.ok)
		}
	}
}
