package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser extracts the plain text of a document, one paragraph per line.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Converter turns a binary document into text through an external service.
type Converter interface {
	Convert(ctx context.Context, data []byte, filename string) (string, error)
}

// Options configures parsers that have alternative extraction paths.
type Options struct {
	// PDFConverter, when set, handles PDFs instead of local extraction.
	PDFConverter Converter
	// FallbackPdftotext shells out to pdftotext when local PDF extraction fails.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{Converter: opts.PDFConverter, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
