package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docslice/internal/chunker"
	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/parser"
)

// Result is the segmentation outcome for one document.
type Result struct {
	Filename       string           `json:"filename,omitempty"`
	Kind           string           `json:"kind"`
	Family         string           `json:"family,omitempty"`
	Example        string           `json:"example,omitempty"`
	ChapterPattern string           `json:"chapter_pattern,omitempty"`
	ArticlePattern string           `json:"article_pattern,omitempty"`
	ContentHash    string           `json:"content_hash"`
	EstTokens      int              `json:"est_tokens"`
	Chunks         []doctree.Chunk  `json:"chunks"`
	Text           string           `json:"text,omitempty"`
	Outline        *doctree.DocTree `json:"outline"`
}

// Processor runs extraction, detection, segmentation and assembly.
// It holds no per-document state and is safe for concurrent use.
type Processor struct {
	catalog    chunker.Catalog
	parserOpts parser.Options
	splitter   string
	log        *slog.Logger
}

func NewProcessor(catalog chunker.Catalog, parserOpts parser.Options, defaultSplitter string, log *slog.Logger) *Processor {
	if defaultSplitter == "" {
		defaultSplitter = chunker.DefaultSplitter
	}
	return &Processor{
		catalog:    catalog,
		parserOpts: parserOpts,
		splitter:   defaultSplitter,
		log:        log,
	}
}

// Catalog returns the pattern families used for detection.
func (p *Processor) Catalog() chunker.Catalog {
	return p.catalog
}

// Extract turns an uploaded file into plain text.
func (p *Processor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	ps, err := parser.ForFile(filename, p.parserOpts)
	if err != nil {
		return "", &ValidationError{Field: "file", Err: err}
	}
	text, err := ps.Parse(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filename, err)
	}
	return text, nil
}

// ProcessFile extracts and segments a file.
func (p *Processor) ProcessFile(ctx context.Context, data []byte, filename string, opts Options) (*Result, error) {
	text, err := p.Extract(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	return p.ProcessText(ctx, text, filename, opts)
}

// ProcessText segments already-extracted text. filename is only used for
// labelling and for filename_in_chunk.
func (p *Processor) ProcessText(ctx context.Context, text, filename string, opts Options) (*Result, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, chunks, err := chunker.Split(text, opts.Patterns, p.catalog)
	if err != nil {
		var compileErr *chunker.PatternCompileError
		if errors.As(err, &compileErr) || errors.Is(err, chunker.ErrTooManyPatterns) {
			return nil, &ValidationError{Field: "patterns", Err: err}
		}
		return nil, err
	}
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}

	p.log.Info("segmented document",
		"filename", filename,
		"kind", d.Kind.String(),
		"family", d.Family,
		"example", d.Example,
		"chunks", len(chunks),
	)

	res := &Result{
		Filename:       filename,
		Kind:           d.Kind.String(),
		Family:         d.Family,
		Example:        d.Example,
		ChapterPattern: d.Chapter.String(),
		ArticlePattern: d.Article.String(),
		ContentHash:    ContentHashHex([]byte(text)),
		EstTokens:      chunker.EstimateChunkTokens(chunks),
		Chunks:         chunks,
		Outline:        doctree.Build(filename, chunks),
	}

	if opts.OutputFormat == FormatTXT {
		splitter := opts.ChunkSplitter
		if splitter == "" {
			splitter = p.splitter
		}
		cfg := chunker.AssembleConfig{Splitter: splitter, LengthLimit: opts.LengthLimit}
		if opts.FilenameInChunk {
			cfg.Filename = filename
		}
		res.Text = chunker.Assemble(chunks, cfg)
	}
	return res, nil
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
