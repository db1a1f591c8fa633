package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docslice/internal/chunker"
	"github.com/dgallion1/docslice/internal/convert"
	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/parser"
	"github.com/dgallion1/docslice/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docslice",
		Short: "Split regulation documents into chapter/article chunks",
		Long: `docslice detects the heading structure of a document (chapters,
articles, numbered clauses) and splits it into chunks that each carry the
chapter and article they belong to.

Supported formats: TXT, MD, CSV, HTML, PDF, DOCX`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("catalog", "", "YAML or TOML pattern catalog (default: built-in families)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log detection details to stderr")

	root.AddCommand(splitCmd())
	root.AddCommand(detectCmd())
	root.AddCommand(familiesCmd())
	return root
}

func splitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split a document into chunks",
		Long: `Split a document into chapter/article chunks.

With --format json (default) the chunk list is printed. With --format txt the
chunks are rendered as flat text separated by --splitter, optionally packed
into groups of at most --length-limit characters.

Example:
  docslice split 审计规章.docx
  docslice split policy.pdf --format txt --length-limit 2000 --filename-in-chunk
  docslice split notes.txt --pattern '第.+章' --pattern '第.+条'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, _ := cmd.Flags().GetStringArray("pattern")
			format, _ := cmd.Flags().GetString("format")
			splitter, _ := cmd.Flags().GetString("splitter")
			lengthLimit, _ := cmd.Flags().GetInt("length-limit")
			filenameInChunk, _ := cmd.Flags().GetBool("filename-in-chunk")
			showOutline, _ := cmd.Flags().GetBool("outline")
			output, _ := cmd.Flags().GetString("output")

			proc, conv, err := newProcessor(cmd)
			if err != nil {
				return err
			}
			if conv != nil {
				defer conv.Close()
			}

			source := args[0]
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", source, err)
			}

			opts := pipeline.Options{
				Patterns:        patterns,
				OutputFormat:    format,
				ChunkSplitter:   unescape(splitter),
				LengthLimit:     lengthLimit,
				FilenameInChunk: filenameInChunk,
			}
			res, err := proc.ProcessFile(cmd.Context(), data, filepath.Base(source), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			switch {
			case showOutline:
				printOutline(out, res.Outline)
			case strings.EqualFold(strings.TrimSpace(format), pipeline.FormatTXT):
				_, err = io.WriteString(out, res.Text)
			default:
				err = writeJSON(out, res.Chunks)
			}
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d chunks (%s) to %s\n", len(res.Chunks), res.Kind, output)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayP("pattern", "p", nil, "Heading expression; give one for chapters only or two for chapter and article")
	cmd.Flags().StringP("format", "f", pipeline.FormatJSON, "Output format: json or txt")
	cmd.Flags().String("splitter", `\n\n\n\n`, `Separator between txt blocks (\n and \t are expanded)`)
	cmd.Flags().Int("length-limit", 0, "Pack txt blocks into groups of at most this many characters")
	cmd.Flags().Bool("filename-in-chunk", false, "Prefix every txt block with the file name")
	cmd.Flags().Bool("outline", false, "Print the chapter/article outline instead of chunks")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().String("mineru-url", os.Getenv("MINERU_URL"), "Conversion service URL used for PDFs")
	cmd.Flags().Duration("mineru-timeout", 300*time.Second, "Conversion service timeout")
	cmd.Flags().Bool("pdftotext", true, "Fall back to pdftotext when local PDF extraction fails")

	return cmd
}

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Report the heading structure of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, _ := cmd.Flags().GetStringArray("pattern")

			catalog, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			p, err := parser.ForFile(args[0], parser.Options{FallbackPdftotext: true})
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			text, err := p.Parse(cmd.Context(), f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			d, err := chunker.Resolve(text, patterns, catalog)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Structure: %s\n", d.Kind)
			if d.Family != "" {
				fmt.Fprintf(out, "Family:    %s\n", d.Family)
			}
			if d.Example != "" {
				fmt.Fprintf(out, "Example:   %s\n", d.Example)
			}
			if d.Chapter != nil {
				fmt.Fprintf(out, "Chapter:   %s\n", d.Chapter)
			}
			if d.Article != nil {
				fmt.Fprintf(out, "Article:   %s\n", d.Article)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayP("pattern", "p", nil, "Heading expression to use instead of detection")
	return cmd
}

func familiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the pattern families in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, f := range catalog.Families() {
				fmt.Fprintf(out, "%d. %s\n", i+1, f.Name)
				fmt.Fprintf(out, "   chapter: %s\n", f.Chapter)
				fmt.Fprintf(out, "   article: %s\n", f.Article)
				if f.Example != "" {
					fmt.Fprintf(out, "   example: %s\n", f.Example)
				}
			}
			return nil
		},
	}
}

func loadCatalog(cmd *cobra.Command) (chunker.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return chunker.DefaultCatalog(), nil
	}
	return chunker.LoadCatalog(path)
}

func newProcessor(cmd *cobra.Command) (*pipeline.Processor, *convert.Client, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	mineruURL, _ := cmd.Flags().GetString("mineru-url")
	mineruTimeout, _ := cmd.Flags().GetDuration("mineru-timeout")
	pdftotext, _ := cmd.Flags().GetBool("pdftotext")

	catalog, err := loadCatalog(cmd)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := parser.Options{FallbackPdftotext: pdftotext}
	var conv *convert.Client
	if mineruURL != "" {
		conv = convert.NewClient(mineruURL, mineruTimeout, log)
		opts.PDFConverter = conv
	}
	return pipeline.NewProcessor(catalog, opts, "", log), conv, nil
}

func printOutline(w io.Writer, tree *doctree.DocTree) {
	if tree.Title != "" {
		fmt.Fprintln(w, tree.Title)
	}
	for _, ch := range tree.Children {
		title := ch.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "- %s\n", title)
		for _, a := range ch.Children {
			fmt.Fprintf(w, "  - %s\n", a.Title)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var escapes = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t")

func unescape(s string) string {
	return escapes.Replace(s)
}
