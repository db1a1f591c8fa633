package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docslice/internal/chunker"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatTXT  = "txt"
)

// Options are the per-request segmentation settings.
type Options struct {
	Patterns        []string `json:"patterns,omitempty"`
	OutputFormat    string   `json:"output_format,omitempty"`
	ChunkSplitter   string   `json:"chunk_splitter,omitempty"`
	LengthLimit     int      `json:"length_limit,omitempty"`
	FilenameInChunk bool     `json:"filename_in_chunk,omitempty"`
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Normalize validates o and fills defaults. Blank patterns are dropped so
// that empty form fields do not count as expressions.
func (o Options) Normalize() (Options, error) {
	patterns := chunker.CleanPatterns(o.Patterns)
	if len(patterns) > 2 {
		return o, &ValidationError{Field: "patterns", Err: chunker.ErrTooManyPatterns}
	}
	o.Patterns = patterns

	o.OutputFormat = strings.ToLower(strings.TrimSpace(o.OutputFormat))
	switch o.OutputFormat {
	case "":
		o.OutputFormat = FormatJSON
	case FormatJSON, FormatTXT:
	default:
		return o, &ValidationError{
			Field: "output_format",
			Err:   fmt.Errorf("%q is not one of %s, %s", o.OutputFormat, FormatJSON, FormatTXT),
		}
	}

	if o.LengthLimit < 0 {
		return o, &ValidationError{
			Field: "length_limit",
			Err:   fmt.Errorf("must not be negative, got %d", o.LengthLimit),
		}
	}
	return o, nil
}
