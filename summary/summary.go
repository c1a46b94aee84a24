// Package summary renders module trees for humans: an indented text
// listing of containers and leaves, or a JSON document, plus total
// parameter counts.
package summary

import (
	"io"

	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

const (
	DefaultIndentSize  = 2
	DefaultMaxDepth    = 0
	DefaultMaxElems    = 8
	DefaultMaxValueLen = 64
)

// Format specifies the output format for rendering.
type Format string

const (
	// FormatText outputs human-readable indented text.
	FormatText Format = "text"

	// FormatJSON outputs a JSON document.
	FormatJSON Format = "json"
)

// Options controls rendering behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// MaxDepth limits recursion depth (0 = unlimited). Containers at
	// the limit render as a single line with their leaf count.
	// Default: 0 (unlimited)
	MaxDepth int

	// ShowValues includes scalar leaf values and the data of tensors
	// no larger than MaxElems.
	// Default: true
	ShowValues bool

	// MaxElems is the largest tensor rendered with its data when
	// ShowValues is set. Set to 0 to never render tensor data.
	// Default: 8
	MaxElems int

	// MaxValueLen limits how many characters of a scalar value to
	// display. Longer values are truncated. Set to 0 for no limit.
	// Default: 64
	MaxValueLen int
}

// DefaultOptions returns sensible defaults for rendering.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		IndentSize:  DefaultIndentSize,
		MaxDepth:    DefaultMaxDepth,
		ShowValues:  true,
		MaxElems:    DefaultMaxElems,
		MaxValueLen: DefaultMaxValueLen,
	}
}

// Render writes a summary of v to w.
//
// Example:
//
//	model, _ := nn.NewMLP(4, 16, 2, 2, nn.ActivationRelu, rng)
//	summary.Render(os.Stdout, model, summary.DefaultOptions())
func Render(w io.Writer, v any, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return renderJSON(w, v, opts)
	default:
		return renderText(w, v, opts)
	}
}

// Count returns the total number of elements held by tensor leaves of
// v and the number of such leaves. Nil tensor slots count as neither.
func Count(v any) (params, tensors int) {
	for _, leaf := range tree.Leaves(v) {
		if d, ok := leaf.(*tensor.Dense); ok && d != nil {
			params += d.Len()
			tensors++
		}
	}
	return params, tensors
}

// errWriter latches the first write failure so renderers can format
// freely and report one error at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
