package summary

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// renderText prints v as an indented tree, one line per container or
// leaf, followed by a grouped-digit parameter count.
func renderText(w io.Writer, v any, opts Options) error {
	ew := &errWriter{w: w}
	p := message.NewPrinter(language.English)

	parents := []string{}
	tree.Walk(v, func(path string, depth int, lv any, leaf bool) bool {
		indent := strings.Repeat(" ", depth*opts.IndentSize)
		seg := path
		if depth > 0 {
			seg = strings.TrimPrefix(strings.TrimPrefix(path, parents[depth-1]), ".")
		}

		if leaf {
			fmt.Fprintf(ew, "%s%s\n", indent, headline(seg, leafLabel(p, lv, opts)))
			return true
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			fmt.Fprintf(ew, "%s%s\n", indent,
				headline(seg, p.Sprintf("%s (%d leaves)", containerLabel(lv), tree.NumLeaves(lv))))
			return false
		}
		fmt.Fprintf(ew, "%s%s\n", indent, headline(seg, containerLabel(lv)))

		if len(parents) == depth {
			parents = append(parents, path)
		} else {
			parents = parents[:depth+1]
			parents[depth] = path
		}
		return true
	})

	params, tensors := Count(v)
	p.Fprintf(ew, "\n%d tensors, %d params\n", tensors, params)
	return ew.err
}

func headline(seg, label string) string {
	if seg == "" {
		return label
	}
	return seg + ": " + label
}

// containerLabel names a container: record type, or element type and
// length for slices and maps.
func containerLabel(v any) string {
	if r, ok := v.(*tree.Rec); ok {
		return fmt.Sprintf("shadow of %s", r.Type())
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return fmt.Sprintf("%T len %d", v, rv.Len())
	}
	return fmt.Sprintf("%T", v)
}

// leafLabel names a leaf: dtype, shape and size for tensors, type and
// value for everything else.
func leafLabel(p *message.Printer, v any, opts Options) string {
	if v == nil {
		return "nil"
	}
	if d, ok := v.(*tensor.Dense); ok {
		if d == nil {
			return "*tensor.Dense (nil)"
		}
		s := fmt.Sprintf("%s%v ", d.DType(), d.Shape()) + p.Sprintf("%d params", d.Len())
		if opts.ShowValues && opts.MaxElems > 0 && d.Len() <= opts.MaxElems {
			s += fmt.Sprintf(" = %v", d.Float64s())
		}
		return s
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return fmt.Sprintf("%T (nil)", v)
		}
	}
	if !opts.ShowValues {
		return fmt.Sprintf("%T", v)
	}
	return fmt.Sprintf("%T = %s", v, clamp(renderValue(v), opts.MaxValueLen))
}

func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

func clamp(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
