package summary

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// jsonNode represents one tree position in JSON format.
type jsonNode struct {
	Name     string      `json:"name,omitempty"`
	Kind     string      `json:"kind"`
	Type     string      `json:"type,omitempty"`
	Len      int         `json:"len,omitempty"`
	DType    string      `json:"dtype,omitempty"`
	Shape    []int       `json:"shape,omitempty"`
	Params   int         `json:"params,omitempty"`
	Data     []float64   `json:"data,omitempty"`
	Value    any         `json:"value,omitempty"`
	Leaves   int         `json:"leaves,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

// jsonSummary is the top-level JSON document.
type jsonSummary struct {
	Tree    *jsonNode `json:"tree"`
	Tensors int       `json:"tensors"`
	Params  int       `json:"params"`
}

func renderJSON(w io.Writer, v any, opts Options) error {
	holder := &jsonNode{}
	stack := []*jsonNode{holder}

	parents := []string{}
	tree.Walk(v, func(path string, depth int, lv any, leaf bool) bool {
		seg := path
		if depth > 0 {
			seg = trimSeg(path, parents[depth-1])
		}

		n := makeJSONNode(seg, lv, leaf, opts)
		stack = stack[:depth+1]
		parent := stack[depth]
		parent.Children = append(parent.Children, n)

		if leaf {
			return true
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			n.Leaves = tree.NumLeaves(lv)
			return false
		}
		stack = append(stack, n)

		if len(parents) == depth {
			parents = append(parents, path)
		} else {
			parents = parents[:depth+1]
			parents[depth] = path
		}
		return true
	})

	params, tensors := Count(v)
	doc := jsonSummary{Tree: holder.Children[0], Tensors: tensors, Params: params}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func trimSeg(path, parent string) string {
	seg := path[len(parent):]
	if len(seg) > 0 && seg[0] == '.' {
		return seg[1:]
	}
	return seg
}

func makeJSONNode(name string, v any, leaf bool, opts Options) *jsonNode {
	n := &jsonNode{Name: name}
	if !leaf {
		if r, ok := v.(*tree.Rec); ok {
			n.Kind = "shadow"
			n.Type = r.Type().String()
			return n
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice:
			n.Kind = "slice"
			n.Len = rv.Len()
		case reflect.Map:
			n.Kind = "map"
			n.Len = rv.Len()
		default:
			n.Kind = "record"
		}
		n.Type = fmt.Sprintf("%T", v)
		return n
	}

	if v == nil {
		n.Kind = "nil"
		return n
	}
	if d, ok := v.(*tensor.Dense); ok {
		if d == nil {
			n.Kind = "nil"
			n.Type = "*tensor.Dense"
			return n
		}
		n.Kind = "tensor"
		n.DType = d.DType().String()
		n.Shape = d.Shape()
		n.Params = d.Len()
		if opts.ShowValues && opts.MaxElems > 0 && d.Len() <= opts.MaxElems {
			n.Data = d.Float64s()
		}
		return n
	}
	n.Kind = "scalar"
	n.Type = fmt.Sprintf("%T", v)
	if opts.ShowValues {
		n.Value = jsonValue(v)
	}
	return n
}

// jsonValue returns v when it marshals cleanly and its printed form
// otherwise.
func jsonValue(v any) any {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v
	}
	return fmt.Sprintf("%v", v)
}
