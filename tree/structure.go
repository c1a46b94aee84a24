package tree

import (
	"fmt"
	"reflect"
	"strings"
)

type kind uint8

const (
	kindLeaf kind = iota
	kindSlice
	kindMap
	kindRecord
)

type node struct {
	kind     kind
	typ      reflect.Type // container type; nil for leaves
	ptr      bool         // record reached through a pointer
	rec      bool         // record captured from a *Rec shadow
	keys     []string     // map keys, sorted
	fields   []string     // record field names, declaration order
	children []*node
}

// Leaf nodes carry no state of their own and share one instance.
var leafNode = &node{kind: kindLeaf}

// Structure describes the container skeleton of a tree: which
// positions are containers, their kinds and arities, map keys, and
// record types. Leaves are anonymous placeholders, so trees holding
// different leaf values compare Equal as long as their skeletons
// match.
type Structure struct {
	root   *node
	leaves int
}

// NumLeaves returns the number of leaf positions.
func (s *Structure) NumLeaves() int { return s.leaves }

// Equal reports whether the two skeletons match: slices by length,
// maps by key set, records by Go type. Container element types and
// record pointer-ness do not participate, so a generic shadow compares
// equal to the typed tree it mirrors.
func (s *Structure) Equal(o *Structure) bool {
	if s == nil || o == nil {
		return s == o
	}
	return nodeEq(s.root, o.root)
}

func nodeEq(a, b *node) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindLeaf:
		return true
	case kindSlice:
		if len(a.children) != len(b.children) {
			return false
		}
	case kindMap:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i := range a.keys {
			if a.keys[i] != b.keys[i] {
				return false
			}
		}
	case kindRecord:
		if a.typ != b.typ {
			return false
		}
	}
	for i := range a.children {
		if !nodeEq(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// String renders the skeleton compactly: leaves as *, slices in
// brackets, maps in braces, records as Type(Field:child ...).
func (s *Structure) String() string {
	if s == nil {
		return "<nil>"
	}
	var b strings.Builder
	renderNode(&b, s.root)
	return b.String()
}

func renderNode(b *strings.Builder, n *node) {
	switch n.kind {
	case kindLeaf:
		b.WriteByte('*')
	case kindSlice:
		b.WriteByte('[')
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte(' ')
			}
			renderNode(b, c)
		}
		b.WriteByte(']')
	case kindMap:
		b.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k)
			b.WriteByte(':')
			renderNode(b, n.children[i])
		}
		b.WriteByte('}')
	case kindRecord:
		b.WriteString(n.typ.String())
		b.WriteByte('(')
		for i, f := range n.fields {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f)
			b.WriteByte(':')
			renderNode(b, n.children[i])
		}
		b.WriteByte(')')
	}
}

// PathOf returns a dotted path for the i-th leaf, for diagnostics:
// "Layers[1].Weight", `Params["lr"]`, or "(root)" for a bare leaf.
func (s *Structure) PathOf(i int) string {
	if s == nil || i < 0 || i >= s.leaves {
		return fmt.Sprintf("(leaf %d)", i)
	}
	path, _ := pathTo(s.root, i, "")
	if path == "" {
		return "(root)"
	}
	return strings.TrimPrefix(path, ".")
}

// pathTo returns the path of the target leaf under n, or the number of
// leaves n holds when the target lies elsewhere.
func pathTo(n *node, target int, prefix string) (string, int) {
	if n.kind == kindLeaf {
		if target == 0 {
			return prefix, -1
		}
		return "", 1
	}
	seen := 0
	for i, c := range n.children {
		var seg string
		switch n.kind {
		case kindSlice:
			seg = fmt.Sprintf("[%d]", i)
		case kindMap:
			seg = fmt.Sprintf("[%q]", n.keys[i])
		case kindRecord:
			seg = "." + n.fields[i]
		}
		path, cnt := pathTo(c, target-seen, prefix+seg)
		if cnt < 0 {
			return path, -1
		}
		seen += cnt
	}
	return "", seen
}

// Unflatten rebuilds a tree from a structure and its leaves. It is the
// exact inverse of Flatten: the leaves are stored back into the
// skeleton in order, as the same objects. A leaf that cannot be stored
// in its typed container slot yields an error wrapping ErrBind.
func Unflatten(s *Structure, leaves []any) (any, error) {
	if s == nil {
		return nil, ErrNilStructure
	}
	if len(leaves) != s.leaves {
		return nil, fmt.Errorf("%w: structure holds %d, got %d", ErrLeafCount, s.leaves, len(leaves))
	}
	pos := 0
	return build(s, s.root, leaves, &pos)
}

func build(s *Structure, n *node, leaves []any, pos *int) (any, error) {
	switch n.kind {
	case kindLeaf:
		v := leaves[*pos]
		*pos++
		return v, nil

	case kindSlice:
		sl := reflect.MakeSlice(n.typ, len(n.children), len(n.children))
		for i, c := range n.children {
			cv, err := build(s, c, leaves, pos)
			if err != nil {
				return nil, err
			}
			if err := bind(s, sl.Index(i), cv, *pos-1); err != nil {
				return nil, err
			}
		}
		return sl.Interface(), nil

	case kindMap:
		m := reflect.MakeMapWithSize(n.typ, len(n.keys))
		for i, k := range n.keys {
			cv, err := build(s, n.children[i], leaves, pos)
			if err != nil {
				return nil, err
			}
			ev := reflect.New(n.typ.Elem()).Elem()
			if err := bind(s, ev, cv, *pos-1); err != nil {
				return nil, err
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(n.typ.Key()), ev)
		}
		return m.Interface(), nil

	default: // kindRecord
		if n.rec {
			out := &Rec{typ: n.typ, fields: append([]string(nil), n.fields...), vals: make([]any, len(n.children))}
			for i, c := range n.children {
				cv, err := build(s, c, leaves, pos)
				if err != nil {
					return nil, err
				}
				out.vals[i] = cv
			}
			return out, nil
		}
		sv := reflect.New(n.typ).Elem()
		tf := recordFields(n.typ)
		for i, c := range n.children {
			cv, err := build(s, c, leaves, pos)
			if err != nil {
				return nil, err
			}
			if err := bind(s, sv.Field(tf.fields[i].index), cv, *pos-1); err != nil {
				return nil, err
			}
		}
		if n.ptr {
			p := reflect.New(n.typ)
			p.Elem().Set(sv)
			return p.Interface(), nil
		}
		return sv.Interface(), nil
	}
}

// bind stores v into a container slot. The leaf index is approximate
// for container-valued children and exact for leaves, which is where
// bind failures occur in practice.
func bind(s *Structure, dst reflect.Value, v any, leafIdx int) error {
	if v == nil {
		switch dst.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return fmt.Errorf("%w: nil into %s slot at %s", ErrBind, dst.Type(), s.PathOf(leafIdx))
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("%w: %T into %s slot at %s", ErrBind, v, dst.Type(), s.PathOf(leafIdx))
	}
	dst.Set(rv)
	return nil
}
