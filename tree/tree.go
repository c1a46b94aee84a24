package tree

import (
	"reflect"
	"sort"
)

// Module marks a struct type as a record container. Embed it as the
// first field:
//
//	type Linear struct {
//		tree.Module
//		Weight *tensor.Dense
//		Bias   *tensor.Dense
//	}
//
// Exported fields become tree children in declaration order. Records
// are values: operations over trees return new records and never
// mutate the ones they were given.
type Module struct{}

var moduleType = reflect.TypeOf(Module{})

// IsModule reports whether v is a module record or a non-nil pointer
// to one.
func IsModule(v any) bool {
	if v == nil {
		return false
	}
	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Pointer {
		if reflect.ValueOf(v).IsNil() {
			return false
		}
		rt = rt.Elem()
	}
	return isModuleType(rt)
}

// Flatten decomposes v into its leaves in deterministic order and the
// Structure describing its container skeleton.
func Flatten(v any) ([]any, *Structure) {
	leaves := []any{}
	root := walk(v, &leaves)
	return leaves, &Structure{root: root, leaves: len(leaves)}
}

// Leaves returns the leaves of v in deterministic order.
func Leaves(v any) []any {
	leaves, _ := Flatten(v)
	return leaves
}

// NumLeaves returns the number of leaves in v.
func NumLeaves(v any) int {
	n := 0
	countLeaves(v, &n)
	return n
}

func walk(v any, leaves *[]any) *node {
	if v == nil {
		*leaves = append(*leaves, nil)
		return leafNode
	}
	if r, ok := v.(*Rec); ok {
		n := &node{kind: kindRecord, typ: r.typ, rec: true, fields: r.fields, children: make([]*node, len(r.vals))}
		for i, c := range r.vals {
			n.children[i] = walk(c, leaves)
		}
		return n
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	switch rt.Kind() {
	case reflect.Slice:
		if !elemTraversable(rt.Elem()) {
			break
		}
		n := &node{kind: kindSlice, typ: rt, children: make([]*node, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			n.children[i] = walk(rv.Index(i).Interface(), leaves)
		}
		return n
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			break
		}
		keys := mapKeys(rv)
		n := &node{kind: kindMap, typ: rt, keys: keys, children: make([]*node, len(keys))}
		for i, k := range keys {
			kv := reflect.ValueOf(k).Convert(rt.Key())
			n.children[i] = walk(rv.MapIndex(kv).Interface(), leaves)
		}
		return n
	case reflect.Pointer:
		if isModuleType(rt.Elem()) && !rv.IsNil() {
			n := walkRecord(rv.Elem(), leaves)
			n.ptr = true
			return n
		}
	case reflect.Struct:
		if isModuleType(rt) {
			return walkRecord(rv, leaves)
		}
	}
	*leaves = append(*leaves, v)
	return leafNode
}

func walkRecord(rv reflect.Value, leaves *[]any) *node {
	rt := rv.Type()
	tf := recordFields(rt)
	n := &node{kind: kindRecord, typ: rt, fields: tf.names(), children: make([]*node, len(tf.fields))}
	for i, f := range tf.fields {
		n.children[i] = walk(rv.Field(f.index).Interface(), leaves)
	}
	return n
}

// countLeaves mirrors walk without materializing nodes or leaves.
func countLeaves(v any, n *int) {
	if v == nil {
		*n++
		return
	}
	if r, ok := v.(*Rec); ok {
		for _, c := range r.vals {
			countLeaves(c, n)
		}
		return
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	switch rt.Kind() {
	case reflect.Slice:
		if !elemTraversable(rt.Elem()) {
			break
		}
		for i := 0; i < rv.Len(); i++ {
			countLeaves(rv.Index(i).Interface(), n)
		}
		return
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			break
		}
		iter := rv.MapRange()
		for iter.Next() {
			countLeaves(iter.Value().Interface(), n)
		}
		return
	case reflect.Pointer:
		if isModuleType(rt.Elem()) && !rv.IsNil() {
			countRecord(rv.Elem(), n)
			return
		}
	case reflect.Struct:
		if isModuleType(rt) {
			countRecord(rv, n)
			return
		}
	}
	*n++
}

func countRecord(rv reflect.Value, n *int) {
	for _, f := range recordFields(rv.Type()).fields {
		countLeaves(rv.Field(f.index).Interface(), n)
	}
}

// elemTraversable reports whether a slice with this element type is a
// container. Interface and pointer elements hold individually
// meaningful objects; module elements are records. Scalar element
// types make the slice a foreign array, which is a leaf.
func elemTraversable(et reflect.Type) bool {
	switch et.Kind() {
	case reflect.Interface, reflect.Pointer:
		return true
	case reflect.Struct:
		return isModuleType(et)
	}
	return false
}

func mapKeys(rv reflect.Value) []string {
	keys := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)
	return keys
}

// Rec is a generic record produced by Shadow. It mirrors a module
// record's type and field order while its slots hold values of any
// type, and it flattens to the same structure as the record it
// mirrors.
type Rec struct {
	typ    reflect.Type
	fields []string
	vals   []any
}

// Type returns the module type the record mirrors.
func (r *Rec) Type() reflect.Type { return r.typ }

// Fields returns the field names in declaration order.
func (r *Rec) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Get returns the value of the named field.
func (r *Rec) Get(name string) (any, bool) {
	for i, f := range r.fields {
		if f == name {
			return r.vals[i], true
		}
	}
	return nil, false
}

// Set replaces the value of the named field in place and reports
// whether the field exists. Rec is scratch material for building
// shadows; unlike module records it is mutable.
func (r *Rec) Set(name string, v any) bool {
	for i, f := range r.fields {
		if f == name {
			r.vals[i] = v
			return true
		}
	}
	return false
}

// Shadow copies the container skeleton of v into generic containers:
// slices become []any, maps become map[string]any, and module records
// become *Rec. Leaves are carried through as the same objects. The
// shadow flattens to a structure Equal to that of v while accepting
// replacement leaves of any type.
func Shadow(v any) any {
	if v == nil {
		return nil
	}
	if r, ok := v.(*Rec); ok {
		out := &Rec{typ: r.typ, fields: append([]string(nil), r.fields...), vals: make([]any, len(r.vals))}
		for i, c := range r.vals {
			out.vals[i] = Shadow(c)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	switch rt.Kind() {
	case reflect.Slice:
		if !elemTraversable(rt.Elem()) {
			break
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Shadow(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Shadow(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if isModuleType(rt.Elem()) && !rv.IsNil() {
			return shadowRecord(rv.Elem())
		}
	case reflect.Struct:
		if isModuleType(rt) {
			return shadowRecord(rv)
		}
	}
	return v
}

func shadowRecord(rv reflect.Value) *Rec {
	rt := rv.Type()
	tf := recordFields(rt)
	out := &Rec{typ: rt, fields: tf.names(), vals: make([]any, len(tf.fields))}
	for i, f := range tf.fields {
		out.vals[i] = Shadow(rv.Field(f.index).Interface())
	}
	return out
}
