package tree

import (
	"fmt"
	"reflect"
	"strings"
)

// Visit receives one tree position during a Walk. Returning false
// skips a container's children; the return value is ignored for
// leaves.
type Visit func(path string, depth int, v any, leaf bool) bool

// Walk traverses v in flatten order, calling fn for every container
// and leaf, parents before children. Paths use the same dotted form
// as Structure.PathOf; the root is visited with path "" and depth 0.
func Walk(v any, fn Visit) {
	walkVisit(v, "", 0, fn)
}

func walkVisit(v any, path string, depth int, fn Visit) {
	if v == nil {
		fn(path, depth, v, true)
		return
	}
	if r, ok := v.(*Rec); ok {
		if !fn(path, depth, v, false) {
			return
		}
		for i, f := range r.fields {
			walkVisit(r.vals[i], joinPath(path, "."+f), depth+1, fn)
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
		if !fn(path, depth, v, false) {
			return
		}
		for i := 0; i < rv.Len(); i++ {
			walkVisit(rv.Index(i).Interface(), joinPath(path, fmt.Sprintf("[%d]", i)), depth+1, fn)
		}
		return
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			break
		}
		if !fn(path, depth, v, false) {
			return
		}
		for _, k := range mapKeys(rv) {
			kv := reflect.ValueOf(k).Convert(rt.Key())
			walkVisit(rv.MapIndex(kv).Interface(), joinPath(path, fmt.Sprintf("[%q]", k)), depth+1, fn)
		}
		return
	case reflect.Pointer:
		if isModuleType(rt.Elem()) && !rv.IsNil() {
			walkRecordVisit(v, rv.Elem(), path, depth, fn)
			return
		}
	case reflect.Struct:
		if isModuleType(rt) {
			walkRecordVisit(v, rv, path, depth, fn)
			return
		}
	}
	fn(path, depth, v, true)
}

func walkRecordVisit(orig any, rv reflect.Value, path string, depth int, fn Visit) {
	if !fn(path, depth, orig, false) {
		return
	}
	for _, f := range recordFields(rv.Type()).fields {
		walkVisit(rv.Field(f.index).Interface(), joinPath(path, "."+f.name), depth+1, fn)
	}
}

func joinPath(parent, seg string) string {
	if parent == "" {
		return strings.TrimPrefix(seg, ".")
	}
	return parent + seg
}
