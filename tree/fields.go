package tree

import (
	"fmt"
	"reflect"
	"sync"
)

type fieldInfo struct {
	index    int
	name     string
	optional bool
}

type typeFields struct {
	fields     []fieldInfo
	unexported []string
}

func (tf *typeFields) names() []string {
	out := make([]string, len(tf.fields))
	for i, f := range tf.fields {
		out[i] = f.name
	}
	return out
}

var fieldCache sync.Map // reflect.Type -> *typeFields

func recordFields(rt reflect.Type) *typeFields {
	if c, ok := fieldCache.Load(rt); ok {
		return c.(*typeFields)
	}
	tf := &typeFields{}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Anonymous && f.Type == moduleType {
			continue
		}
		if f.PkgPath != "" {
			tf.unexported = append(tf.unexported, f.Name)
			continue
		}
		tf.fields = append(tf.fields, fieldInfo{
			index:    i,
			name:     f.Name,
			optional: f.Tag.Get("tree") == "optional",
		})
	}
	cached, _ := fieldCache.LoadOrStore(rt, tf)
	return cached.(*typeFields)
}

func isModuleType(rt reflect.Type) bool {
	if rt.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Anonymous && f.Type == moduleType {
			return true
		}
	}
	return false
}

// Finish validates a freshly constructed module record and returns it.
// Every exported field with a nilable type must be bound unless tagged
// `tree:"optional"`; unbound fields are reported together in an
// *IncompleteError. Module types declaring unexported fields are
// rejected, since such state cannot survive flatten and rebuild.
//
// Constructors call Finish last:
//
//	func NewLinear(...) (*Linear, error) {
//		l := &Linear{Weight: w, Bias: b}
//		return tree.Finish(l)
//	}
func Finish[T any](m T) (T, error) {
	rv := reflect.ValueOf(m)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return m, ErrNotModule
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || !isModuleType(rv.Type()) {
		return m, fmt.Errorf("%w: %T", ErrNotModule, m)
	}
	tf := recordFields(rv.Type())
	if len(tf.unexported) > 0 {
		return m, fmt.Errorf("%w: %s has %v", ErrUnexportedField, rv.Type(), tf.unexported)
	}
	var missing []string
	for _, f := range tf.fields {
		if f.optional {
			continue
		}
		fv := rv.Field(f.index)
		switch fv.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			if fv.IsNil() {
				missing = append(missing, f.name)
			}
		}
	}
	if len(missing) > 0 {
		return m, &IncompleteError{Type: rv.Type().String(), Fields: missing}
	}
	return m, nil
}
