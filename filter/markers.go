package filter

import (
	"fmt"
	"reflect"
)

// makeMarkers builds one stand-in value per leaf position, typed like
// the original leaf so the marker tree navigates exactly like the
// real one. Reference-typed leaves get fresh allocations, giving them
// unique identity; value-typed leaves are coded by position where the
// type allows. Types too small to code every position (booleans,
// plain structs) may repeat, which selection reports as ambiguity.
func makeMarkers(leaves []any) []any {
	markers := make([]any, len(leaves))
	boolSeen := 0
	for i, leaf := range leaves {
		if leaf == nil {
			continue
		}
		t := reflect.TypeOf(leaf)
		switch t.Kind() {
		case reflect.Pointer:
			markers[i] = reflect.New(t.Elem()).Interface()
		case reflect.Slice:
			markers[i] = reflect.MakeSlice(t, 1, 1).Interface()
		case reflect.Map:
			markers[i] = reflect.MakeMap(t).Interface()
		case reflect.Chan:
			markers[i] = reflect.MakeChan(t, 0).Interface()
		case reflect.Func:
			markers[i] = reflect.MakeFunc(t, func([]reflect.Value) []reflect.Value {
				outs := make([]reflect.Value, t.NumOut())
				for o := range outs {
					outs[o] = reflect.Zero(t.Out(o))
				}
				return outs
			}).Interface()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			markers[i] = reflect.ValueOf(int64(i)).Convert(t).Interface()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			markers[i] = reflect.ValueOf(uint64(i)).Convert(t).Interface()
		case reflect.Float32, reflect.Float64:
			markers[i] = reflect.ValueOf(float64(i)).Convert(t).Interface()
		case reflect.Complex64, reflect.Complex128:
			markers[i] = reflect.ValueOf(complex(float64(i), 0)).Convert(t).Interface()
		case reflect.String:
			markers[i] = reflect.ValueOf(fmt.Sprintf("\x00leaf-%d", i)).Convert(t).Interface()
		case reflect.Bool:
			markers[i] = boolSeen == 1
			boolSeen++
		default:
			markers[i] = reflect.Zero(t).Interface()
		}
	}
	return markers
}

// matchMarker reports whether a selector result r is the marker m.
// Reference types compare by identity, value types by equality.
func matchMarker(m, r any) bool {
	if m == nil || r == nil {
		return m == nil && r == nil
	}
	t := reflect.TypeOf(m)
	if t != reflect.TypeOf(r) {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return reflect.ValueOf(m).Pointer() == reflect.ValueOf(r).Pointer()
	case reflect.Slice:
		return reflect.ValueOf(m).Pointer() == reflect.ValueOf(r).Pointer()
	case reflect.Func:
		return reflect.ValueOf(m).Pointer() == reflect.ValueOf(r).Pointer()
	}
	if t.Comparable() {
		return m == r
	}
	return reflect.DeepEqual(m, r)
}
