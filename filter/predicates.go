package filter

import (
	"reflect"

	"github.com/leafkit/leafkit/tensor"
)

// IsTensor reports whether leaf is a native tensor.
func IsTensor(leaf any) bool {
	d, ok := leaf.(*tensor.Dense)
	return ok && d != nil
}

// IsTensorLike reports whether leaf is a native tensor, a numeric
// slice, or a plain numeric, boolean or complex scalar.
func IsTensorLike(leaf any) bool {
	if IsTensor(leaf) {
		return true
	}
	return foreignArray(leaf) || numericScalar(leaf)
}

// IsInexactTensor reports whether leaf is a native tensor with a
// floating-point element type.
func IsInexactTensor(leaf any) bool {
	d, ok := leaf.(*tensor.Dense)
	return ok && d != nil && d.Inexact()
}

// IsInexactTensorLike reports whether leaf is an inexact native
// tensor, a floating-point slice, or a plain float or complex scalar.
func IsInexactTensorLike(leaf any) bool {
	if IsInexactTensor(leaf) {
		return true
	}
	if IsTensor(leaf) {
		return false
	}
	return inexactForeignArray(leaf) || inexactScalar(leaf)
}

func numericScalar(v any) bool {
	switch v.(type) {
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return true
	}
	return false
}

func inexactScalar(v any) bool {
	switch v.(type) {
	case float32, float64, complex64, complex128:
		return true
	}
	return false
}

func foreignArray(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return false
	}
	switch rv.Type().Elem().Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func inexactForeignArray(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return false
	}
	switch rv.Type().Elem().Kind() {
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
