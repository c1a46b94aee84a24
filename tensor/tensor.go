// Package tensor implements the dense numeric arrays the rest of the
// module computes with.
//
// A Dense value carries an element type, a shape, and a flat backing
// store in row-major order. Elements are held as float64 regardless of
// dtype; integer dtypes hold whole values and Bool holds 0 or 1. A
// Dense is immutable after construction: every kernel allocates its
// result.
//
// The kernels in this package are eager. Shapes and dtypes are
// validated on entry and violations panic with *ShapeError or
// *DTypeError; callers that need an error instead recover at their own
// boundary.
package tensor

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// DType identifies the element type of a Dense.
type DType uint8

const (
	// Invalid is the zero DType and is rejected by all constructors.
	Invalid DType = iota

	// Bool holds 0 or 1 per element.
	Bool

	// Int32 holds whole values representable in 32 bits.
	Int32

	// Int64 holds whole values.
	Int64

	// Float32 holds values rounded to float32 precision on ingest.
	Float32

	// Float64 holds full-precision values.
	Float64
)

// String returns the lowercase name of the dtype.
func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "invalid"
	}
}

// Inexact reports whether d is a floating-point dtype.
func (d DType) Inexact() bool {
	return d == Float32 || d == Float64
}

// Size returns the encoded width of one element in bytes.
func (d DType) Size() int {
	switch d {
	case Bool:
		return 1
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	default:
		return 0
	}
}

// Dense is a dense array with a fixed dtype and shape. The zero value
// is not usable; build one with New or the From* constructors.
type Dense struct {
	dtype DType
	shape []int
	data  []float64
}

// New wraps data as a Dense of the given dtype and shape. The data
// slice is retained by the result; the shape slice is copied. The
// element count implied by shape must equal len(data).
func New(dtype DType, shape []int, data []float64) *Dense {
	checkDType("New", dtype)
	n := numel(shape)
	if n < 0 {
		shapePanic("New", "negative dimension in shape %v", shape)
	}
	if len(data) != n {
		shapePanic("New", "shape %v holds %d elements, data holds %d", shape, n, len(data))
	}
	return &Dense{dtype: dtype, shape: cloneShape(shape), data: data}
}

// Zeros returns a Dense of the given dtype and shape with every
// element zero.
func Zeros(dtype DType, shape ...int) *Dense {
	checkDType("Zeros", dtype)
	n := numel(shape)
	if n < 0 {
		shapePanic("Zeros", "negative dimension in shape %v", shape)
	}
	return &Dense{dtype: dtype, shape: cloneShape(shape), data: make([]float64, n)}
}

// Ones returns a Dense of the given dtype and shape with every element
// one.
func Ones(dtype DType, shape ...int) *Dense {
	return Full(dtype, 1, shape...)
}

// Full returns a Dense of the given dtype and shape with every element
// set to v, quantized to the dtype.
func Full(dtype DType, v float64, shape ...int) *Dense {
	t := Zeros(dtype, shape...)
	q := quantize(dtype, v)
	for i := range t.data {
		t.data[i] = q
	}
	return t
}

// FromFloat64s copies v into a Float64 Dense. With no shape the result
// is a vector of len(v).
func FromFloat64s(v []float64, shape ...int) *Dense {
	if len(shape) == 0 {
		shape = []int{len(v)}
	}
	return New(Float64, shape, append([]float64(nil), v...))
}

// FromFloat32s copies v into a Float32 Dense. With no shape the result
// is a vector of len(v).
func FromFloat32s(v []float32, shape ...int) *Dense {
	if len(shape) == 0 {
		shape = []int{len(v)}
	}
	data := make([]float64, len(v))
	for i, x := range v {
		data[i] = float64(x)
	}
	return New(Float32, shape, data)
}

// FromInt64s copies v into an Int64 Dense. With no shape the result is
// a vector of len(v).
func FromInt64s(v []int64, shape ...int) *Dense {
	if len(shape) == 0 {
		shape = []int{len(v)}
	}
	data := make([]float64, len(v))
	for i, x := range v {
		data[i] = float64(x)
	}
	return New(Int64, shape, data)
}

// FromBools copies v into a Bool Dense. With no shape the result is a
// vector of len(v).
func FromBools(v []bool, shape ...int) *Dense {
	if len(shape) == 0 {
		shape = []int{len(v)}
	}
	data := make([]float64, len(v))
	for i, x := range v {
		if x {
			data[i] = 1
		}
	}
	return New(Bool, shape, data)
}

// Scalar returns a rank-0 Float64 Dense holding v.
func Scalar(v float64) *Dense {
	return &Dense{dtype: Float64, shape: []int{}, data: []float64{v}}
}

// ScalarOf returns a rank-0 Dense of the given dtype holding v
// quantized to the dtype.
func ScalarOf(dtype DType, v float64) *Dense {
	checkDType("ScalarOf", dtype)
	return &Dense{dtype: dtype, shape: []int{}, data: []float64{quantize(dtype, v)}}
}

// Uniform returns a Float64 Dense of the given shape with elements
// drawn uniformly from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64, shape ...int) *Dense {
	t := Zeros(Float64, shape...)
	for i := range t.data {
		t.data[i] = lo + rng.Float64()*(hi-lo)
	}
	return t
}

// DType returns the element type.
func (t *Dense) DType() DType { return t.dtype }

// Shape returns a copy of the dimensions. A rank-0 Dense returns an
// empty, non-nil slice.
func (t *Dense) Shape() []int { return cloneShape(t.shape) }

// Rank returns the number of dimensions.
func (t *Dense) Rank() int { return len(t.shape) }

// Len returns the number of elements.
func (t *Dense) Len() int { return len(t.data) }

// Inexact reports whether the dtype is floating point.
func (t *Dense) Inexact() bool { return t.dtype.Inexact() }

// At returns the element at the given indices, one index per
// dimension.
func (t *Dense) At(idx ...int) float64 {
	if len(idx) != len(t.shape) {
		shapePanic("At", "%d indices into rank-%d tensor", len(idx), len(t.shape))
	}
	off := 0
	for i, ix := range idx {
		if ix < 0 || ix >= t.shape[i] {
			shapePanic("At", "index %d out of range for dimension %d of extent %d", ix, i, t.shape[i])
		}
		off = off*t.shape[i] + ix
	}
	return t.data[off]
}

// Index returns the element at flat offset i in row-major order.
func (t *Dense) Index(i int) float64 {
	if i < 0 || i >= len(t.data) {
		shapePanic("Index", "offset %d out of range for %d elements", i, len(t.data))
	}
	return t.data[i]
}

// Item returns the single element of a one-element Dense.
func (t *Dense) Item() float64 {
	if len(t.data) != 1 {
		shapePanic("Item", "tensor of shape %v holds %d elements", t.shape, len(t.data))
	}
	return t.data[0]
}

// Float64s returns a copy of the backing data in row-major order.
func (t *Dense) Float64s() []float64 {
	return append([]float64(nil), t.data...)
}

// Clone returns a deep copy of t.
func (t *Dense) Clone() *Dense {
	return &Dense{dtype: t.dtype, shape: cloneShape(t.shape), data: append([]float64(nil), t.data...)}
}

// Equal reports whether a and b have the same dtype, the same shape,
// and the same value at every position.
func Equal(a, b *Dense) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.dtype != b.dtype || !shapeEq(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// String renders the dtype, shape, and the leading elements.
func (t *Dense) String() string {
	var b strings.Builder
	b.WriteString(t.dtype.String())
	fmt.Fprintf(&b, "%v{", t.shape)
	const limit = 8
	for i, x := range t.data {
		if i == limit {
			b.WriteString(" ...")
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g", x)
	}
	b.WriteByte('}')
	return b.String()
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return -1
		}
		n *= d
	}
	return n
}

func cloneShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}

func shapeEq(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func quantize(dtype DType, v float64) float64 {
	switch dtype {
	case Bool:
		if v != 0 {
			return 1
		}
		return 0
	case Int32, Int64:
		return float64(int64(v))
	case Float32:
		return float64(float32(v))
	default:
		return v
	}
}

func checkDType(op string, d DType) {
	if d == Invalid || d > Float64 {
		dtypePanic(op, "invalid dtype %d", uint8(d))
	}
}
