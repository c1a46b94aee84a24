package tensor

import "math"

// The kernels below validate operands on entry and allocate their
// results. Binary kernels require matching dtypes and shapes; Bool
// operands are rejected everywhere. Kernels that cannot produce whole
// values additionally require a floating dtype.

func binargs(op string, a, b *Dense) {
	if a.dtype == Bool || b.dtype == Bool {
		dtypePanic(op, "bool operands are not supported")
	}
	if a.dtype != b.dtype {
		dtypePanic(op, "mismatched dtypes %s and %s", a.dtype, b.dtype)
	}
	if !shapeEq(a.shape, b.shape) {
		shapePanic(op, "mismatched shapes %v and %v", a.shape, b.shape)
	}
}

func unarg(op string, a *Dense) {
	if a.dtype == Bool {
		dtypePanic(op, "bool operands are not supported")
	}
}

func unargInexact(op string, a *Dense) {
	if !a.dtype.Inexact() {
		dtypePanic(op, "requires a floating dtype, got %s", a.dtype)
	}
}

func (t *Dense) newLike() *Dense {
	return &Dense{dtype: t.dtype, shape: cloneShape(t.shape), data: make([]float64, len(t.data))}
}

// Add returns the element-wise sum of a and b.
func Add(a, b *Dense) *Dense {
	binargs("Add", a, b)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, a.data[i]+b.data[i])
	}
	return out
}

// Sub returns the element-wise difference a-b.
func Sub(a, b *Dense) *Dense {
	binargs("Sub", a, b)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, a.data[i]-b.data[i])
	}
	return out
}

// Mul returns the element-wise product of a and b.
func Mul(a, b *Dense) *Dense {
	binargs("Mul", a, b)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, a.data[i]*b.data[i])
	}
	return out
}

// Div returns the element-wise quotient a/b. Both operands must have a
// floating dtype.
func Div(a, b *Dense) *Dense {
	binargs("Div", a, b)
	unargInexact("Div", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, a.data[i]/b.data[i])
	}
	return out
}

// Neg returns the element-wise negation of a.
func Neg(a *Dense) *Dense {
	unarg("Neg", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = -a.data[i]
	}
	return out
}

// Scale returns a with every element multiplied by k.
func Scale(a *Dense, k float64) *Dense {
	unargInexact("Scale", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, a.data[i]*k)
	}
	return out
}

// AddScalar returns a with k added to every element.
func AddScalar(a *Dense, k float64) *Dense {
	unargInexact("AddScalar", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, a.data[i]+k)
	}
	return out
}

// MatMul multiplies a of shape [m,k] by b of shape [k,n] into [m,n].
func MatMul(a, b *Dense) *Dense {
	if a.dtype == Bool || b.dtype == Bool {
		dtypePanic("MatMul", "bool operands are not supported")
	}
	if a.dtype != b.dtype {
		dtypePanic("MatMul", "mismatched dtypes %s and %s", a.dtype, b.dtype)
	}
	if len(a.shape) != 2 || len(b.shape) != 2 {
		shapePanic("MatMul", "requires rank-2 operands, got %v and %v", a.shape, b.shape)
	}
	m, k := a.shape[0], a.shape[1]
	if b.shape[0] != k {
		shapePanic("MatMul", "inner dimensions differ: %v and %v", a.shape, b.shape)
	}
	n := b.shape[1]
	out := &Dense{dtype: a.dtype, shape: []int{m, n}, data: make([]float64, m*n)}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for p := 0; p < k; p++ {
				s += a.data[i*k+p] * b.data[p*n+j]
			}
			out.data[i*n+j] = quantize(a.dtype, s)
		}
	}
	return out
}

// MatVec multiplies a of shape [m,k] by the vector x of shape [k] into
// a vector of shape [m].
func MatVec(a, x *Dense) *Dense {
	if a.dtype == Bool || x.dtype == Bool {
		dtypePanic("MatVec", "bool operands are not supported")
	}
	if a.dtype != x.dtype {
		dtypePanic("MatVec", "mismatched dtypes %s and %s", a.dtype, x.dtype)
	}
	if len(a.shape) != 2 || len(x.shape) != 1 {
		shapePanic("MatVec", "requires a rank-2 matrix and a rank-1 vector, got %v and %v", a.shape, x.shape)
	}
	m, k := a.shape[0], a.shape[1]
	if x.shape[0] != k {
		shapePanic("MatVec", "matrix columns %d do not match vector length %d", k, x.shape[0])
	}
	out := &Dense{dtype: a.dtype, shape: []int{m}, data: make([]float64, m)}
	for i := 0; i < m; i++ {
		var s float64
		for p := 0; p < k; p++ {
			s += a.data[i*k+p] * x.data[p]
		}
		out.data[i] = quantize(a.dtype, s)
	}
	return out
}

// Transpose returns the transpose of a rank-2 tensor.
func Transpose(a *Dense) *Dense {
	if len(a.shape) != 2 {
		shapePanic("Transpose", "requires a rank-2 operand, got %v", a.shape)
	}
	m, n := a.shape[0], a.shape[1]
	out := &Dense{dtype: a.dtype, shape: []int{n, m}, data: make([]float64, len(a.data))}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out.data[j*m+i] = a.data[i*n+j]
		}
	}
	return out
}

// Sigmoid returns 1/(1+exp(-x)) element-wise.
func Sigmoid(a *Dense) *Dense {
	unargInexact("Sigmoid", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, 1/(1+math.Exp(-a.data[i])))
	}
	return out
}

// Tanh returns the hyperbolic tangent element-wise.
func Tanh(a *Dense) *Dense {
	unargInexact("Tanh", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, math.Tanh(a.data[i]))
	}
	return out
}

// Relu returns max(0, x) element-wise.
func Relu(a *Dense) *Dense {
	unarg("Relu", a)
	out := a.newLike()
	for i := range out.data {
		if a.data[i] > 0 {
			out.data[i] = a.data[i]
		}
	}
	return out
}

// Log returns the natural logarithm element-wise.
func Log(a *Dense) *Dense {
	unargInexact("Log", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, math.Log(a.data[i]))
	}
	return out
}

// Exp returns e**x element-wise.
func Exp(a *Dense) *Dense {
	unargInexact("Exp", a)
	out := a.newLike()
	for i := range out.data {
		out.data[i] = quantize(a.dtype, math.Exp(a.data[i]))
	}
	return out
}

// Step returns 1 where x > 0 and 0 elsewhere.
func Step(a *Dense) *Dense {
	unarg("Step", a)
	out := a.newLike()
	for i := range out.data {
		if a.data[i] > 0 {
			out.data[i] = 1
		}
	}
	return out
}

// Spread broadcasts the single element of s across the shape of ref.
// The result takes its dtype from s.
func Spread(s, ref *Dense) *Dense {
	unarg("Spread", s)
	if len(s.data) != 1 {
		shapePanic("Spread", "source of shape %v holds %d elements, want 1", s.shape, len(s.data))
	}
	out := &Dense{dtype: s.dtype, shape: cloneShape(ref.shape), data: make([]float64, len(ref.data))}
	v := quantize(s.dtype, s.data[0])
	for i := range out.data {
		out.data[i] = v
	}
	return out
}

// Outer returns the outer product of two vectors: out[i,j] = u[i]*v[j].
func Outer(u, v *Dense) *Dense {
	if u.dtype == Bool || v.dtype == Bool {
		dtypePanic("Outer", "bool operands are not supported")
	}
	if u.dtype != v.dtype {
		dtypePanic("Outer", "mismatched dtypes %s and %s", u.dtype, v.dtype)
	}
	if len(u.shape) != 1 || len(v.shape) != 1 {
		shapePanic("Outer", "requires rank-1 operands, got %v and %v", u.shape, v.shape)
	}
	m, n := u.shape[0], v.shape[0]
	out := &Dense{dtype: u.dtype, shape: []int{m, n}, data: make([]float64, m*n)}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out.data[i*n+j] = quantize(u.dtype, u.data[i]*v.data[j])
		}
	}
	return out
}

// Sum reduces a to a rank-0 tensor holding the sum of all elements.
func Sum(a *Dense) *Dense {
	unarg("Sum", a)
	var s float64
	for _, x := range a.data {
		s += x
	}
	return &Dense{dtype: a.dtype, shape: []int{}, data: []float64{quantize(a.dtype, s)}}
}

// Mean reduces a to a rank-0 tensor holding the arithmetic mean. The
// operand must have a floating dtype and at least one element.
func Mean(a *Dense) *Dense {
	unargInexact("Mean", a)
	if len(a.data) == 0 {
		shapePanic("Mean", "empty tensor of shape %v", a.shape)
	}
	var s float64
	for _, x := range a.data {
		s += x
	}
	return &Dense{dtype: a.dtype, shape: []int{}, data: []float64{quantize(a.dtype, s/float64(len(a.data)))}}
}

// ZerosLike returns a zero tensor with the dtype and shape of a.
func ZerosLike(a *Dense) *Dense {
	return a.newLike()
}

// OnesLike returns an all-ones tensor with the dtype and shape of a.
func OnesLike(a *Dense) *Dense {
	out := a.newLike()
	for i := range out.data {
		out.data[i] = 1
	}
	return out
}
