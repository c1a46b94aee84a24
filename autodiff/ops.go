// Package autodiff layers recording on top of the tensor kernels.
//
// Every operation here computes eagerly and then notifies the active
// recorders, a small stack that tapes (reverse-mode differentiation)
// and tracers (program capture) push themselves onto. Because a tape
// applies its backward rules through this same layer, a tracer pushed
// beneath a tape observes the backward work too, and a recorded
// program replays gradients correctly for fresh inputs.
//
// The recorder stack is package state. It is NOT thread-safe: only one
// goroutine may record at a time. Computation with no recorder active
// is pure and may run concurrently.
package autodiff

import (
	"github.com/pkg/errors"

	"github.com/leafkit/leafkit/tensor"
)

// Op identifies an operation in recorded form.
type Op uint8

const (
	OpInvalid Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpScale
	OpAddScalar
	OpMatMul
	OpMatVec
	OpOuter
	OpTranspose
	OpSigmoid
	OpTanh
	OpRelu
	OpStep
	OpLog
	OpExp
	OpSum
	OpMean
	OpSpread
)

var opNames = [...]string{
	OpInvalid:   "invalid",
	OpAdd:       "add",
	OpSub:       "sub",
	OpMul:       "mul",
	OpDiv:       "div",
	OpNeg:       "neg",
	OpScale:     "scale",
	OpAddScalar: "add-scalar",
	OpMatMul:    "matmul",
	OpMatVec:    "matvec",
	OpOuter:     "outer",
	OpTranspose: "transpose",
	OpSigmoid:   "sigmoid",
	OpTanh:      "tanh",
	OpRelu:      "relu",
	OpStep:      "step",
	OpLog:       "log",
	OpExp:       "exp",
	OpSum:       "sum",
	OpMean:      "mean",
	OpSpread:    "spread",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "invalid"
}

// Recorder observes every operation performed while it is pushed.
// Scalar-parameterized ops carry their parameter in arg; all other ops
// pass zero.
type Recorder interface {
	Record(op Op, arg float64, inputs []*tensor.Dense, output *tensor.Dense)
}

var recorders []Recorder

// PushRecorder activates r. Recorders form a stack; every active
// recorder observes every operation until popped.
func PushRecorder(r Recorder) {
	recorders = append(recorders, r)
}

// PopRecorder deactivates the most recently pushed recorder and
// returns it.
func PopRecorder() Recorder {
	if len(recorders) == 0 {
		panic(errors.New("autodiff: recorder stack is empty"))
	}
	r := recorders[len(recorders)-1]
	recorders[len(recorders)-1] = nil
	recorders = recorders[:len(recorders)-1]
	return r
}

// Recording reports whether any recorder is active.
func Recording() bool { return len(recorders) > 0 }

func record(op Op, arg float64, inputs []*tensor.Dense, output *tensor.Dense) {
	for _, r := range recorders {
		r.Record(op, arg, inputs, output)
	}
}

// Add returns a+b element-wise.
func Add(a, b *tensor.Dense) *tensor.Dense {
	out := tensor.Add(a, b)
	record(OpAdd, 0, []*tensor.Dense{a, b}, out)
	return out
}

// Sub returns a-b element-wise.
func Sub(a, b *tensor.Dense) *tensor.Dense {
	out := tensor.Sub(a, b)
	record(OpSub, 0, []*tensor.Dense{a, b}, out)
	return out
}

// Mul returns a*b element-wise.
func Mul(a, b *tensor.Dense) *tensor.Dense {
	out := tensor.Mul(a, b)
	record(OpMul, 0, []*tensor.Dense{a, b}, out)
	return out
}

// Div returns a/b element-wise.
func Div(a, b *tensor.Dense) *tensor.Dense {
	out := tensor.Div(a, b)
	record(OpDiv, 0, []*tensor.Dense{a, b}, out)
	return out
}

// Neg returns -a element-wise.
func Neg(a *tensor.Dense) *tensor.Dense {
	out := tensor.Neg(a)
	record(OpNeg, 0, []*tensor.Dense{a}, out)
	return out
}

// Scale returns a*k element-wise. k is a structural constant: a
// recorded program bakes it in.
func Scale(a *tensor.Dense, k float64) *tensor.Dense {
	out := tensor.Scale(a, k)
	record(OpScale, k, []*tensor.Dense{a}, out)
	return out
}

// AddScalar returns a+k element-wise. k is a structural constant: a
// recorded program bakes it in.
func AddScalar(a *tensor.Dense, k float64) *tensor.Dense {
	out := tensor.AddScalar(a, k)
	record(OpAddScalar, k, []*tensor.Dense{a}, out)
	return out
}

// MatMul multiplies two rank-2 tensors.
func MatMul(a, b *tensor.Dense) *tensor.Dense {
	out := tensor.MatMul(a, b)
	record(OpMatMul, 0, []*tensor.Dense{a, b}, out)
	return out
}

// MatVec multiplies a rank-2 tensor by a vector.
func MatVec(a, x *tensor.Dense) *tensor.Dense {
	out := tensor.MatVec(a, x)
	record(OpMatVec, 0, []*tensor.Dense{a, x}, out)
	return out
}

// Outer returns the outer product of two vectors.
func Outer(u, v *tensor.Dense) *tensor.Dense {
	out := tensor.Outer(u, v)
	record(OpOuter, 0, []*tensor.Dense{u, v}, out)
	return out
}

// Transpose transposes a rank-2 tensor.
func Transpose(a *tensor.Dense) *tensor.Dense {
	out := tensor.Transpose(a)
	record(OpTranspose, 0, []*tensor.Dense{a}, out)
	return out
}

// Sigmoid returns 1/(1+exp(-x)) element-wise.
func Sigmoid(a *tensor.Dense) *tensor.Dense {
	out := tensor.Sigmoid(a)
	record(OpSigmoid, 0, []*tensor.Dense{a}, out)
	return out
}

// Tanh returns the hyperbolic tangent element-wise.
func Tanh(a *tensor.Dense) *tensor.Dense {
	out := tensor.Tanh(a)
	record(OpTanh, 0, []*tensor.Dense{a}, out)
	return out
}

// Relu returns max(0, x) element-wise.
func Relu(a *tensor.Dense) *tensor.Dense {
	out := tensor.Relu(a)
	record(OpRelu, 0, []*tensor.Dense{a}, out)
	return out
}

// Step returns 1 where x > 0 and 0 elsewhere. Its derivative is zero
// almost everywhere, so no gradient flows through it.
func Step(a *tensor.Dense) *tensor.Dense {
	out := tensor.Step(a)
	record(OpStep, 0, []*tensor.Dense{a}, out)
	return out
}

// Log returns the natural logarithm element-wise.
func Log(a *tensor.Dense) *tensor.Dense {
	out := tensor.Log(a)
	record(OpLog, 0, []*tensor.Dense{a}, out)
	return out
}

// Exp returns e**x element-wise.
func Exp(a *tensor.Dense) *tensor.Dense {
	out := tensor.Exp(a)
	record(OpExp, 0, []*tensor.Dense{a}, out)
	return out
}

// Sum reduces to a rank-0 tensor holding the sum of all elements.
func Sum(a *tensor.Dense) *tensor.Dense {
	out := tensor.Sum(a)
	record(OpSum, 0, []*tensor.Dense{a}, out)
	return out
}

// Mean reduces to a rank-0 tensor holding the arithmetic mean.
func Mean(a *tensor.Dense) *tensor.Dense {
	out := tensor.Mean(a)
	record(OpMean, 0, []*tensor.Dense{a}, out)
	return out
}

// Spread broadcasts a one-element tensor across the shape of ref. Only
// the first input carries gradient; ref supplies shape alone.
func Spread(s, ref *tensor.Dense) *tensor.Dense {
	out := tensor.Spread(s, ref)
	record(OpSpread, 0, []*tensor.Dense{s, ref}, out)
	return out
}

// Apply performs op on inputs through the recording layer, so replayed
// programs remain visible to recorders active at replay time.
func Apply(op Op, arg float64, in []*tensor.Dense) *tensor.Dense {
	switch op {
	case OpAdd:
		return Add(in[0], in[1])
	case OpSub:
		return Sub(in[0], in[1])
	case OpMul:
		return Mul(in[0], in[1])
	case OpDiv:
		return Div(in[0], in[1])
	case OpNeg:
		return Neg(in[0])
	case OpScale:
		return Scale(in[0], arg)
	case OpAddScalar:
		return AddScalar(in[0], arg)
	case OpMatMul:
		return MatMul(in[0], in[1])
	case OpMatVec:
		return MatVec(in[0], in[1])
	case OpOuter:
		return Outer(in[0], in[1])
	case OpTranspose:
		return Transpose(in[0])
	case OpSigmoid:
		return Sigmoid(in[0])
	case OpTanh:
		return Tanh(in[0])
	case OpRelu:
		return Relu(in[0])
	case OpStep:
		return Step(in[0])
	case OpLog:
		return Log(in[0])
	case OpExp:
		return Exp(in[0])
	case OpSum:
		return Sum(in[0])
	case OpMean:
		return Mean(in[0])
	case OpSpread:
		return Spread(in[0], in[1])
	default:
		panic(errors.Errorf("autodiff: unknown op %d", uint8(op)))
	}
}
