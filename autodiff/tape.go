package autodiff

import (
	"github.com/pkg/errors"

	"github.com/leafkit/leafkit/tensor"
)

// ErrNonScalarOutput indicates Backward was asked to differentiate a
// tensor with more than one element.
var ErrNonScalarOutput = errors.New("autodiff: backward output is not a one-element tensor")

type entry struct {
	op  Op
	arg float64
	in  []*tensor.Dense
	out *tensor.Dense
}

// Tape records operations for reverse-mode differentiation. Push it,
// run the computation, pop it, then call Backward:
//
//	tape := autodiff.NewTape()
//	autodiff.PushRecorder(tape)
//	loss := model.Loss(x, y)
//	autodiff.PopRecorder()
//	grads, err := tape.Backward(loss, params)
//
// Backward must run after the tape is popped; the adjoint arithmetic
// goes through the op layer and would otherwise extend the tape it is
// consuming.
type Tape struct {
	entries []entry
}

// NewTape returns an empty tape.
func NewTape() *Tape { return &Tape{} }

// Record implements Recorder.
func (t *Tape) Record(op Op, arg float64, inputs []*tensor.Dense, output *tensor.Dense) {
	in := make([]*tensor.Dense, len(inputs))
	copy(in, inputs)
	t.entries = append(t.entries, entry{op: op, arg: arg, in: in, out: output})
}

// Len returns the number of recorded operations.
func (t *Tape) Len() int { return len(t.entries) }

// Backward runs the reverse sweep from output and returns one
// cotangent per tensor in wrt, positionally. Tensors the output does
// not depend on get nil. Tensors are identified by pointer: a
// parameter used twice accumulates both contributions.
func (t *Tape) Backward(output *tensor.Dense, wrt []*tensor.Dense) ([]*tensor.Dense, error) {
	if output == nil {
		return nil, errors.New("autodiff: backward output is nil")
	}
	if output.Len() != 1 {
		return nil, errors.Wrapf(ErrNonScalarOutput, "shape %v", output.Shape())
	}
	adj := make(map[*tensor.Dense]*tensor.Dense, len(t.entries))
	adj[output] = tensor.OnesLike(output)
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := &t.entries[i]
		g, ok := adj[e.out]
		if !ok {
			continue
		}
		for j, c := range vjp(e, g) {
			if c == nil {
				continue
			}
			if prev, ok := adj[e.in[j]]; ok {
				adj[e.in[j]] = Add(prev, c)
			} else {
				adj[e.in[j]] = c
			}
		}
	}
	out := make([]*tensor.Dense, len(wrt))
	for i, w := range wrt {
		out[i] = adj[w]
	}
	return out, nil
}

// vjp returns the cotangent contribution for each input of e given the
// output cotangent g. A nil slot means no gradient flows to that
// input. Contributions are computed through the op layer so active
// recorders observe the backward work.
func vjp(e *entry, g *tensor.Dense) []*tensor.Dense {
	switch e.op {
	case OpAdd:
		return []*tensor.Dense{g, g}
	case OpSub:
		return []*tensor.Dense{g, Neg(g)}
	case OpMul:
		return []*tensor.Dense{Mul(g, e.in[1]), Mul(g, e.in[0])}
	case OpDiv:
		da := Div(g, e.in[1])
		db := Neg(Div(Mul(g, e.in[0]), Mul(e.in[1], e.in[1])))
		return []*tensor.Dense{da, db}
	case OpNeg:
		return []*tensor.Dense{Neg(g)}
	case OpScale:
		return []*tensor.Dense{Scale(g, e.arg)}
	case OpAddScalar:
		return []*tensor.Dense{g}
	case OpMatMul:
		return []*tensor.Dense{
			MatMul(g, Transpose(e.in[1])),
			MatMul(Transpose(e.in[0]), g),
		}
	case OpMatVec:
		return []*tensor.Dense{
			Outer(g, e.in[1]),
			MatVec(Transpose(e.in[0]), g),
		}
	case OpOuter:
		return []*tensor.Dense{
			MatVec(g, e.in[1]),
			MatVec(Transpose(g), e.in[0]),
		}
	case OpTranspose:
		return []*tensor.Dense{Transpose(g)}
	case OpSigmoid:
		return []*tensor.Dense{Mul(g, Mul(e.out, AddScalar(Neg(e.out), 1)))}
	case OpTanh:
		return []*tensor.Dense{Mul(g, AddScalar(Neg(Mul(e.out, e.out)), 1))}
	case OpRelu:
		return []*tensor.Dense{Mul(g, Step(e.in[0]))}
	case OpStep:
		return []*tensor.Dense{nil}
	case OpLog:
		return []*tensor.Dense{Div(g, e.in[0])}
	case OpExp:
		return []*tensor.Dense{Mul(g, e.out)}
	case OpSum:
		return []*tensor.Dense{Spread(g, e.in[0])}
	case OpMean:
		return []*tensor.Dense{Scale(Spread(g, e.in[0]), 1/float64(e.in[0].Len()))}
	case OpSpread:
		return []*tensor.Dense{Sum(g), nil}
	default:
		panic(errors.Errorf("autodiff: no gradient rule for op %s", e.op))
	}
}
