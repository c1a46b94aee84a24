package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// GRUCell is a gated recurrent unit over single time steps. Each gate
// keeps its own projection matrices rather than packing the three
// gates into one.
type GRUCell struct {
	tree.Module

	// Input projections, each [Hidden, Input].
	WeightIR *tensor.Dense
	WeightIZ *tensor.Dense
	WeightIN *tensor.Dense

	// Hidden projections, each [Hidden, Hidden].
	WeightHR *tensor.Dense
	WeightHZ *tensor.Dense
	WeightHN *tensor.Dense

	// Gate biases, each [Hidden]. Nil when built without biases.
	BiasR *tensor.Dense `tree:"optional"`
	BiasZ *tensor.Dense `tree:"optional"`
	BiasN *tensor.Dense `tree:"optional"`
	// BiasHN is applied inside the reset gating of the candidate.
	BiasHN *tensor.Dense `tree:"optional"`

	Input  int
	Hidden int
}

// NewGRUCell returns a GRUCell with weights drawn uniformly from
// [-1/sqrt(hidden), 1/sqrt(hidden)).
func NewGRUCell(input, hidden int, useBias bool, rng *rand.Rand) (*GRUCell, error) {
	if input <= 0 || hidden <= 0 {
		return nil, fmt.Errorf("%w: input=%d hidden=%d", ErrBadSize, input, hidden)
	}
	if rng == nil {
		return nil, ErrNilRand
	}
	lim := 1 / math.Sqrt(float64(hidden))
	u := func(shape ...int) *tensor.Dense {
		return tensor.Uniform(rng, -lim, lim, shape...)
	}
	c := &GRUCell{
		WeightIR: u(hidden, input),
		WeightIZ: u(hidden, input),
		WeightIN: u(hidden, input),
		WeightHR: u(hidden, hidden),
		WeightHZ: u(hidden, hidden),
		WeightHN: u(hidden, hidden),
		Input:    input,
		Hidden:   hidden,
	}
	if useBias {
		c.BiasR = u(hidden)
		c.BiasZ = u(hidden)
		c.BiasN = u(hidden)
		c.BiasHN = u(hidden)
	}
	return tree.Finish(c)
}

// Apply advances the hidden state by one step:
//
//	r  = sigmoid(Wir x + Whr h + br)
//	z  = sigmoid(Wiz x + Whz h + bz)
//	n  = tanh(Win x + bn + r * (Whn h + bhn))
//	h' = (1 - z) * n + z * h
func (c *GRUCell) Apply(x, h *tensor.Dense) *tensor.Dense {
	r := autodiff.Sigmoid(c.gate(c.WeightIR, x, c.WeightHR, h, c.BiasR))
	z := autodiff.Sigmoid(c.gate(c.WeightIZ, x, c.WeightHZ, h, c.BiasZ))

	cand := autodiff.MatVec(c.WeightHN, h)
	if c.BiasHN != nil {
		cand = autodiff.Add(cand, c.BiasHN)
	}
	pre := autodiff.Add(autodiff.MatVec(c.WeightIN, x), autodiff.Mul(r, cand))
	if c.BiasN != nil {
		pre = autodiff.Add(pre, c.BiasN)
	}
	n := autodiff.Tanh(pre)

	keep := autodiff.AddScalar(autodiff.Neg(z), 1)
	return autodiff.Add(autodiff.Mul(keep, n), autodiff.Mul(z, h))
}

func (c *GRUCell) gate(wi, x, wh, h, bias *tensor.Dense) *tensor.Dense {
	pre := autodiff.Add(autodiff.MatVec(wi, x), autodiff.MatVec(wh, h))
	if bias != nil {
		pre = autodiff.Add(pre, bias)
	}
	return pre
}
