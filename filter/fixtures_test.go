package filter_test

import (
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

type linear struct {
	tree.Module
	Weight *tensor.Dense
	Bias   *tensor.Dense `tree:"optional"`
}

type mlp struct {
	tree.Module
	Layers []any
	Name   string
}

func newLinear(w, b []float64, out, in int) *linear {
	l := &linear{Weight: tensor.FromFloat64s(w, out, in)}
	if b != nil {
		l.Bias = tensor.FromFloat64s(b, out)
	}
	return l
}
