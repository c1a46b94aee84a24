package nn

import (
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Sequential chains layers, feeding each one's output to the next.
type Sequential struct {
	tree.Module

	Layers []Layer
}

// NewSequential returns a Sequential over the given layers. An empty
// chain behaves like Identity.
func NewSequential(layers ...Layer) (*Sequential, error) {
	if layers == nil {
		layers = []Layer{}
	}
	return tree.Finish(&Sequential{Layers: layers})
}

// Apply runs the chain left to right.
func (s *Sequential) Apply(x *tensor.Dense) *tensor.Dense {
	for _, l := range s.Layers {
		x = l.Apply(x)
	}
	return x
}
