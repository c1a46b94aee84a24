package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Activation names accepted by NewMLP. Activations are stored by name
// so a model stays hashable when compiled around.
const (
	ActivationRelu    = "relu"
	ActivationTanh    = "tanh"
	ActivationSigmoid = "sigmoid"
)

// MLP is a multilayer perceptron: depth hidden layers of equal width
// with an activation between layers, none after the last.
type MLP struct {
	tree.Module

	Layers     []*Linear
	Activation string
}

// NewMLP returns an MLP mapping in features to out features through
// depth hidden layers of the given width. Depth zero is a single
// affine layer.
func NewMLP(in, width, out, depth int, activation string, rng *rand.Rand) (*MLP, error) {
	if depth < 0 {
		return nil, fmt.Errorf("%w: depth=%d", ErrBadSize, depth)
	}
	if err := checkActivation(activation); err != nil {
		return nil, err
	}
	sizes := make([]int, 0, depth+2)
	sizes = append(sizes, in)
	for i := 0; i < depth; i++ {
		sizes = append(sizes, width)
	}
	sizes = append(sizes, out)

	layers := make([]*Linear, 0, depth+1)
	for i := 0; i+1 < len(sizes); i++ {
		l, err := NewLinear(sizes[i], sizes[i+1], true, rng)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return tree.Finish(&MLP{Layers: layers, Activation: activation})
}

// Apply runs the perceptron on a vector of in features.
func (m *MLP) Apply(x *tensor.Dense) *tensor.Dense {
	for i, l := range m.Layers {
		x = l.Apply(x)
		if i+1 < len(m.Layers) {
			x = activate(m.Activation, x)
		}
	}
	return x
}

func checkActivation(name string) error {
	switch name {
	case ActivationRelu, ActivationTanh, ActivationSigmoid:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrBadActivation, name)
}

func activate(name string, x *tensor.Dense) *tensor.Dense {
	switch name {
	case ActivationRelu:
		return autodiff.Relu(x)
	case ActivationTanh:
		return autodiff.Tanh(x)
	case ActivationSigmoid:
		return autodiff.Sigmoid(x)
	}
	return x
}
