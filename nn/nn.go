// Package nn provides neural network layers as immutable tree
// modules.
//
// Layers are plain records embedding tree.Module, constructed once
// and never mutated. Their Apply methods run through the op layer,
// so layers are differentiable and traceable, and the records
// themselves flatten into parameter leaves plus static
// configuration, ready for the filter package's transformations.
package nn

import (
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Layer applies a differentiable transformation to a vector.
type Layer interface {
	Apply(x *tensor.Dense) *tensor.Dense
}

// Identity passes its input through unchanged. It is useful as a
// placeholder layer.
type Identity struct {
	tree.Module
}

// NewIdentity returns an Identity layer.
func NewIdentity() Identity { return Identity{} }

// Apply returns x.
func (Identity) Apply(x *tensor.Dense) *tensor.Dense { return x }
