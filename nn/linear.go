package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Linear is an affine map from In features to Out features.
type Linear struct {
	tree.Module

	// Weight has shape [Out, In].
	Weight *tensor.Dense
	// Bias has shape [Out]. Nil when the layer was built without one.
	Bias *tensor.Dense `tree:"optional"`

	In  int
	Out int
}

// NewLinear returns a Linear layer with weights drawn uniformly from
// [-1/sqrt(in), 1/sqrt(in)), the bias included unless useBias is
// false.
func NewLinear(in, out int, useBias bool, rng *rand.Rand) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("%w: in=%d out=%d", ErrBadSize, in, out)
	}
	if rng == nil {
		return nil, ErrNilRand
	}
	lim := 1 / math.Sqrt(float64(in))
	l := &Linear{
		Weight: tensor.Uniform(rng, -lim, lim, out, in),
		In:     in,
		Out:    out,
	}
	if useBias {
		l.Bias = tensor.Uniform(rng, -lim, lim, out)
	}
	return tree.Finish(l)
}

// Apply maps a vector of In features to Out features.
func (l *Linear) Apply(x *tensor.Dense) *tensor.Dense {
	y := autodiff.MatVec(l.Weight, x)
	if l.Bias != nil {
		y = autodiff.Add(y, l.Bias)
	}
	return y
}
