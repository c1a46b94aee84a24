package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// f(x, y) = x*y with only x selected: the gradient with respect to x
// is y, and y's position carries Absent rather than zero.
func TestGradFilterAndPositionBothRequired(t *testing.T) {
	f := func(args ...any) any {
		x := args[0].(*tensor.Dense)
		y := args[1].(float64)
		return autodiff.Scale(x, y)
	}
	gf := filter.Grad(f, filter.Options{Filter: filter.Where(filter.IsTensor)})

	grads, err := gf(tensor.Scalar(3), 5.0)
	require.NoError(t, err)
	require.Len(t, grads, 2)

	gx := grads[0].(*tensor.Dense)
	assert.Equal(t, 5.0, gx.Item())
	assert.True(t, filter.IsAbsent(grads[1]))
}

func TestGradEligiblePositions(t *testing.T) {
	f := func(args ...any) any {
		return autodiff.Sum(autodiff.Mul(args[0].(*tensor.Dense), args[1].(*tensor.Dense)))
	}
	x := tensor.FromFloat64s([]float64{1, 2}, 2)
	y := tensor.FromFloat64s([]float64{10, 20}, 2)

	gf := filter.Grad(f, filter.Options{Filter: filter.Where(filter.IsTensor)})
	grads, err := gf(x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, grads[0].(*tensor.Dense).Float64s())
	assert.True(t, filter.IsAbsent(grads[1]))

	gf = filter.Grad(f, filter.Options{
		Filter: filter.Where(filter.IsTensor),
		Args:   []int{0, 1},
	})
	grads, err = gf(x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, grads[0].(*tensor.Dense).Float64s())
	assert.Equal(t, []float64{1, 2}, grads[1].(*tensor.Dense).Float64s())
}

func TestGradFilterExcludesLeaf(t *testing.T) {
	model := newLinear([]float64{1, 2}, []float64{0.5}, 1, 2)
	x := tensor.FromFloat64s([]float64{3, 4}, 2)
	loss := func(args ...any) any {
		m := args[0].(*linear)
		return autodiff.Sum(autodiff.Add(autodiff.MatVec(m.Weight, x), m.Bias))
	}

	mask, err := tree.Map(func(leaf any) any {
		return leaf == model.Weight
	}, tree.Shadow(model))
	require.NoError(t, err)

	gf := filter.Grad(loss, filter.Options{Filter: filter.MaskOf([]any{mask})})
	grads, err := gf(model)
	require.NoError(t, err)

	rec := grads[0].(*tree.Rec)
	gw, ok := rec.Get("Weight")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, gw.(*tensor.Dense).Float64s())

	gb, ok := rec.Get("Bias")
	require.True(t, ok)
	assert.True(t, filter.IsAbsent(gb))
}

func TestGradUnusedEligibleLeafGetsZeros(t *testing.T) {
	model := newLinear([]float64{1, 2}, []float64{0.5}, 1, 2)
	x := tensor.FromFloat64s([]float64{3, 4}, 2)
	loss := func(args ...any) any {
		m := args[0].(*linear)
		// Bias never participates.
		return autodiff.Sum(autodiff.MatVec(m.Weight, x))
	}

	gf := filter.Grad(loss, filter.Options{Filter: filter.Where(filter.IsInexactTensor)})
	grads, err := gf(model)
	require.NoError(t, err)

	rec := grads[0].(*tree.Rec)
	gb, ok := rec.Get("Bias")
	require.True(t, ok)
	require.False(t, filter.IsAbsent(gb))
	assert.Equal(t, []float64{0}, gb.(*tensor.Dense).Float64s())
}

func TestGradTreeMirrorsArgumentStructure(t *testing.T) {
	model := newLinear([]float64{1, 2}, []float64{0.5}, 1, 2)
	loss := func(args ...any) any {
		m := args[0].(*linear)
		return autodiff.Sum(m.Weight)
	}
	gf := filter.Grad(loss, filter.Options{Filter: filter.Where(filter.IsInexactTensor)})
	grads, err := gf(model)
	require.NoError(t, err)

	_, want := tree.Flatten(model)
	_, got := tree.Flatten(grads[0])
	assert.True(t, want.Equal(got))
}

func TestValueAndGradReturnsValue(t *testing.T) {
	f := func(args ...any) any {
		x := args[0].(*tensor.Dense)
		return autodiff.Sum(autodiff.Mul(x, x))
	}
	vg := filter.ValueAndGrad(f, filter.Options{Filter: filter.Where(filter.IsTensor)})

	x := tensor.FromFloat64s([]float64{1, 2, 3}, 3)
	v, grads, err := vg(x)
	require.NoError(t, err)
	assert.Equal(t, 14.0, v.(*tensor.Dense).Item())
	assert.Equal(t, []float64{2, 4, 6}, grads[0].(*tensor.Dense).Float64s())
}

func TestGradNonScalarOutput(t *testing.T) {
	ident := func(args ...any) any { return args[0] }
	gf := filter.Grad(ident, filter.Options{Filter: filter.Where(filter.IsTensor)})
	_, err := gf(tensor.FromFloat64s([]float64{1, 2}, 2))
	require.ErrorIs(t, err, autodiff.ErrNonScalarOutput)

	str := func(args ...any) any { return "not a tensor" }
	gf = filter.Grad(str, filter.Options{Filter: filter.Where(filter.IsTensor)})
	_, err = gf(tensor.Scalar(1))
	require.ErrorIs(t, err, autodiff.ErrNonScalarOutput)
}

func TestGradUntraceableSelection(t *testing.T) {
	f := func(args ...any) any { return tensor.Scalar(0) }
	gf := filter.Grad(f, filter.Options{Filter: filter.Where(func(any) bool { return true })})
	_, err := gf([]any{42})
	require.ErrorIs(t, err, filter.ErrUntraceable)
}

func TestGradConfigErrors(t *testing.T) {
	f := func(args ...any) any { return tensor.Scalar(0) }

	gf := filter.Grad(f, filter.Options{})
	_, err := gf(tensor.Scalar(1))
	require.ErrorIs(t, err, filter.ErrFilterConfig)

	gf = filter.Grad(f, filter.Options{
		Filter: filter.Where(filter.IsTensor),
		Args:   []int{3},
	})
	_, err = gf(tensor.Scalar(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	gf = filter.Grad(f, filter.Options{
		Filter: filter.MaskOf([]any{true, false}),
	})
	_, err = gf(tensor.Scalar(1))
	require.ErrorIs(t, err, filter.ErrStructureMismatch)
}

func TestGradFunctionPanicBecomesError(t *testing.T) {
	f := func(args ...any) any { panic("exploded") }
	gf := filter.Grad(f, filter.Options{Filter: filter.Where(filter.IsTensor)})
	_, err := gf(tensor.Scalar(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exploded")
}
