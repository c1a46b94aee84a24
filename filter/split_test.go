package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

func TestSplitMergeRoundTrip(t *testing.T) {
	model := &mlp{
		Layers: []any{
			newLinear([]float64{1, 2, 3, 4}, []float64{5, 6}, 2, 2),
			newLinear([]float64{7, 8}, nil, 1, 2),
		},
		Name: "net",
	}

	p, err := filter.Split(model, filter.Where(filter.IsTensor))
	require.NoError(t, err)

	assert.Len(t, p.Active, 3)
	assert.Len(t, p.Inactive, 2)
	assert.Equal(t, p.Structure.NumLeaves(), len(p.Active)+len(p.Inactive))
	assert.Len(t, p.Mask, p.Structure.NumLeaves())

	back, err := p.Merge()
	require.NoError(t, err)
	rebuilt := back.(*mlp)
	require.Same(t, model.Layers[0].(*linear).Weight, rebuilt.Layers[0].(*linear).Weight)
	require.Same(t, model.Layers[1].(*linear).Weight, rebuilt.Layers[1].(*linear).Weight)
	assert.Equal(t, "net", rebuilt.Name)
	assert.True(t, filter.TreeEqual(model, back))
}

func TestSplitPreservesRelativeOrder(t *testing.T) {
	v := []any{1.0, "a", 2.0, "b", 3.0}
	p, err := filter.Split(v, filter.Where(filter.IsInexactTensorLike))
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, p.Active)
	assert.Equal(t, []any{"a", "b"}, p.Inactive)
	assert.Equal(t, []bool{true, false, true, false, true}, p.Mask)
}

func TestSplitWithMask(t *testing.T) {
	model := newLinear([]float64{1, 2}, []float64{3}, 1, 2)
	mask, err := tree.Map(func(leaf any) any {
		d, ok := leaf.(*tensor.Dense)
		return ok && d.Len() == 2
	}, tree.Shadow(model))
	require.NoError(t, err)

	p, err := filter.Split(model, filter.MaskOf(mask))
	require.NoError(t, err)
	require.Len(t, p.Active, 1)
	require.Same(t, model.Weight, p.Active[0])
	require.Same(t, model.Bias, p.Inactive[0])

	back, err := p.Merge()
	require.NoError(t, err)
	require.Same(t, model.Weight, back.(*linear).Weight)
}

func TestSplitMaskStructureMismatch(t *testing.T) {
	v := map[string]any{"a": 1.0, "b": 2.0}
	mask := map[string]any{"a": true, "c": false}

	_, err := filter.Split(v, filter.MaskOf(mask))
	require.ErrorIs(t, err, filter.ErrStructureMismatch)
	var serr *filter.StructureError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Want, "a:")
	assert.Contains(t, serr.Got, "c:")
}

func TestSplitMaskLeafNotBool(t *testing.T) {
	v := map[string]any{"a": 1.0}
	mask := map[string]any{"a": 1}
	_, err := filter.Split(v, filter.MaskOf(mask))
	require.ErrorIs(t, err, filter.ErrFilterConfig)
	assert.Contains(t, err.Error(), "want bool")
}

func TestSplitFilterConfig(t *testing.T) {
	v := []any{1.0}
	_, err := filter.Split(v, filter.Filter{})
	require.ErrorIs(t, err, filter.ErrFilterConfig)

	_, err = filter.Split(v, filter.Filter{
		Pred: filter.IsTensor,
		Mask: []any{true},
	})
	require.ErrorIs(t, err, filter.ErrFilterConfig)
}

func TestMergeCountMismatch(t *testing.T) {
	p, err := filter.Split([]any{1.0, "a"}, filter.Where(filter.IsInexactTensorLike))
	require.NoError(t, err)

	_, err = filter.Merge(p.Active, nil, p.Mask, p.Structure)
	require.ErrorIs(t, err, filter.ErrStructureMismatch)

	_, err = filter.Merge(p.Active, p.Inactive, p.Mask[:1], p.Structure)
	require.ErrorIs(t, err, filter.ErrStructureMismatch)
}

func TestSplitEmptyPartition(t *testing.T) {
	v := map[string]any{"a": "x", "b": "y"}
	p, err := filter.Split(v, filter.Where(filter.IsTensor))
	require.NoError(t, err)
	assert.Empty(t, p.Active)
	assert.Len(t, p.Inactive, 2)

	back, err := p.Merge()
	require.NoError(t, err)
	assert.Equal(t, v, back)
}
