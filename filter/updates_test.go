package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

func TestApplyUpdatesSkipsAbsent(t *testing.T) {
	model := map[string]any{"w": 1.0, "flag": true}
	updates := map[string]any{"w": 0.5, "flag": filter.Absent}

	out, err := filter.ApplyUpdates(model, updates)
	require.NoError(t, err)
	got := out.(map[string]any)
	assert.Equal(t, 1.5, got["w"])
	assert.Equal(t, true, got["flag"])
}

func TestApplyUpdatesAddsTensors(t *testing.T) {
	model := newLinear([]float64{1, 2}, []float64{3}, 1, 2)
	step := tensor.FromFloat64s([]float64{-0.5, 0.5}, 1, 2)
	updates, err := tree.Map(func(leaf any) any {
		if leaf == model.Weight {
			return step
		}
		return filter.Absent
	}, tree.Shadow(model))
	require.NoError(t, err)

	out, err := filter.ApplyUpdates(model, updates)
	require.NoError(t, err)
	got := out.(*linear)
	assert.Equal(t, []float64{0.5, 2.5}, got.Weight.Float64s())
	require.Same(t, model.Bias, got.Bias)

	// The input model keeps its values.
	assert.Equal(t, []float64{1, 2}, model.Weight.Float64s())
}

func TestApplyUpdatesStructureMismatch(t *testing.T) {
	model := map[string]any{"a": 1.0}
	updates := map[string]any{"b": 1.0}
	_, err := filter.ApplyUpdates(model, updates)
	require.ErrorIs(t, err, filter.ErrStructureMismatch)
}

func TestApplyUpdatesNilLeaves(t *testing.T) {
	out, err := filter.ApplyUpdates([]any{nil, 1.0}, []any{nil, 0.5})
	require.NoError(t, err)
	assert.Equal(t, []any{nil, 1.5}, out)
}

func TestApplyUpdatesNilAgainstValue(t *testing.T) {
	_, err := filter.ApplyUpdates([]any{1.0}, []any{nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot add")
}

func TestApplyUpdatesShapeMismatch(t *testing.T) {
	model := []any{tensor.FromFloat64s([]float64{1, 2}, 2)}
	updates := []any{tensor.FromFloat64s([]float64{1, 2, 3}, 3)}
	_, err := filter.ApplyUpdates(model, updates)
	require.Error(t, err)
	var serr *tensor.ShapeError
	require.ErrorAs(t, err, &serr)
}

func TestApplyUpdatesTypeMismatch(t *testing.T) {
	_, err := filter.ApplyUpdates([]any{1.0}, []any{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot add")

	_, err = filter.ApplyUpdates([]any{tensor.Scalar(1)}, []any{2.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tensor leaf")
}

func TestApplyUpdatesScalarKinds(t *testing.T) {
	model := []any{int(1), int32(2), int64(3), float32(1.5), complex(1, 1)}
	updates := []any{int(10), int32(20), int64(30), float32(0.5), complex(0, 1)}
	out, err := filter.ApplyUpdates(model, updates)
	require.NoError(t, err)
	assert.Equal(t, []any{int(11), int32(22), int64(33), float32(2.0), complex(1, 2)}, out)
}
