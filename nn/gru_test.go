package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/nn"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func TestGRUCellApplyHandComputed(t *testing.T) {
	cell, err := tree.Finish(&nn.GRUCell{
		WeightIR: tensor.FromFloat64s([]float64{0.1, 0.2}, 1, 2),
		WeightIZ: tensor.FromFloat64s([]float64{-0.3, 0.4}, 1, 2),
		WeightIN: tensor.FromFloat64s([]float64{0.5, -0.6}, 1, 2),
		WeightHR: tensor.FromFloat64s([]float64{0.7}, 1, 1),
		WeightHZ: tensor.FromFloat64s([]float64{-0.8}, 1, 1),
		WeightHN: tensor.FromFloat64s([]float64{0.9}, 1, 1),
		BiasR:    tensor.FromFloat64s([]float64{0.05}, 1),
		BiasZ:    tensor.FromFloat64s([]float64{-0.1}, 1),
		BiasN:    tensor.FromFloat64s([]float64{0.15}, 1),
		BiasHN:   tensor.FromFloat64s([]float64{0.2}, 1),
		Input:    2,
		Hidden:   1,
	})
	require.NoError(t, err)

	x := tensor.FromFloat64s([]float64{1, -1}, 2)
	h := tensor.FromFloat64s([]float64{0.5}, 1)
	got := cell.Apply(x, h)

	r := sigmoid(0.1*1 + 0.2*(-1) + 0.7*0.5 + 0.05)
	z := sigmoid(-0.3*1 + 0.4*(-1) + -0.8*0.5 + -0.1)
	n := math.Tanh(0.5*1 + -0.6*(-1) + 0.15 + r*(0.9*0.5+0.2))
	want := (1-z)*n + z*0.5

	require.Equal(t, []int{1}, got.Shape())
	assert.InDelta(t, want, got.Item(), 1e-12)
}

func TestGRUCellIncompleteLiteral(t *testing.T) {
	_, err := tree.Finish(&nn.GRUCell{
		WeightIR: tensor.FromFloat64s([]float64{0.1, 0.2}, 1, 2),
		Input:    2,
		Hidden:   1,
	})
	var inc *tree.IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Contains(t, inc.Error(), "WeightIZ")
}

func TestNewGRUCellShapes(t *testing.T) {
	cell, err := nn.NewGRUCell(3, 5, true, testRand())
	require.NoError(t, err)

	assert.Equal(t, []int{5, 3}, cell.WeightIR.Shape())
	assert.Equal(t, []int{5, 3}, cell.WeightIZ.Shape())
	assert.Equal(t, []int{5, 3}, cell.WeightIN.Shape())
	assert.Equal(t, []int{5, 5}, cell.WeightHR.Shape())
	assert.Equal(t, []int{5, 5}, cell.WeightHZ.Shape())
	assert.Equal(t, []int{5, 5}, cell.WeightHN.Shape())
	assert.Equal(t, []int{5}, cell.BiasR.Shape())
	assert.Equal(t, []int{5}, cell.BiasHN.Shape())

	x := tensor.FromFloat64s([]float64{1, 2, 3}, 3)
	h := tensor.Zeros(tensor.Float64, 5)
	assert.Equal(t, []int{5}, cell.Apply(x, h).Shape())
}

func TestNewGRUCellNoBias(t *testing.T) {
	cell, err := nn.NewGRUCell(2, 2, false, testRand())
	require.NoError(t, err)
	assert.Nil(t, cell.BiasR)
	assert.Nil(t, cell.BiasZ)
	assert.Nil(t, cell.BiasN)
	assert.Nil(t, cell.BiasHN)

	x := tensor.FromFloat64s([]float64{1, -1}, 2)
	h := tensor.Zeros(tensor.Float64, 2)
	assert.Equal(t, []int{2}, cell.Apply(x, h).Shape())
}

func TestNewGRUCellErrors(t *testing.T) {
	_, err := nn.NewGRUCell(0, 2, true, testRand())
	require.ErrorIs(t, err, nn.ErrBadSize)

	_, err = nn.NewGRUCell(2, 0, true, testRand())
	require.ErrorIs(t, err, nn.ErrBadSize)

	_, err = nn.NewGRUCell(2, 2, true, nil)
	require.ErrorIs(t, err, nn.ErrNilRand)
}

func TestGRUCellGradients(t *testing.T) {
	cell, err := nn.NewGRUCell(2, 3, true, testRand())
	require.NoError(t, err)

	x := tensor.FromFloat64s([]float64{0.3, -0.7}, 2)
	h := tensor.Zeros(tensor.Float64, 3)

	g := filter.Grad(func(args ...any) any {
		c := args[0].(*nn.GRUCell)
		return autodiff.Sum(c.Apply(x, h))
	}, filter.Options{Filter: filter.Where(filter.IsInexactTensor)})

	grads, err := g(cell)
	require.NoError(t, err)
	require.Len(t, grads, 1)

	gc := grads[0].(*tree.Rec)
	gw, ok := gc.Get("WeightIR")
	require.True(t, ok)
	assert.Equal(t, []int{3, 2}, gw.(*tensor.Dense).Shape())

	gi, ok := gc.Get("Input")
	require.True(t, ok)
	assert.True(t, filter.IsAbsent(gi))
}
