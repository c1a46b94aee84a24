package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafkit/leafkit/tree"
)

type cell struct {
	tree.Module
	WeightIH *dense
	WeightHH *dense
	Bias     *dense `tree:"optional"`
	Size     int
}

type hidden struct {
	tree.Module
	Weight *dense
	cached int
}

func TestFinishComplete(t *testing.T) {
	c := &cell{WeightIH: &dense{}, WeightHH: &dense{}, Size: 4}
	got, err := tree.Finish(c)
	require.NoError(t, err)
	require.Same(t, c, got)
}

func TestFinishMissingFields(t *testing.T) {
	_, err := tree.Finish(&cell{WeightIH: &dense{}})
	var ie *tree.IncompleteError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, []string{"WeightHH"}, ie.Fields)
	require.Contains(t, ie.Error(), "WeightHH")

	_, err = tree.Finish(&cell{})
	require.ErrorAs(t, err, &ie)
	require.Equal(t, []string{"WeightIH", "WeightHH"}, ie.Fields)
}

func TestFinishOptionalFieldMayBeNil(t *testing.T) {
	_, err := tree.Finish(&cell{WeightIH: &dense{}, WeightHH: &dense{}})
	require.NoError(t, err)
}

func TestFinishValueReceiver(t *testing.T) {
	c := cell{WeightIH: &dense{}, WeightHH: &dense{}}
	got, err := tree.Finish(c)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestFinishRejectsNonModules(t *testing.T) {
	_, err := tree.Finish(42)
	require.ErrorIs(t, err, tree.ErrNotModule)

	_, err = tree.Finish(struct{ X int }{})
	require.ErrorIs(t, err, tree.ErrNotModule)

	_, err = tree.Finish((*cell)(nil))
	require.ErrorIs(t, err, tree.ErrNotModule)
}

func TestFinishRejectsUnexportedFields(t *testing.T) {
	_, err := tree.Finish(&hidden{Weight: &dense{}})
	require.ErrorIs(t, err, tree.ErrUnexportedField)
	require.Contains(t, err.Error(), "cached")
}
