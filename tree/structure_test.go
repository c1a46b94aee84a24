package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafkit/leafkit/tree"
)

type gru struct {
	tree.Module
	Weight *dense
	Bias   *dense
}

func structureOf(t *testing.T, v any) *tree.Structure {
	t.Helper()
	_, s := tree.Flatten(v)
	return s
}

func TestStructureEqual(t *testing.T) {
	w := &dense{}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same-shape", []any{1, 2}, []any{"x", w}, true},
		{"typed-vs-generic-slice", []*dense{w, w}, []any{1, 2}, true},
		{"length-differs", []any{1}, []any{1, 2}, false},
		{"map-keys-match", map[string]any{"a": 1, "b": 2}, map[string]float64{"b": 9, "a": 8}, true},
		{"map-keys-differ", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"leaf-vs-container", []float64{1, 2}, []any{1.0, 2.0}, false},
		{"record-types-differ", linear{Weight: w, Bias: w}, gru{Weight: w, Bias: w}, false},
		{"record-value-vs-pointer", linear{Weight: w, Bias: w}, &linear{Weight: w, Bias: w}, true},
		{"nested-mismatch", []any{[]any{1}}, []any{[]any{1, 2}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, b := structureOf(t, tc.a), structureOf(t, tc.b)
			require.Equal(t, tc.want, a.Equal(b))
			require.Equal(t, tc.want, b.Equal(a))
		})
	}
}

func TestStructureString(t *testing.T) {
	w := &dense{}
	v := map[string]any{
		"lin": &linear{Weight: w, Bias: w},
		"xs":  []any{1, 2},
	}
	s := structureOf(t, v)
	require.Equal(t, "{lin:tree_test.linear(Weight:* Bias:*) xs:[* *]}", s.String())
	require.Equal(t, "*", structureOf(t, 42).String())
}

func TestPathOf(t *testing.T) {
	w, b := &dense{}, &dense{}
	v := &mlp{
		Layers: []any{
			&linear{Weight: w, Bias: b},
			map[string]any{"lr": 0.1},
		},
		Name: "net",
	}
	s := structureOf(t, v)
	require.Equal(t, 4, s.NumLeaves())
	require.Equal(t, "Layers[0].Weight", s.PathOf(0))
	require.Equal(t, "Layers[0].Bias", s.PathOf(1))
	require.Equal(t, `Layers[1]["lr"]`, s.PathOf(2))
	require.Equal(t, "Name", s.PathOf(3))
	require.Equal(t, "(root)", structureOf(t, 1).PathOf(0))
}

func TestUnflattenLeafCount(t *testing.T) {
	s := structureOf(t, []any{1, 2})
	_, err := tree.Unflatten(s, []any{1})
	require.ErrorIs(t, err, tree.ErrLeafCount)

	_, err = tree.Unflatten(nil, nil)
	require.ErrorIs(t, err, tree.ErrNilStructure)
}

func TestUnflattenBindError(t *testing.T) {
	w := &dense{}
	s := structureOf(t, []*dense{w})
	_, err := tree.Unflatten(s, []any{42})
	require.ErrorIs(t, err, tree.ErrBind)

	// Generic slots accept anything.
	g := structureOf(t, []any{w})
	out, err := tree.Unflatten(g, []any{42})
	require.NoError(t, err)
	require.Equal(t, []any{42}, out)
}

func TestUnflattenNilIntoValueSlot(t *testing.T) {
	s := structureOf(t, map[string]float64{"a": 1})
	_, err := tree.Unflatten(s, []any{nil})
	require.ErrorIs(t, err, tree.ErrBind)

	p := structureOf(t, []*dense{{}})
	out, err := tree.Unflatten(p, []any{nil})
	require.NoError(t, err)
	require.Nil(t, out.([]*dense)[0])
}

func TestUnflattenRebuildsShadow(t *testing.T) {
	w, b := &dense{}, &dense{}
	sh := tree.Shadow(&linear{Weight: w, Bias: b})
	leaves, s := tree.Flatten(sh)
	rebuilt, err := tree.Unflatten(s, leaves)
	require.NoError(t, err)
	rec, ok := rebuilt.(*tree.Rec)
	require.True(t, ok)
	got, _ := rec.Get("Weight")
	require.Same(t, w, got)
}
