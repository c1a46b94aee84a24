package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/tensor"
)

func TestPredicates(t *testing.T) {
	f64 := tensor.FromFloat64s([]float64{1, 2}, 2)
	i64 := tensor.FromInt64s([]int64{1, 2}, 2)

	tests := []struct {
		name        string
		leaf        any
		tensor      bool
		tensorLike  bool
		inexact     bool
		inexactLike bool
	}{
		{"float tensor", f64, true, true, true, true},
		{"int tensor", i64, true, true, false, false},
		{"float slice", []float64{1, 2}, false, true, false, true},
		{"float32 slice", []float32{1}, false, true, false, true},
		{"int slice", []int{1, 2}, false, true, false, false},
		{"bool slice", []bool{true}, false, true, false, false},
		{"float scalar", 3.5, false, true, false, true},
		{"int scalar", 3, false, true, false, false},
		{"bool scalar", true, false, true, false, false},
		{"complex scalar", complex(1, 2), false, true, false, true},
		{"string", "x", false, false, false, false},
		{"string slice", []string{"x"}, false, false, false, false},
		{"nil", nil, false, false, false, false},
		{"typed nil tensor", (*tensor.Dense)(nil), false, false, false, false},
		{"struct", struct{ X int }{1}, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tensor, filter.IsTensor(tt.leaf), "IsTensor")
			assert.Equal(t, tt.tensorLike, filter.IsTensorLike(tt.leaf), "IsTensorLike")
			assert.Equal(t, tt.inexact, filter.IsInexactTensor(tt.leaf), "IsInexactTensor")
			assert.Equal(t, tt.inexactLike, filter.IsInexactTensorLike(tt.leaf), "IsInexactTensorLike")
		})
	}
}

func TestPredicateNarrowing(t *testing.T) {
	leaves := []any{
		tensor.FromFloat64s([]float64{1}, 1),
		tensor.FromInt64s([]int64{1}, 1),
		tensor.FromBools([]bool{true}, 1),
		[]float64{1}, []int{1}, 3.5, 3, true, "x", nil,
	}
	for _, leaf := range leaves {
		if filter.IsInexactTensor(leaf) {
			assert.True(t, filter.IsTensor(leaf))
			assert.True(t, filter.IsInexactTensorLike(leaf))
		}
		if filter.IsTensor(leaf) {
			assert.True(t, filter.IsTensorLike(leaf))
		}
		if filter.IsInexactTensorLike(leaf) {
			assert.True(t, filter.IsTensorLike(leaf))
		}
	}
}
