package filter

import (
	"reflect"

	"jsouthworth.net/go/dyn"

	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// TreeEqual reports whether all trees share one structure and hold
// equal leaves position-wise. A native tensor never equals a foreign
// slice, whatever the numbers; tensors compare by dtype, shape and
// exact elements; other leaves must share a dynamic type and compare
// by value. Structure divergence yields false, not an error.
func TreeEqual(trees ...any) bool {
	if len(trees) < 2 {
		return true
	}
	first, s := tree.Flatten(trees[0])
	for _, t := range trees[1:] {
		leaves, ts := tree.Flatten(t)
		if !s.Equal(ts) {
			return false
		}
		for i := range leaves {
			if !leafEqual(first[i], leaves[i]) {
				return false
			}
		}
	}
	return true
}

func leafEqual(a, b any) bool {
	ad, aok := a.(*tensor.Dense)
	bd, bok := b.(*tensor.Dense)
	if aok || bok {
		if !aok || !bok {
			return false
		}
		return tensor.Equal(ad, bd)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) {
		return false
	}
	if !t.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return dyn.Equal(a, b)
}
