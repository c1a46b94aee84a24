package tree_test

import (
	"fmt"
	"testing"

	"github.com/leafkit/leafkit/tree"
)

// benchTree builds a model-shaped tree with n layers plus a small
// config map.
func benchTree(n int) any {
	layers := make([]any, n)
	for i := range layers {
		layers[i] = &linear{
			Weight: &dense{data: []float64{float64(i)}},
			Bias:   &dense{data: []float64{float64(-i)}},
		}
	}
	return map[string]any{
		"net":  &mlp{Layers: layers, Name: "bench"},
		"step": 0,
		"rate": 0.05,
	}
}

func BenchmarkFlatten(b *testing.B) {
	for _, n := range []int{2, 16, 128} {
		b.Run(fmt.Sprintf("layers-%d", n), func(b *testing.B) {
			v := benchTree(n)
			b.ResetTimer()
			for range b.N {
				tree.Flatten(v)
			}
		})
	}
}

func BenchmarkUnflatten(b *testing.B) {
	for _, n := range []int{2, 16, 128} {
		b.Run(fmt.Sprintf("layers-%d", n), func(b *testing.B) {
			leaves, s := tree.Flatten(benchTree(n))
			b.ResetTimer()
			for range b.N {
				if _, err := tree.Unflatten(s, leaves); err != nil {
					b.Fatalf("unflatten failed: %v", err)
				}
			}
		})
	}
}
