package tensor_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/leafkit/leafkit/tensor"
)

// BenchmarkMatMul benchmarks dense matrix products across sizes.
func BenchmarkMatMul(b *testing.B) {
	for _, n := range []int{8, 32, 128} {
		b.Run(fmt.Sprintf("%dx%d", n, n), func(b *testing.B) {
			rng := rand.New(rand.NewPCG(1, 1))
			x := tensor.Uniform(rng, -1, 1, n, n)
			y := tensor.Uniform(rng, -1, 1, n, n)
			b.ResetTimer()
			for range b.N {
				tensor.MatMul(x, y)
			}
		})
	}
}

// BenchmarkElementwise benchmarks the cheap kernels on a fixed size.
func BenchmarkElementwise(b *testing.B) {
	rng := rand.New(rand.NewPCG(2, 2))
	x := tensor.Uniform(rng, -1, 1, 256, 256)
	y := tensor.Uniform(rng, -1, 1, 256, 256)

	b.Run("Add", func(b *testing.B) {
		for range b.N {
			tensor.Add(x, y)
		}
	})
	b.Run("Sigmoid", func(b *testing.B) {
		for range b.N {
			tensor.Sigmoid(x)
		}
	})
}
