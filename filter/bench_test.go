package filter_test

import (
	"math/rand/v2"
	"testing"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/tensor"
)

func benchModel(rng *rand.Rand, n int) *linear {
	return &linear{
		Weight: tensor.Uniform(rng, -1, 1, n, n),
		Bias:   tensor.Uniform(rng, -1, 1, n),
	}
}

func benchLoss(args ...any) any {
	m := args[0].(*linear)
	x := args[1].(*tensor.Dense)
	h := autodiff.Add(autodiff.MatVec(m.Weight, x), m.Bias)
	return autodiff.Sum(autodiff.Sigmoid(h))
}

// BenchmarkSplitMerge measures a partition round-trip over a
// model-shaped tree.
func BenchmarkSplitMerge(b *testing.B) {
	rng := rand.New(rand.NewPCG(4, 4))
	layers := make([]any, 16)
	for i := range layers {
		layers[i] = benchModel(rng, 8)
	}
	model := &mlp{Layers: layers, Name: "bench"}
	where := filter.Where(filter.IsInexactTensor)

	b.ResetTimer()
	for range b.N {
		p, err := filter.Split(model, where)
		if err != nil {
			b.Fatalf("split failed: %v", err)
		}
		if _, err := p.Merge(); err != nil {
			b.Fatalf("merge failed: %v", err)
		}
	}
}

// BenchmarkJITReplay measures replaying a compiled trace. The first
// call compiles outside the timed loop.
func BenchmarkJITReplay(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	m := benchModel(rng, 64)
	x := tensor.Uniform(rng, -1, 1, 64)

	opts := filter.Options{Filter: filter.Where(filter.IsInexactTensor)}
	fn := filter.JIT(benchLoss, opts)
	if _, err := fn(m, x); err != nil {
		b.Fatalf("compile failed: %v", err)
	}

	b.ResetTimer()
	for range b.N {
		if _, err := fn(m, x); err != nil {
			b.Fatalf("replay failed: %v", err)
		}
	}
}

// BenchmarkGradDirect measures the same loss differentiated without a
// compiled trace, for comparison against BenchmarkJITReplay composed
// with gradients.
func BenchmarkGradDirect(b *testing.B) {
	rng := rand.New(rand.NewPCG(2, 2))
	m := benchModel(rng, 64)
	x := tensor.Uniform(rng, -1, 1, 64)

	opts := filter.Options{Filter: filter.Where(filter.IsInexactTensor)}
	g := filter.Grad(benchLoss, opts)

	b.ResetTimer()
	for range b.N {
		if _, err := g(m, x); err != nil {
			b.Fatalf("grad failed: %v", err)
		}
	}
}

// BenchmarkJITGradReplay measures a full compiled gradient step.
func BenchmarkJITGradReplay(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 3))
	m := benchModel(rng, 64)
	x := tensor.Uniform(rng, -1, 1, 64)

	opts := filter.Options{Filter: filter.Where(filter.IsInexactTensor)}
	fn := filter.JIT(filter.ValueAndGrad(benchLoss, opts).Tree, opts)
	if _, err := fn(m, x); err != nil {
		b.Fatalf("compile failed: %v", err)
	}

	b.ResetTimer()
	for range b.N {
		if _, err := fn(m, x); err != nil {
			b.Fatalf("replay failed: %v", err)
		}
	}
}
