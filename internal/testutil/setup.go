// Package testutil provides shared fixtures for tests.
package testutil

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/leafkit/leafkit/checkpoint"
	"github.com/leafkit/leafkit/nn"
	"github.com/leafkit/leafkit/tensor"
)

// NewRand returns a PRNG seeded for reproducible tests.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SetupMLP returns a small seeded MLP.
//
// Example:
//
//	m := testutil.SetupMLP(t)
//	y := m.Apply(x)
func SetupMLP(t *testing.T) *nn.MLP {
	t.Helper()
	m, err := nn.NewMLP(4, 8, 2, 1, nn.ActivationTanh, NewRand(11))
	if err != nil {
		t.Fatalf("Failed to build MLP: %v", err)
	}
	return m
}

// SetupGRU returns a small seeded GRU cell.
func SetupGRU(t *testing.T) *nn.GRUCell {
	t.Helper()
	c, err := nn.NewGRUCell(2, 4, true, NewRand(23))
	if err != nil {
		t.Fatalf("Failed to build GRU cell: %v", err)
	}
	return c
}

// SetupCheckpoint saves v as a checkpoint in a temporary directory and
// returns the file path.
//
// Example:
//
//	path := testutil.SetupCheckpoint(t, testutil.SetupMLP(t))
//	c, err := checkpoint.LoadFile(path)
func SetupCheckpoint(t *testing.T, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.lfck")
	if err := checkpoint.SaveFile(path, v); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}
	return path
}

// SampleTree returns a small tree mixing the container and leaf kinds.
func SampleTree() map[string]any {
	return map[string]any{
		"weights": []any{
			tensor.FromFloat64s([]float64{1, 2, 3, 4}, 2, 2),
			tensor.FromFloat64s([]float64{0.5, -0.5}, 2),
		},
		"bias":  (*tensor.Dense)(nil),
		"steps": 100,
		"name":  "sample",
	}
}
