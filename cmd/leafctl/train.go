package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/checkpoint"
	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/nn"
	"github.com/leafkit/leafkit/summary"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

var (
	trainSteps   int
	trainSeed    uint64
	trainHidden  int
	trainRate    float64
	trainBatch   int
	trainDataset int
	trainOut     string
)

func init() {
	cmd := newTrainCmd()
	cmd.Flags().IntVar(&trainSteps, "steps", 200, "Optimisation steps")
	cmd.Flags().Uint64Var(&trainSeed, "seed", 5678, "RNG seed")
	cmd.Flags().IntVar(&trainHidden, "hidden", 16, "Hidden state size")
	cmd.Flags().Float64Var(&trainRate, "rate", 0.05, "Learning rate")
	cmd.Flags().IntVar(&trainBatch, "batch", 32, "Batch size")
	cmd.Flags().IntVar(&trainDataset, "dataset", 256, "Dataset size")
	cmd.Flags().StringVar(&trainOut, "out", "", "Write the trained model to this file")
	rootCmd.AddCommand(cmd)
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train-demo",
		Short: "Train a small GRU classifier on toy spirals",
		Long: `The train-demo command trains a GRU cell with a linear head to tell
clockwise from anticlockwise spirals, logging the binary cross-entropy as it
goes. Each optimisation step runs a compiled gradient trace; the first step
compiles it and later steps replay it. Pass --out to keep the trained model
as a checkpoint for the inspect and summary commands.

Example:
  leafctl train-demo
  leafctl train-demo --steps 500 --hidden 32 --out spiral.lfck`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain()
		},
	}
	return cmd
}

// spiralNet classifies a short 2-d sequence as clockwise or
// anticlockwise.
type spiralNet struct {
	tree.Module

	Cell *nn.GRUCell
	Head *nn.Linear

	Hidden int
}

func newSpiralNet(hidden int, rng *rand.Rand) (*spiralNet, error) {
	cell, err := nn.NewGRUCell(2, hidden, true, rng)
	if err != nil {
		return nil, err
	}
	head, err := nn.NewLinear(hidden, 1, true, rng)
	if err != nil {
		return nil, err
	}
	return tree.Finish(&spiralNet{Cell: cell, Head: head, Hidden: hidden})
}

// forward folds the sequence through the cell and squashes the final
// hidden state to a probability.
func (m *spiralNet) forward(seq []*tensor.Dense) *tensor.Dense {
	h := tensor.Zeros(tensor.Float64, m.Hidden)
	for _, x := range seq {
		h = m.Cell.Apply(x, h)
	}
	return autodiff.Sigmoid(m.Head.Apply(h))
}

// spiralLoss is the mean binary cross-entropy over the batch.
func spiralLoss(args ...any) any {
	m := args[0].(*spiralNet)
	xs := args[1].([]any)
	ys := args[2].([]*tensor.Dense)

	var total *tensor.Dense
	for i, s := range xs {
		p := m.forward(s.([]*tensor.Dense))
		y := ys[i]
		hit := autodiff.Mul(y, autodiff.Log(p))
		miss := autodiff.Mul(
			autodiff.AddScalar(autodiff.Neg(y), 1),
			autodiff.Log(autodiff.AddScalar(autodiff.Neg(p), 1)),
		)
		l := autodiff.Add(hit, miss)
		if total == nil {
			total = l
		} else {
			total = autodiff.Add(total, l)
		}
	}
	return autodiff.Scale(autodiff.Sum(total), -1/float64(len(xs)))
}

// spiralData builds sequences tracing decaying spirals. The first half
// of the samples is mirrored and labelled 0, the rest labelled 1.
func spiralData(n, seqLen int, rng *rand.Rand) (xs []any, ys []*tensor.Dense) {
	for i := 0; i < n; i++ {
		offset := rng.Float64() * 2 * math.Pi
		sign, label := 1.0, 1.0
		if i < n/2 {
			sign, label = -1, 0
		}
		seq := make([]*tensor.Dense, seqLen)
		for k := range seq {
			t := 2 * math.Pi * float64(k) / float64(seqLen-1)
			seq[k] = tensor.FromFloat64s([]float64{
				sign * math.Sin(t+offset) / (1 + t),
				math.Cos(t+offset) / (1 + t),
			}, 2)
		}
		xs = append(xs, seq)
		ys = append(ys, tensor.FromFloat64s([]float64{label}, 1))
	}
	return xs, ys
}

func runTrain() error {
	rng := rand.New(rand.NewPCG(trainSeed, trainSeed))

	printVerbose("Building dataset: %d samples\n", trainDataset)
	xs, ys := spiralData(trainDataset, 16, rng)

	model, err := newSpiralNet(trainHidden, rng)
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}

	opts := filter.Options{Filter: filter.Where(filter.IsInexactTensor)}
	step := filter.JIT(filter.ValueAndGrad(spiralLoss, opts).Tree, opts)

	batch := trainBatch
	if batch > len(xs) {
		batch = len(xs)
	}
	var loss float64
	for i := 0; i < trainSteps; i++ {
		bx := make([]any, batch)
		by := make([]*tensor.Dense, batch)
		for j, idx := range rng.Perm(len(xs))[:batch] {
			bx[j] = xs[idx]
			by[j] = ys[idx]
		}

		out, err := step(model, bx, by)
		if err != nil {
			return fmt.Errorf("step %d failed: %w", i, err)
		}
		pair := out.([]any)
		loss = pair[0].(*tensor.Dense).Item()
		grads := pair[1].([]any)

		updates, err := tree.Map(func(leaf any) any {
			if d, ok := leaf.(*tensor.Dense); ok && d != nil {
				return autodiff.Scale(d, -trainRate)
			}
			return leaf
		}, grads[0])
		if err != nil {
			return fmt.Errorf("step %d failed: %w", i, err)
		}
		next, err := filter.ApplyUpdates(model, updates)
		if err != nil {
			return fmt.Errorf("step %d failed: %w", i, err)
		}
		model = next.(*spiralNet)

		if i%20 == 0 || i == trainSteps-1 {
			printInfo("step %4d  loss %.4f\n", i, loss)
		}
	}

	if verbose && !quiet {
		fmt.Println()
		if err := summary.Render(os.Stdout, model, summary.DefaultOptions()); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
	}

	if trainOut != "" {
		if err := checkpoint.SaveFile(trainOut, model); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
		printInfo("saved %s\n", trainOut)
	}
	return nil
}
