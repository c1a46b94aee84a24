package filter

import (
	"fmt"

	"github.com/pkg/errors"
	"jsouthworth.net/go/try"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// GradFunc returns one gradient tree per call argument.
type GradFunc func(args ...any) ([]any, error)

// ValueAndGradFunc returns the function's output alongside one
// gradient tree per call argument.
type ValueAndGradFunc func(args ...any) (any, []any, error)

// Grad wraps fn, which must return a one-element tensor, so that each
// call computes gradients instead. A leaf is differentiated only when
// the filter selects it and its argument position appears in
// Options.Args; every other position of every gradient tree carries
// Absent. Selected-but-unused leaves get zero gradients.
//
// Gradient trees mirror each argument with generic containers, so
// Absent fits where a typed field could not hold it. A Mask filter
// must be a []any holding one boolean tree per Options.Args entry, in
// that order.
func Grad(fn func(args ...any) any, opts Options) GradFunc {
	vg := ValueAndGrad(fn, opts)
	return func(args ...any) ([]any, error) {
		_, grads, err := vg(args...)
		return grads, err
	}
}

// ValueAndGrad is Grad, returning the function's output as well.
func ValueAndGrad(fn func(args ...any) any, opts Options) ValueAndGradFunc {
	f := opts.Filter
	eligible := opts.Args
	if len(eligible) == 0 {
		eligible = []int{0}
	}

	return func(args ...any) (any, []any, error) {
		if err := f.validate(); err != nil {
			return nil, nil, err
		}
		argOrder := make(map[int]int, len(eligible))
		for k, p := range eligible {
			if p < 0 || p >= len(args) {
				return nil, nil, fmt.Errorf("filter: gradient position %d out of range for %d arguments", p, len(args))
			}
			argOrder[p] = k
		}
		masks, err := gradMasks(f, len(eligible))
		if err != nil {
			return nil, nil, err
		}

		type argPlan struct {
			leaves []any
			shadow *tree.Structure
			keep   []bool
		}
		plans := make([]argPlan, len(args))
		var wrt []*tensor.Dense
		for i, arg := range args {
			leaves, _ := tree.Flatten(arg)
			_, shadow := tree.Flatten(tree.Shadow(arg))
			plans[i] = argPlan{leaves: leaves, shadow: shadow}
			k, ok := argOrder[i]
			if !ok {
				continue
			}
			var mask any
			if masks != nil {
				mask = masks[k]
			}
			keep, err := f.classify(leaves, shadow, mask)
			if err != nil {
				return nil, nil, err
			}
			plans[i].keep = keep
			for j, leaf := range leaves {
				if !keep[j] {
					continue
				}
				d, ok := leaf.(*tensor.Dense)
				if !ok || d == nil {
					return nil, nil, fmt.Errorf("%w: %s is %T", ErrUntraceable, shadow.PathOf(j), leaf)
				}
				wrt = append(wrt, d)
			}
		}

		tape := autodiff.NewTape()
		autodiff.PushRecorder(tape)
		out, err := try.Apply(func() any { return fn(args...) })
		autodiff.PopRecorder()
		if err != nil {
			return nil, nil, err
		}
		scalar, ok := out.(*tensor.Dense)
		if !ok {
			return nil, nil, errors.WithMessagef(autodiff.ErrNonScalarOutput, "filter: function returned %T", out)
		}
		cotangents, err := tape.Backward(scalar, wrt)
		if err != nil {
			return nil, nil, err
		}

		grads := make([]any, len(args))
		next := 0
		for i := range args {
			plan := plans[i]
			gl := make([]any, len(plan.leaves))
			for j := range gl {
				gl[j] = Absent
			}
			if plan.keep != nil {
				for j, leaf := range plan.leaves {
					if !plan.keep[j] {
						continue
					}
					g := cotangents[next]
					next++
					if g == nil {
						g = tensor.ZerosLike(leaf.(*tensor.Dense))
					}
					gl[j] = g
				}
			}
			grads[i], err = tree.Unflatten(plan.shadow, gl)
			if err != nil {
				return nil, nil, err
			}
		}
		return out, grads, nil
	}
}

// Tree adapts the wrapper for enclosing transformations such as JIT:
// the output and the gradient trees come back as one two-element tree
// and errors surface as panics for the enclosing wrapper to capture.
func (f ValueAndGradFunc) Tree(args ...any) any {
	v, grads, err := f(args...)
	if err != nil {
		panic(err)
	}
	return []any{v, grads}
}

// Tree adapts the wrapper for enclosing transformations such as JIT.
func (f GradFunc) Tree(args ...any) any {
	grads, err := f(args...)
	if err != nil {
		panic(err)
	}
	return grads
}

// gradMasks unpacks a mask filter for differentiation: one boolean
// tree per eligible argument. Returns nil for predicate filters.
func gradMasks(f Filter, eligible int) ([]any, error) {
	if f.Mask == nil {
		return nil, nil
	}
	ms, ok := f.Mask.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: gradient mask must be []any with one tree per eligible argument, got %T",
			ErrFilterConfig, f.Mask)
	}
	if len(ms) != eligible {
		return nil, fmt.Errorf("%w: mask covers %d arguments, %d are eligible",
			ErrStructureMismatch, len(ms), eligible)
	}
	return ms, nil
}
