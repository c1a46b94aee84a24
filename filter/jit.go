package filter

import (
	"fmt"

	"jsouthworth.net/go/try"

	"github.com/leafkit/leafkit/jit"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Options configure the transformation wrappers.
type Options struct {
	// Filter classifies leaves. JIT traces selected leaves and
	// freezes the rest as compile-time constants; Grad differentiates
	// selected leaves of eligible arguments.
	Filter Filter

	// Static lists argument positions JIT treats entirely as
	// compile-time constants, overriding the filter for every leaf of
	// that argument. Ignored by Grad.
	Static []int

	// Args lists argument positions eligible for differentiation, in
	// the order gradient mask entries pair with them. Empty means
	// position 0. Ignored by JIT.
	Args []int

	// Cache overrides the wrapper's private compile cache. Callers
	// that share or inspect compiled traces supply their own.
	Cache *jit.Cache
}

// Func is a compiled wrapper returned by JIT.
type Func func(args ...any) (any, error)

// JIT wraps fn so that each call runs a compiled trace. Leaves the
// filter rejects, and every leaf of an argument listed in
// Options.Static, become constants hashed into the compile key:
// repeat calls with equal constants and equal dynamic signatures
// reuse the trace, any other change compiles a fresh one. Selected
// leaves must be native tensors at call time.
//
// A Mask filter must be a []any holding one boolean tree per
// non-static argument, in position order.
func JIT(fn func(args ...any) any, opts Options) Func {
	cache := opts.Cache
	if cache == nil {
		cache = jit.NewCache()
	}
	f := opts.Filter
	static := make(map[int]bool, len(opts.Static))
	for _, p := range opts.Static {
		static[p] = true
	}

	return func(args ...any) (any, error) {
		if err := f.validate(); err != nil {
			return nil, err
		}
		for p := range static {
			if p < 0 || p >= len(args) {
				return nil, fmt.Errorf("filter: static position %d out of range for %d arguments", p, len(args))
			}
		}
		masks, err := callMasks(f, len(args), static)
		if err != nil {
			return nil, err
		}

		fp := jit.NewFingerprint()
		fp.Note(fmt.Sprintf("args:%d", len(args)))
		var dynamic []*tensor.Dense
		maskIdx := 0
		for i, arg := range args {
			leaves, s := tree.Flatten(arg)
			fp.Structure(s)
			if static[i] {
				for j, leaf := range leaves {
					if err := fp.Static(s.PathOf(j), leaf); err != nil {
						return nil, err
					}
				}
				continue
			}
			var mask any
			if masks != nil {
				mask = masks[maskIdx]
			}
			maskIdx++
			keep, err := f.classify(leaves, s, mask)
			if err != nil {
				return nil, err
			}
			for j, leaf := range leaves {
				if !keep[j] {
					if err := fp.Static(s.PathOf(j), leaf); err != nil {
						return nil, err
					}
					continue
				}
				d, ok := leaf.(*tensor.Dense)
				if !ok || d == nil {
					return nil, fmt.Errorf("%w: %s is %T", ErrUntraceable, s.PathOf(j), leaf)
				}
				fp.Dynamic(d)
				dynamic = append(dynamic, d)
			}
		}

		var traced any
		var ran bool
		p, err := cache.GetOrCompile(fp.Key(), func() (*jit.Program, error) {
			var prog *jit.Program
			_, terr := try.Apply(func() any {
				pp, out, err := jit.Trace(dynamic, func() any { return fn(args...) })
				if err != nil {
					panic(err)
				}
				prog, traced, ran = pp, out, true
				return nil
			})
			if terr != nil {
				return nil, terr
			}
			return prog, nil
		})
		if err != nil {
			return nil, err
		}
		if ran {
			return traced, nil
		}
		out, err := try.Apply(func() any {
			res, rerr := p.Run(dynamic)
			if rerr != nil {
				panic(rerr)
			}
			return res
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// callMasks unpacks a mask filter for a call: one boolean tree per
// non-static argument, in position order. Returns nil for predicate
// filters.
func callMasks(f Filter, nargs int, static map[int]bool) ([]any, error) {
	if f.Mask == nil {
		return nil, nil
	}
	ms, ok := f.Mask.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: call mask must be []any with one tree per argument, got %T",
			ErrFilterConfig, f.Mask)
	}
	covered := nargs - len(static)
	if len(ms) != covered {
		return nil, fmt.Errorf("%w: mask covers %d arguments, call has %d non-static arguments",
			ErrStructureMismatch, len(ms), covered)
	}
	return ms, nil
}
