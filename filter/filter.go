package filter

import (
	"fmt"

	"github.com/leafkit/leafkit/tree"
)

// Filter selects leaves of a tree. Exactly one variant must be set.
type Filter struct {
	// Pred classifies every leaf uniformly.
	Pred func(leaf any) bool

	// Mask is a tree of booleans with the same structure as the
	// filtered tree, read position-wise. For JIT and Grad the mask is
	// a []any holding one such tree per covered argument.
	Mask any
}

// Where returns a predicate filter.
func Where(pred func(leaf any) bool) Filter {
	return Filter{Pred: pred}
}

// MaskOf returns a mask filter over the given boolean tree.
func MaskOf(mask any) Filter {
	return Filter{Mask: mask}
}

func (f Filter) validate() error {
	set := 0
	if f.Pred != nil {
		set++
	}
	if f.Mask != nil {
		set++
	}
	if set != 1 {
		return ErrFilterConfig
	}
	return nil
}

// classify returns the filter's verdict for each leaf, in leaf order.
// The mask variant is checked against the target's structure and must
// carry booleans at every leaf.
func (f Filter) classify(leaves []any, s *tree.Structure, mask any) ([]bool, error) {
	if f.Pred != nil {
		keep := make([]bool, len(leaves))
		for i, leaf := range leaves {
			keep[i] = f.Pred(leaf)
		}
		return keep, nil
	}
	maskLeaves, maskStruct := tree.Flatten(mask)
	if !s.Equal(maskStruct) {
		return nil, &StructureError{Want: s.String(), Got: maskStruct.String()}
	}
	keep := make([]bool, len(leaves))
	for i, ml := range maskLeaves {
		b, ok := ml.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: mask leaf %s is %T, want bool",
				ErrFilterConfig, maskStruct.PathOf(i), ml)
		}
		keep[i] = b
	}
	return keep, nil
}

type absent struct{}

func (absent) String() string { return "absent" }

// Absent marks a gradient position that was not differentiated. It is
// distinct from a zero gradient: ApplyUpdates passes the model leaf
// through unchanged where the update is Absent, while a zero update
// still exercises the addition.
var Absent = absent{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}
