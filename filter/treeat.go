package filter

import (
	"fmt"

	"jsouthworth.net/go/try"

	"github.com/leafkit/leafkit/tree"
)

// TreeAtOptions configure TreeAt. Exactly one of Replace and
// ReplaceFn must be set.
type TreeAtOptions struct {
	// Replace supplies one replacement per selected position, paired
	// in the order the selector returned them.
	Replace []any

	// ReplaceFn computes each replacement from the original leaf.
	ReplaceFn func(leaf any) any
}

// TreeAt returns a copy of v with replacements at the positions the
// selector names. The selector receives a marker tree shaped exactly
// like v and returns the marker it navigated to, or a []any of
// markers for several positions. Markers must come from the given
// tree; results that match no position or several are lookup errors.
// Unselected leaves pass through as the same values.
//
//	moved, err := filter.TreeAt(func(m any) any {
//		return m.(*Linear).Weight
//	}, model, filter.TreeAtOptions{Replace: []any{w2}})
func TreeAt(where func(marker any) any, v any, opts TreeAtOptions) (any, error) {
	if (opts.Replace != nil) == (opts.ReplaceFn != nil) {
		return nil, ErrReplaceConfig
	}

	leaves, s := tree.Flatten(v)
	markers := makeMarkers(leaves)
	markerTree, err := tree.Unflatten(s, markers)
	if err != nil {
		return nil, err
	}

	ret, err := try.Apply(where, markerTree)
	if err != nil {
		return nil, &LookupError{Err: ErrUnknownMarker, Detail: "selector panicked: " + err.Error()}
	}
	selected, ok := ret.([]any)
	if !ok {
		selected = []any{ret}
	}

	positions := make([]int, len(selected))
	for k, r := range selected {
		pos := -1
		for i, m := range markers {
			if !matchMarker(m, r) {
				continue
			}
			if pos >= 0 {
				return nil, &LookupError{
					Err:    ErrAmbiguousMarker,
					Detail: fmt.Sprintf("%s and %s", s.PathOf(pos), s.PathOf(i)),
				}
			}
			pos = i
		}
		if pos < 0 {
			return nil, &LookupError{Err: ErrUnknownMarker, Detail: fmt.Sprintf("%T value %v", r, r)}
		}
		positions[k] = pos
	}

	if opts.Replace != nil && len(opts.Replace) != len(positions) {
		return nil, fmt.Errorf("%w: %d replacements for %d selected",
			ErrReplaceCount, len(opts.Replace), len(positions))
	}

	out := make([]any, len(leaves))
	copy(out, leaves)
	for k, pos := range positions {
		if opts.Replace != nil {
			out[pos] = opts.Replace[k]
			continue
		}
		repl, err := try.Apply(opts.ReplaceFn, leaves[pos])
		if err != nil {
			return nil, fmt.Errorf("filter: replace callback: %w", err)
		}
		out[pos] = repl
	}
	return tree.Unflatten(s, out)
}
