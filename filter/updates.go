package filter

import (
	"fmt"

	"jsouthworth.net/go/try"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// ApplyUpdates returns model with updates added leaf-wise. An Absent
// update leaves the model leaf untouched, and a nil update is only
// valid against a nil model leaf. Tensor additions go through the op
// layer, so updates can themselves be traced. The result reuses the
// model's container types.
func ApplyUpdates(model, updates any) (any, error) {
	ml, ms := tree.Flatten(model)
	ul, us := tree.Flatten(updates)
	if !ms.Equal(us) {
		return nil, &StructureError{Want: ms.String(), Got: us.String()}
	}
	out := make([]any, len(ml))
	for i := range ml {
		leaf, err := addLeaves(ml[i], ul[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ms.PathOf(i), err)
		}
		out[i] = leaf
	}
	return tree.Unflatten(ms, out)
}

func addLeaves(m, u any) (any, error) {
	if IsAbsent(u) {
		return m, nil
	}
	if m == nil && u == nil {
		return nil, nil
	}
	if md, ok := m.(*tensor.Dense); ok {
		ud, ok := u.(*tensor.Dense)
		if !ok {
			return nil, fmt.Errorf("filter: cannot add %T update to tensor leaf", u)
		}
		sum, err := try.Apply(autodiff.Add, md, ud)
		if err != nil {
			return nil, err
		}
		return sum.(*tensor.Dense), nil
	}
	switch mv := m.(type) {
	case int:
		if uv, ok := u.(int); ok {
			return mv + uv, nil
		}
	case int32:
		if uv, ok := u.(int32); ok {
			return mv + uv, nil
		}
	case int64:
		if uv, ok := u.(int64); ok {
			return mv + uv, nil
		}
	case float32:
		if uv, ok := u.(float32); ok {
			return mv + uv, nil
		}
	case float64:
		if uv, ok := u.(float64); ok {
			return mv + uv, nil
		}
	case complex64:
		if uv, ok := u.(complex64); ok {
			return mv + uv, nil
		}
	case complex128:
		if uv, ok := u.(complex128); ok {
			return mv + uv, nil
		}
	}
	return nil, fmt.Errorf("filter: cannot add %T update to %T leaf", u, m)
}
