package tree

// Map applies fn to every leaf of v and rebuilds the tree with its
// original container types. fn must return values assignable to the
// slots they came from; when leaf types change, Shadow the tree first.
func Map(fn func(any) any, v any) (any, error) {
	leaves, s := Flatten(v)
	out := make([]any, len(leaves))
	for i, l := range leaves {
		out[i] = fn(l)
	}
	return Unflatten(s, out)
}
