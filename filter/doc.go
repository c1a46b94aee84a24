// Package filter applies transformations to selected leaves of a tree.
//
// # Overview
//
// Models are immutable trees whose leaves mix tensors with arbitrary
// Go values. This package decides, leaf by leaf, which values take
// part in compilation and differentiation and which ride along as
// opaque constants, and it supplies the partition, edit and update
// primitives that make that selection workable:
//
//   - Predicates: IsTensor, IsTensorLike, IsInexactTensor,
//     IsInexactTensorLike classify single leaves.
//   - Split/Merge: partition a tree's leaves into selected and
//     unselected sequences and reassemble them losslessly.
//   - JIT: compile a function with unselected leaves frozen as
//     equality-hashed constants.
//   - Grad/ValueAndGrad: differentiate with respect to selected
//     leaves of eligible arguments only.
//   - TreeAt: rebuild a tree with replacements at positions named by
//     a selector run against a marker tree.
//   - ApplyUpdates/TreeEqual: gradient application that honours
//     Absent markers, and structural plus value equality.
//
// # Filters
//
// A Filter carries exactly one of two variants. Pred applies a
// predicate uniformly to every leaf. Mask pairs the tree with a
// boolean tree of identical structure and reads the verdict
// position-wise. Supplying both or neither is a configuration error,
// reported before any traversal.
//
// # Selection rules
//
// JIT and Grad combine the filter with their per-argument options in
// opposite directions. JIT treats a leaf as a traced dynamic value
// only when the filter selects it and its argument is not listed in
// Options.Static; an explicit static designation always wins. Grad
// differentiates a leaf only when the filter selects it and its
// argument is listed in Options.Args; differentiation requires
// opt-in at both levels.
//
// Gradient trees mirror the argument's structure with generic
// containers, so Absent markers sit alongside tensors where a typed
// field could not hold them. ApplyUpdates accepts such mirrors
// against the typed model.
//
// All operations are pure: inputs are never mutated and results
// share unmodified leaves with their inputs.
package filter
