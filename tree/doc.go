// Package tree flattens arbitrary Go values into leaf sequences and
// structure descriptors, and rebuilds them.
//
// # Containers and leaves
//
// Three kinds of value are containers; everything else is a leaf.
//
//   - Slices whose element type is an interface, a pointer, or a
//     module record. Elements are visited in index order.
//   - Maps with string keys. Entries are visited in sorted key order,
//     so traversal is deterministic.
//   - Module records: struct types embedding Module, used directly or
//     through a pointer. Exported fields are visited in declaration
//     order; unexported fields are not part of the tree.
//
// Numeric, bool, and string slices are leaves, as are non-string-keyed
// maps, plain structs, scalars, and nil. A nil module pointer is a
// leaf.
//
// # Structure
//
// Flatten returns the leaves together with a Structure describing the
// container skeleton. Unflatten is its exact inverse: feeding the same
// leaves back yields an equal tree, with leaf objects carried through
// untouched. Two Structures are Equal when their skeletons match:
// slices by length, maps by key set, records by Go type. Slice and map
// element types do not participate, so a generic tree built from
// []any/map[string]any containers can mirror a typed one.
//
// # Shadows
//
// Shadow copies a tree into generic containers, with module records
// replaced by *Rec values that remember the record type. A shadow
// flattens to an Equal structure while its slots accept leaves of any
// type, which is how same-shaped trees of booleans or markers are
// built over typed modules.
package tree
