package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrFilterConfig indicates a Filter carrying both or neither of
	// its variants.
	ErrFilterConfig = errors.New("filter: exactly one of Pred and Mask must be set")

	// ErrReplaceConfig indicates TreeAt options carrying both or
	// neither of Replace and ReplaceFn.
	ErrReplaceConfig = errors.New("filter: exactly one of Replace and ReplaceFn must be set")

	// ErrReplaceCount indicates a Replace list whose length differs
	// from the number of selected positions.
	ErrReplaceCount = errors.New("filter: replacement count does not match selected positions")

	// ErrStructureMismatch indicates two trees whose container shapes
	// diverge.
	ErrStructureMismatch = errors.New("filter: tree structures do not match")

	// ErrUnknownMarker indicates a selector result that is not a leaf
	// marker of the tree it was given.
	ErrUnknownMarker = errors.New("filter: selector result is not a known leaf marker")

	// ErrAmbiguousMarker indicates a selector result matching more
	// than one leaf position.
	ErrAmbiguousMarker = errors.New("filter: selector result matches multiple leaf positions")

	// ErrUntraceable indicates a leaf selected for tracing or
	// differentiation whose value is not a native tensor.
	ErrUntraceable = errors.New("filter: selected leaf is not a native tensor")
)

// StructureError reports the two rendered structures of a mismatch.
type StructureError struct {
	// Want is the rendered structure of the reference tree.
	Want string
	// Got is the rendered structure of the tree that diverged.
	Got string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%v: want %s, got %s", ErrStructureMismatch, e.Want, e.Got)
}

func (e *StructureError) Unwrap() error { return ErrStructureMismatch }

// LookupError reports a selector failure with the offending result.
type LookupError struct {
	// Err is ErrUnknownMarker or ErrAmbiguousMarker.
	Err error
	// Detail describes the selector result.
	Detail string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *LookupError) Unwrap() error { return e.Err }
