package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLeafCount indicates Unflatten received a leaf slice whose
	// length does not match the structure.
	ErrLeafCount = errors.New("tree: leaf count does not match structure")

	// ErrBind indicates a leaf could not be stored in a typed
	// container slot during Unflatten.
	ErrBind = errors.New("tree: leaf not assignable to container slot")

	// ErrNilStructure indicates Unflatten was called without a
	// structure.
	ErrNilStructure = errors.New("tree: nil structure")

	// ErrNotModule indicates Finish was applied to a value that is not
	// a module record.
	ErrNotModule = errors.New("tree: value is not a module record")

	// ErrUnexportedField indicates a module type declares unexported
	// fields, which cannot be carried through flatten and rebuild.
	ErrUnexportedField = errors.New("tree: module type has unexported data fields")
)

// IncompleteError reports module fields left unset at construction.
type IncompleteError struct {
	Type   string
	Fields []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("tree: %s fields not initialised: %s", e.Type, strings.Join(e.Fields, ", "))
}
