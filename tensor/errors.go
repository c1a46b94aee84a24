package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// ShapeError reports operands whose shapes a kernel cannot accept. It
// is delivered by panic and carries a stack from the kernel call site.
type ShapeError struct {
	Op     string
	Detail string
}

func (e *ShapeError) Error() string {
	return "tensor: " + e.Op + ": " + e.Detail
}

// DTypeError reports operands whose element types a kernel cannot
// accept. It is delivered by panic and carries a stack from the kernel
// call site.
type DTypeError struct {
	Op     string
	Detail string
}

func (e *DTypeError) Error() string {
	return "tensor: " + e.Op + ": " + e.Detail
}

func shapePanic(op, format string, args ...any) {
	panic(errors.WithStack(&ShapeError{Op: op, Detail: fmt.Sprintf(format, args...)}))
}

func dtypePanic(op, format string, args ...any) {
	panic(errors.WithStack(&DTypeError{Op: op, Detail: fmt.Sprintf(format, args...)}))
}
