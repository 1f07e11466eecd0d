package tracer

import (
	"errors"
	"fmt"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

// ErrInvariant is wrapped by errors returned when the tracer reaches a state
// that should be impossible.
var ErrInvariant = errors.New("tracer invariant violated")

// InvariantError describes an internal invariant violation.
type InvariantError struct {
	Msg  string
	Node ast.Node
}

func (e *InvariantError) Error() string {
	if e.Node != nil {
		pos := e.Node.Pos().Start
		return fmt.Sprintf("%s: %s at %d:%d (%s)", ErrInvariant, e.Msg, pos.Line, pos.Column, ast.Type(e.Node))
	}
	return fmt.Sprintf("%s: %s", ErrInvariant, e.Msg)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// fail aborts the current invocation. Trace recovers the panic and returns
// it as an error.
func fail(format string, args ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}

func failAt(n ast.Node, format string, args ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...), Node: n})
}
