// Package traces rebuilds discrete root-to-terminal traces from the flat,
// depth-first node stream of a tracer run, and renders them.
package traces

import (
	"context"
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

// Trace is one path from a root node to the last node reached on it,
// normally a terminal.
type Trace []tracer.Node

// Last returns the final node of the trace.
func (t Trace) Last() tracer.Node {
	if len(t) == 0 {
		return nil
	}
	return t[len(t)-1]
}

// Terminal returns the terminal that ends the trace. It reports false when
// the trace was cut short by a stop signal or a halt.
func (t Trace) Terminal() (tracer.Terminal, bool) {
	term, ok := t.Last().(tracer.Terminal)
	return term, ok
}

// Flags returns the union of the flags of every step.
func (t Trace) Flags() tracer.Flag {
	var f tracer.Flag
	for _, n := range t {
		f |= n.Connection().Flags
	}
	return f
}

// Constant reports whether the trace ends in a literal value. Member-key
// constants do not count: they name a property, not the traced value.
func (t Trace) Constant() (string, bool) {
	c, ok := t.Last().(*tracer.ConstantNode)
	if !ok || c.MemberKey {
		return "", false
	}
	return c.Value, true
}

// Passes reports whether any step of the trace was reached through a call of
// one of the given dotted callee names, such as "DOMPurify.sanitize".
func (t Trace) Passes(callees ...string) bool {
	for _, n := range t {
		for _, p := range n.Connection().Path {
			call, ok := p.(*ast.CallExpression)
			if !ok {
				continue
			}
			name := ast.CalleeName(call.Callee)
			for _, c := range callees {
				if name == c || strings.HasSuffix(name, "."+c) {
					return true
				}
			}
		}
	}
	return false
}

func (t Trace) String() string {
	parts := make([]string, len(t))
	for i, n := range t {
		parts[i] = n.String()
	}
	return strings.Join(parts, " -> ")
}

// Collect runs one trace and returns every reconstructed trace.
func Collect(ctx context.Context, tr *tracer.Tracer, mod *module.Module, start ast.Node) ([]Trace, error) {
	var out []Trace
	rc := NewReconstructor(func(t Trace) bool {
		out = append(out, t)
		return true
	})
	err := tr.Trace(ctx, mod, start, rc.Callbacks(nil))
	return out, err
}
