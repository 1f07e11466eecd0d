package tracer

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// Flag marks how a value was transformed on its way to the traced
// expression.
type Flag uint8

const (
	// Reassign marks a value reaching a variable through a plain
	// assignment rather than its declaration.
	Reassign Flag = 1 << iota
	// Modification marks a value combined with others, as in `"a" + b`.
	Modification
	// Append marks a value added to an array with push or unshift.
	Append
	// Split marks a value obtained by splitting a string.
	Split
	// Override marks a step taken by a built-in override instead of
	// following the callee.
	Override
	// Call marks a value obtained through a call.
	Call
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{Reassign, "Reassign"},
	{Modification, "Modification"},
	{Append, "Append"},
	{Split, "Split"},
	{Override, "Override"},
	{Call, "Call"},
}

// Has reports whether every flag in g is set.
func (f Flag) Has(g Flag) bool {
	return f&g == g
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Signal is returned by OnNodeVisited to steer the search.
type Signal int

const (
	// Continue follows the node if it is a variable.
	Continue Signal = iota
	// StopFollowingVariable abandons the current branch. Queued nodes that
	// came from the same variable are dropped as well.
	StopFollowingVariable
	// Halt ends the whole trace.
	Halt
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case StopFollowingVariable:
		return "stop-following-variable"
	case Halt:
		return "halt"
	}
	return "unknown"
}

// Node is one step of a trace. Every node owns exactly one Connection.
type Node interface {
	// Connection returns the connection that led to the node.
	Connection() *Connection
	// Expr returns the AST node the trace node was produced from.
	Expr() ast.Node
	// Module returns the module Expr belongs to.
	Module() *module.Module
	String() string
	node()
}

// Terminal is a node that ends a trace.
type Terminal interface {
	Node
	terminal()
}

type base struct {
	conn *Connection
	expr ast.Node
	mod  *module.Module
}

func (b *base) Connection() *Connection { return b.conn }
func (b *base) Expr() ast.Node { return b.expr }
func (b *base) Module() *module.Module { return b.mod }
func (b *base) node() {}

// VariableNode is a variable whose origins are still to be found.
type VariableNode struct {
	base
	Variable *scope.Variable
	// Scope is the scope the variable was reached from.
	Scope *scope.Scope

	ctx Context
}

func (n *VariableNode) String() string {
	return fmt.Sprintf("Variable(%s)", n.Variable.Name)
}

// ConstantNode is a value written literally in the source. MemberKey is set
// for the property names of member accesses.
type ConstantNode struct {
	base
	Value     string
	MemberKey bool
}

func (n *ConstantNode) String() string {
	if n.MemberKey {
		return fmt.Sprintf("MemberKey(%q)", n.Value)
	}
	return fmt.Sprintf("Constant(%q)", n.Value)
}

func (n *ConstantNode) terminal() {}

// ImportNode is a value imported from a package or a module that could not
// be entered.
type ImportNode struct {
	base
	Source   string
	Imported string
}

func (n *ImportNode) String() string {
	return fmt.Sprintf("Import(%s, %s)", n.Source, n.Imported)
}

func (n *ImportNode) terminal() {}

// GlobalNode is an implicit global such as `window` or `process`.
type GlobalNode struct {
	base
	Name string
}

func (n *GlobalNode) String() string {
	return fmt.Sprintf("Global(%s)", n.Name)
}

func (n *GlobalNode) terminal() {}

// ASTNode is an expression the tracer does not look through, such as an
// object literal traced as a whole or a function that is not called.
type ASTNode struct {
	base
}

func (n *ASTNode) String() string {
	return fmt.Sprintf("Node(%s)", ast.Type(n.expr))
}

func (n *ASTNode) terminal() {}

// UnresolvedNode ends a branch that could not be followed.
type UnresolvedNode struct {
	base
	Reason string
}

func (n *UnresolvedNode) String() string {
	return fmt.Sprintf("Unresolved(%s)", n.Reason)
}

func (n *UnresolvedNode) terminal() {}

// Reasons carried by UnresolvedNode.
const (
	ReasonCycle           = "Encountered cycle"
	ReasonNoDefinition    = "no definition found"
	ReasonImport          = "unable to follow import"
	ReasonImportNoFile    = "unable to follow import: module has no file path"
	ReasonCallDepth       = "call depth limit reached"
	ReasonNesting         = "nested trace limit reached"
	ReasonExpressionDepth = "expression nesting too deep"
	ReasonUnknownProperty = "property not found"
	ReasonUnhandled       = "unhandled node kind"
)

// IsTerminal reports whether n ends a trace.
func IsTerminal(n Node) bool {
	_, ok := n.(Terminal)
	return ok
}

var (
	_ Terminal = (*ConstantNode)(nil)
	_ Terminal = (*ImportNode)(nil)
	_ Terminal = (*GlobalNode)(nil)
	_ Terminal = (*ASTNode)(nil)
	_ Terminal = (*UnresolvedNode)(nil)
	_ Node     = (*VariableNode)(nil)
)
