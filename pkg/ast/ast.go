// Package ast defines the closed set of JavaScript and TypeScript syntax nodes
// the tracer understands. The shapes follow ESTree so that handlers can be
// written against familiar field names; every node knows its parent and its
// source range.
package ast

import "reflect"

// Position is a 1-based line and column in a source file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is the source span covered by a node.
type Range struct {
	Start     Position `json:"start"`
	End       Position `json:"end"`
	StartByte uint32   `json:"-"`
	EndByte   uint32   `json:"-"`
}

// Contains reports whether p lies within r (end exclusive).
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Column < r.Start.Column {
		return false
	}
	if p.Line == r.End.Line && p.Column >= r.End.Column {
		return false
	}
	return true
}

// Node is implemented by every syntax node in this package. The set is closed:
// code outside the package switches over the concrete types.
type Node interface {
	Pos() Range
	Parent() Node
	base() *Base
}

// Base carries the fields shared by all nodes.
type Base struct {
	Loc    Range
	parent Node
}

func (b *Base) Pos() Range { return b.Loc }
func (b *Base) Parent() Node { return b.parent }
func (b *Base) base() *Base { return b }

// Type returns the ESTree type name of n, or the grammar node type for Unknown.
func Type(n Node) string {
	if n == nil {
		return "<nil>"
	}
	if u, ok := n.(*Unknown); ok {
		return u.Kind
	}
	return reflect.TypeOf(n).Elem().Name()
}

// LiteralKind distinguishes the primitive literal forms.
type LiteralKind int

const (
	StringLiteral LiteralKind = iota
	NumberLiteral
	BooleanLiteral
	NullLiteral
	RegExpLiteral
	BigIntLiteral
)

// Program is the root of a parsed file.
type Program struct {
	Base
	Body []Node
}

// Unknown stands in for syntax the tracer has no handler for. Its children are
// still linked so scope analysis can see identifiers inside it.
type Unknown struct {
	Base
	Kind     string
	Children []Node
}

// Expressions

type Identifier struct {
	Base
	Name string
}

type Literal struct {
	Base
	Kind  LiteralKind
	Value string
	Raw   string
}

type TemplateLiteral struct {
	Base
	Quasis      []*TemplateElement
	Expressions []Node
}

type TemplateElement struct {
	Base
	Value string
}

type TaggedTemplateExpression struct {
	Base
	Tag   Node
	Quasi *TemplateLiteral
}

type MemberExpression struct {
	Base
	Object   Node
	Property Node
	Computed bool
	Optional bool
}

type CallExpression struct {
	Base
	Callee    Node
	Arguments []Node
	Optional  bool
}

type NewExpression struct {
	Base
	Callee    Node
	Arguments []Node
}

// ImportExpression is a dynamic import("...") call.
type ImportExpression struct {
	Base
	Source Node
}

// ArrayExpression elements are nil for holes.
type ArrayExpression struct {
	Base
	Elements []Node
}

// ObjectExpression properties are *Property or *SpreadElement.
type ObjectExpression struct {
	Base
	Properties []Node
}

// Property is used both in object literals and in object patterns.
type Property struct {
	Base
	Key       Node
	Value     Node
	Computed  bool
	Shorthand bool
	Method    bool
	Kind      string
}

type SpreadElement struct {
	Base
	Argument Node
}

type AssignmentExpression struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

type AwaitExpression struct {
	Base
	Argument Node
}

type YieldExpression struct {
	Base
	Argument Node
	Delegate bool
}

// TSAsExpression covers `x as T`, `x satisfies T` and `<T>x`.
type TSAsExpression struct {
	Base
	Expression Node
}

type TSNonNullExpression struct {
	Base
	Expression Node
}

type ChainExpression struct {
	Base
	Expression Node
}

type SequenceExpression struct {
	Base
	Expressions []Node
}

type BinaryExpression struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

type LogicalExpression struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

type ConditionalExpression struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}

type UnaryExpression struct {
	Base
	Operator string
	Argument Node
}

type UpdateExpression struct {
	Base
	Operator string
	Argument Node
	Prefix   bool
}

type ThisExpression struct{ Base }

type Super struct{ Base }

// Functions and classes

// ArrowFunctionExpression.Body is a *BlockStatement or, when Expression is
// set, a bare expression.
type ArrowFunctionExpression struct {
	Base
	Params     []Node
	Body       Node
	Expression bool
	Async      bool
}

type FunctionExpression struct {
	Base
	ID        *Identifier
	Params    []Node
	Body      *BlockStatement
	Async     bool
	Generator bool
}

type FunctionDeclaration struct {
	Base
	ID        *Identifier
	Params    []Node
	Body      *BlockStatement
	Async     bool
	Generator bool
}

type ClassDeclaration struct {
	Base
	ID         *Identifier
	SuperClass Node
	Body       *ClassBody
}

type ClassExpression struct {
	Base
	ID         *Identifier
	SuperClass Node
	Body       *ClassBody
}

// ClassBody members are *MethodDefinition or *PropertyDefinition.
type ClassBody struct {
	Base
	Body []Node
}

// MethodDefinition.Kind is one of constructor, method, get, set.
type MethodDefinition struct {
	Base
	Key      Node
	Value    *FunctionExpression
	Kind     string
	Computed bool
	Static   bool
}

type PropertyDefinition struct {
	Base
	Key      Node
	Value    Node
	Computed bool
	Static   bool
}

// Declarations and patterns

type VariableDeclaration struct {
	Base
	Kind         string
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Base
	ID   Node
	Init Node
}

// ObjectPattern properties are *Property (with a pattern Value) or *RestElement.
type ObjectPattern struct {
	Base
	Properties []Node
}

type ArrayPattern struct {
	Base
	Elements []Node
}

type AssignmentPattern struct {
	Base
	Left  Node
	Right Node
}

type RestElement struct {
	Base
	Argument Node
}

// Statements

type BlockStatement struct {
	Base
	Body []Node
}

type ExpressionStatement struct {
	Base
	Expression Node
}

type ReturnStatement struct {
	Base
	Argument Node
}

type IfStatement struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}

type ForStatement struct {
	Base
	Init   Node
	Test   Node
	Update Node
	Body   Node
}

type ForInStatement struct {
	Base
	Left  Node
	Right Node
	Body  Node
}

type ForOfStatement struct {
	Base
	Left  Node
	Right Node
	Body  Node
	Await bool
}

type WhileStatement struct {
	Base
	Test Node
	Body Node
}

type DoWhileStatement struct {
	Base
	Body Node
	Test Node
}

type SwitchStatement struct {
	Base
	Discriminant Node
	Cases        []*SwitchCase
}

type SwitchCase struct {
	Base
	Test       Node
	Consequent []Node
}

type TryStatement struct {
	Base
	Block     *BlockStatement
	Handler   *CatchClause
	Finalizer *BlockStatement
}

type CatchClause struct {
	Base
	Param Node
	Body  *BlockStatement
}

type LabeledStatement struct {
	Base
	Label *Identifier
	Body  Node
}

type ThrowStatement struct {
	Base
	Argument Node
}

type BreakStatement struct {
	Base
	Label *Identifier
}

type ContinueStatement struct {
	Base
	Label *Identifier
}

type EmptyStatement struct{ Base }

// Modules

type ImportDeclaration struct {
	Base
	Specifiers []Node
	Source     *Literal
}

// ImportSpecifier.Imported is an *Identifier or a string *Literal.
type ImportSpecifier struct {
	Base
	Imported Node
	Local    *Identifier
}

type ImportDefaultSpecifier struct {
	Base
	Local *Identifier
}

type ImportNamespaceSpecifier struct {
	Base
	Local *Identifier
}

type ExportNamedDeclaration struct {
	Base
	Declaration Node
	Specifiers  []*ExportSpecifier
	Source      *Literal
}

type ExportSpecifier struct {
	Base
	Local    Node
	Exported Node
}

type ExportDefaultDeclaration struct {
	Base
	Declaration Node
}

// ExportAllDeclaration.Exported is set for `export * as ns from "..."`.
type ExportAllDeclaration struct {
	Base
	Exported Node
	Source   *Literal
}

// JSX

type JSXElement struct {
	Base
	Name       string
	Attributes []Node
	Children   []Node
}

// JSXAttribute.Value is nil for boolean attributes.
type JSXAttribute struct {
	Base
	Name  string
	Value Node
}
