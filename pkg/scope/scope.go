// Package scope resolves identifiers in a parsed program to variables. It
// records, for every variable, how it was defined and every place it is read
// or written, which is what the tracer walks backwards over.
package scope

import "github.com/l3aro/go-taint-trace/pkg/ast"

// Kind identifies the construct that introduced a scope.
type Kind int

const (
	GlobalScope Kind = iota
	ModuleScope
	FunctionScope
	BlockScope
	ClassScope
	CatchScope
	ForScope
)

func (k Kind) String() string {
	switch k {
	case GlobalScope:
		return "global"
	case ModuleScope:
		return "module"
	case FunctionScope:
		return "function"
	case BlockScope:
		return "block"
	case ClassScope:
		return "class"
	case CatchScope:
		return "catch"
	case ForScope:
		return "for"
	}
	return "unknown"
}

// Scope is a lexical container of variables.
type Scope struct {
	Kind      Kind
	Block     ast.Node
	Upper     *Scope
	Children  []*Scope
	Variables []*Variable

	set map[string]*Variable
}

func newScope(kind Kind, block ast.Node, upper *Scope) *Scope {
	s := &Scope{Kind: kind, Block: block, Upper: upper, set: make(map[string]*Variable)}
	if upper != nil {
		upper.Children = append(upper.Children, s)
	}
	return s
}

// Own returns the variable declared directly in s.
func (s *Scope) Own(name string) *Variable {
	return s.set[name]
}

// Lookup resolves name in s and its enclosing scopes.
func (s *Scope) Lookup(name string) *Variable {
	for cur := s; cur != nil; cur = cur.Upper {
		if v, ok := cur.set[name]; ok {
			return v
		}
	}
	return nil
}

// VariableScope returns the nearest scope that receives `var` declarations.
func (s *Scope) VariableScope() *Scope {
	cur := s
	for cur.Upper != nil && cur.Kind != FunctionScope && cur.Kind != ModuleScope {
		cur = cur.Upper
	}
	return cur
}

func (s *Scope) declare(name string) *Variable {
	if v, ok := s.set[name]; ok {
		return v
	}
	v := &Variable{Name: name, Scope: s}
	s.set[name] = v
	s.Variables = append(s.Variables, v)
	return v
}

// DefKind classifies why a variable exists.
type DefKind int

const (
	VariableDef DefKind = iota
	ParameterDef
	FunctionNameDef
	ClassNameDef
	ImportBindingDef
	CatchClauseDef
)

func (k DefKind) String() string {
	switch k {
	case VariableDef:
		return "Variable"
	case ParameterDef:
		return "Parameter"
	case FunctionNameDef:
		return "FunctionName"
	case ClassNameDef:
		return "ClassName"
	case ImportBindingDef:
		return "ImportBinding"
	case CatchClauseDef:
		return "CatchClause"
	}
	return "Unknown"
}

// Definition is one declaration of a variable.
//
// Node is the declaring construct: the VariableDeclarator, the function (for
// parameters and function names), the class, the import specifier or the
// catch clause. Parent is the enclosing VariableDeclaration or
// ImportDeclaration when there is one.
type Definition struct {
	Kind   DefKind
	Name   *ast.Identifier
	Node   ast.Node
	Parent ast.Node

	// Index is the parameter position for ParameterDef.
	Index int
	// Path is the destructuring key path from the parameter to the name,
	// outermost key first. "*" stands for any element.
	Path []string
	// Rest is set for `...args` parameters.
	Rest bool
	// Default is the parameter default value, if any.
	Default ast.Node
}

// Variable is a named binding.
type Variable struct {
	Name        string
	Scope       *Scope
	Defs        []*Definition
	Identifiers []*ast.Identifier
	References  []*Reference
}

// IsGlobal reports whether v is an implicit global with no declaration.
func (v *Variable) IsGlobal() bool {
	return v.Scope != nil && v.Scope.Kind == GlobalScope && len(v.Defs) == 0
}

// WriteReferences returns the references that assign to v, in source order.
func (v *Variable) WriteReferences() []*Reference {
	var out []*Reference
	for _, r := range v.References {
		if r.IsWrite() {
			out = append(out, r)
		}
	}
	return out
}

// RefFlag tells whether a reference reads, writes or does both.
type RefFlag int

const (
	Read RefFlag = 1 << iota
	Write
	ReadWrite = Read | Write
)

// Reference is one occurrence of an identifier bound to a variable.
type Reference struct {
	Identifier *ast.Identifier
	From       *Scope
	Resolved   *Variable
	Flag       RefFlag

	// WriteExpr is the value assigned by a write reference. For
	// destructuring writes it is the whole right-hand side and Path holds
	// the keys leading to the identifier.
	WriteExpr ast.Node
	Init      bool
	Path      []string
	Default   ast.Node
}

func (r *Reference) IsWrite() bool { return r.Flag&Write != 0 }
func (r *Reference) IsRead() bool { return r.Flag&Read != 0 }
