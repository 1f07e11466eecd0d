package scope

import (
	"strconv"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

// Manager holds the result of analyzing one program.
type Manager struct {
	Global *Scope
	Module *Scope
	Scopes []*Scope

	nodeScopes map[ast.Node]*Scope
	refs       map[*ast.Identifier]*Reference
	decls      map[*ast.Identifier]*Variable
}

// ModuleScope returns the top-level scope of the file.
func (m *Manager) ModuleScope() *Scope {
	return m.Module
}

// Resolve returns the variable an identifier refers to or declares. Property
// names, labels and other non-binding identifiers resolve to nil.
func (m *Manager) Resolve(id *ast.Identifier) *Variable {
	if r, ok := m.refs[id]; ok {
		return r.Resolved
	}
	return m.decls[id]
}

// Reference returns the reference recorded for id, if any.
func (m *Manager) Reference(id *ast.Identifier) *Reference {
	return m.refs[id]
}

// ScopeFor returns the innermost scope enclosing n.
func (m *Manager) ScopeFor(n ast.Node) *Scope {
	for cur := n; cur != nil; cur = cur.Parent() {
		if s, ok := m.nodeScopes[cur]; ok {
			return s
		}
	}
	return m.Module
}

// ScopeOf returns the scope created by block, if block creates one.
func (m *Manager) ScopeOf(block ast.Node) *Scope {
	return m.nodeScopes[block]
}

type pendingRef struct {
	ref   *Reference
	scope *Scope
}

type analyzer struct {
	m       *Manager
	pending []pendingRef
}

// Analyze builds the scope tree of prog and resolves every reference.
// Declarations are collected first so hoisted names resolve regardless of
// their position; names with no declaration become implicit globals.
func Analyze(prog *ast.Program) *Manager {
	m := &Manager{
		nodeScopes: make(map[ast.Node]*Scope),
		refs:       make(map[*ast.Identifier]*Reference),
		decls:      make(map[*ast.Identifier]*Variable),
	}
	m.Global = newScope(GlobalScope, prog, nil)
	m.Module = newScope(ModuleScope, prog, m.Global)
	m.Scopes = append(m.Scopes, m.Global, m.Module)
	m.nodeScopes[prog] = m.Module

	a := &analyzer{m: m}
	for _, stmt := range prog.Body {
		a.visit(stmt, m.Module)
	}

	for _, p := range a.pending {
		name := p.ref.Identifier.Name
		v := p.scope.Lookup(name)
		if v == nil {
			v = m.Global.declare(name)
		}
		p.ref.Resolved = v
		v.References = append(v.References, p.ref)
	}
	return m
}

func (a *analyzer) scope(kind Kind, block ast.Node, upper *Scope) *Scope {
	s := newScope(kind, block, upper)
	a.m.Scopes = append(a.m.Scopes, s)
	a.m.nodeScopes[block] = s
	return s
}

func (a *analyzer) define(s *Scope, id *ast.Identifier, def *Definition) {
	v := s.declare(id.Name)
	d := *def
	d.Name = id
	v.Defs = append(v.Defs, &d)
	v.Identifiers = append(v.Identifiers, id)
	a.m.decls[id] = v
}

func (a *analyzer) reference(s *Scope, ref *Reference) {
	a.m.refs[ref.Identifier] = ref
	a.pending = append(a.pending, pendingRef{ref: ref, scope: s})
}

func (a *analyzer) read(s *Scope, id *ast.Identifier) {
	a.reference(s, &Reference{Identifier: id, From: s, Flag: Read})
}

// binding is one identifier bound by a pattern together with the key path
// that leads to it and its default value.
type binding struct {
	id   *ast.Identifier
	path []string
	def  ast.Node
	rest bool
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}

// bindings flattens a declaration or assignment pattern. Expressions found
// in defaults and computed keys are visited as reads in s; member
// expression targets are visited too.
func (a *analyzer) bindings(pattern ast.Node, s *Scope, path []string, def ast.Node, out []binding) []binding {
	switch p := pattern.(type) {
	case *ast.Identifier:
		return append(out, binding{id: p, path: path, def: def})
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			switch pp := prop.(type) {
			case *ast.Property:
				key, ok := ast.KeyName(pp.Key, pp.Computed)
				if !ok {
					key = "*"
					a.visit(pp.Key, s)
				}
				out = a.bindings(pp.Value, s, appendPath(path, key), nil, out)
			case *ast.RestElement:
				out = a.bindings(pp.Argument, s, path, nil, out)
			default:
				out = a.bindings(pp, s, path, nil, out)
			}
		}
	case *ast.ArrayPattern:
		for i, el := range p.Elements {
			if el == nil {
				continue
			}
			if rest, ok := el.(*ast.RestElement); ok {
				out = a.bindings(rest.Argument, s, appendPath(path, "*"), nil, out)
				continue
			}
			out = a.bindings(el, s, appendPath(path, strconv.Itoa(i)), nil, out)
		}
	case *ast.AssignmentPattern:
		a.visit(p.Right, s)
		return a.bindings(p.Left, s, path, p.Right, out)
	case *ast.RestElement:
		start := len(out)
		out = a.bindings(p.Argument, s, path, def, out)
		for i := start; i < len(out); i++ {
			out[i].rest = true
		}
	default:
		// Member expression or other assignment target.
		a.visit(pattern, s)
	}
	return out
}

func (a *analyzer) visitAll(nodes []ast.Node, s *Scope) {
	for _, n := range nodes {
		a.visit(n, s)
	}
}

func (a *analyzer) visit(n ast.Node, s *Scope) {
	switch x := n.(type) {
	case nil:
		return
	case *ast.Identifier:
		a.read(s, x)

	case *ast.VariableDeclaration:
		target := s
		if x.Kind == "var" {
			target = s.VariableScope()
		}
		for _, d := range x.Declarations {
			a.declarator(x, d, s, target)
		}

	case *ast.FunctionDeclaration:
		if x.ID != nil {
			a.define(s, x.ID, &Definition{Kind: FunctionNameDef, Node: x})
		}
		a.function(x, s)
	case *ast.FunctionExpression, *ast.ArrowFunctionExpression:
		a.function(x, s)

	case *ast.ClassDeclaration:
		if x.ID != nil {
			a.define(s, x.ID, &Definition{Kind: ClassNameDef, Node: x})
		}
		a.class(x, s)
	case *ast.ClassExpression:
		a.class(x, s)

	case *ast.BlockStatement:
		a.visitAll(x.Body, a.scope(BlockScope, x, s))

	case *ast.ForStatement:
		fs := a.scope(ForScope, x, s)
		a.visit(x.Init, fs)
		a.visit(x.Test, fs)
		a.visit(x.Update, fs)
		a.visit(x.Body, fs)
	case *ast.ForInStatement:
		a.forEach(x, x.Left, x.Right, x.Body, nil, s)
	case *ast.ForOfStatement:
		a.forEach(x, x.Left, x.Right, x.Body, []string{"*"}, s)

	case *ast.CatchClause:
		cs := a.scope(CatchScope, x, s)
		if x.Param != nil {
			for _, b := range a.bindings(x.Param, cs, nil, nil, nil) {
				a.define(cs, b.id, &Definition{Kind: CatchClauseDef, Node: x, Path: b.path})
			}
		}
		if x.Body != nil {
			a.visit(x.Body, cs)
		}

	case *ast.SwitchStatement:
		a.visit(x.Discriminant, s)
		ss := a.scope(BlockScope, x, s)
		for _, c := range x.Cases {
			a.visit(c.Test, ss)
			a.visitAll(c.Consequent, ss)
		}

	case *ast.AssignmentExpression:
		a.assignment(x, s)
	case *ast.UpdateExpression:
		if id, ok := x.Argument.(*ast.Identifier); ok {
			a.reference(s, &Reference{Identifier: id, From: s, Flag: ReadWrite})
			return
		}
		a.visit(x.Argument, s)

	case *ast.MemberExpression:
		a.visit(x.Object, s)
		if x.Computed {
			a.visit(x.Property, s)
		}
	case *ast.Property:
		if x.Computed {
			a.visit(x.Key, s)
		}
		a.visit(x.Value, s)

	case *ast.LabeledStatement:
		a.visit(x.Body, s)
	case *ast.BreakStatement, *ast.ContinueStatement:

	case *ast.ImportDeclaration:
		for _, spec := range x.Specifiers {
			var local *ast.Identifier
			switch sp := spec.(type) {
			case *ast.ImportSpecifier:
				local = sp.Local
			case *ast.ImportDefaultSpecifier:
				local = sp.Local
			case *ast.ImportNamespaceSpecifier:
				local = sp.Local
			}
			if local != nil {
				a.define(a.m.Module, local, &Definition{Kind: ImportBindingDef, Node: spec, Parent: x})
			}
		}
	case *ast.ExportNamedDeclaration:
		a.visit(x.Declaration, s)
		if x.Source == nil {
			for _, spec := range x.Specifiers {
				if id, ok := spec.Local.(*ast.Identifier); ok {
					a.read(s, id)
				}
			}
		}
	case *ast.ExportDefaultDeclaration:
		a.visit(x.Declaration, s)
	case *ast.ExportAllDeclaration:

	case *ast.JSXElement:
		a.visitAll(x.Attributes, s)
		a.visitAll(x.Children, s)
	case *ast.JSXAttribute:
		a.visit(x.Value, s)

	default:
		a.visitAll(ast.Children(n), s)
	}
}

func (a *analyzer) declarator(decl *ast.VariableDeclaration, d *ast.VariableDeclarator, s, target *Scope) {
	for _, b := range a.bindings(d.ID, s, nil, nil, nil) {
		a.define(target, b.id, &Definition{Kind: VariableDef, Node: d, Parent: decl})
		if d.Init != nil {
			a.reference(s, &Reference{
				Identifier: b.id,
				From:       s,
				Flag:       Write,
				WriteExpr:  d.Init,
				Init:       true,
				Path:       b.path,
				Default:    b.def,
			})
		}
	}
	a.visit(d.Init, s)
}

func (a *analyzer) assignment(x *ast.AssignmentExpression, s *Scope) {
	flag := Write
	if x.Operator != "=" {
		flag = ReadWrite
	}
	switch x.Left.(type) {
	case *ast.Identifier, *ast.ObjectPattern, *ast.ArrayPattern, *ast.AssignmentPattern:
		for _, b := range a.bindings(x.Left, s, nil, nil, nil) {
			a.reference(s, &Reference{
				Identifier: b.id,
				From:       s,
				Flag:       flag,
				WriteExpr:  x.Right,
				Path:       b.path,
				Default:    b.def,
			})
		}
	default:
		a.visit(x.Left, s)
	}
	a.visit(x.Right, s)
}

func (a *analyzer) forEach(stmt, left, right, body ast.Node, prefix []string, s *Scope) {
	fs := a.scope(ForScope, stmt, s)
	a.visit(right, s)
	if decl, ok := left.(*ast.VariableDeclaration); ok {
		target := fs
		if decl.Kind == "var" {
			target = s.VariableScope()
		}
		for _, d := range decl.Declarations {
			for _, b := range a.bindings(d.ID, fs, prefix, nil, nil) {
				a.define(target, b.id, &Definition{Kind: VariableDef, Node: d, Parent: decl})
				a.reference(fs, &Reference{Identifier: b.id, From: fs, Flag: Write, WriteExpr: right, Init: true, Path: b.path, Default: b.def})
			}
		}
	} else {
		for _, b := range a.bindings(left, fs, prefix, nil, nil) {
			a.reference(fs, &Reference{Identifier: b.id, From: fs, Flag: Write, WriteExpr: right, Path: b.path, Default: b.def})
		}
	}
	a.visit(body, fs)
}

func (a *analyzer) function(fn ast.Node, s *Scope) {
	fs := a.scope(FunctionScope, fn, s)
	if fe, ok := fn.(*ast.FunctionExpression); ok && fe.ID != nil {
		a.define(fs, fe.ID, &Definition{Kind: FunctionNameDef, Node: fe})
	}
	for i, p := range ast.FunctionParams(fn) {
		for _, b := range a.bindings(p, fs, nil, nil, nil) {
			a.define(fs, b.id, &Definition{
				Kind:    ParameterDef,
				Node:    fn,
				Index:   i,
				Path:    b.path,
				Rest:    b.rest,
				Default: b.def,
			})
		}
	}
	switch body := ast.FunctionBody(fn).(type) {
	case *ast.BlockStatement:
		a.visitAll(body.Body, fs)
	default:
		a.visit(body, fs)
	}
}

func (a *analyzer) class(cls ast.Node, s *Scope) {
	cs := a.scope(ClassScope, cls, s)
	if ce, ok := cls.(*ast.ClassExpression); ok && ce.ID != nil {
		a.define(cs, ce.ID, &Definition{Kind: ClassNameDef, Node: ce})
	}
	super, body := ast.ClassParts(cls)
	a.visit(super, cs)
	if body == nil {
		return
	}
	for _, member := range body.Body {
		switch m := member.(type) {
		case *ast.MethodDefinition:
			if m.Computed {
				a.visit(m.Key, cs)
			}
			if m.Value != nil {
				a.function(m.Value, cs)
			}
		case *ast.PropertyDefinition:
			if m.Computed {
				a.visit(m.Key, cs)
			}
			a.visit(m.Value, cs)
		}
	}
}
