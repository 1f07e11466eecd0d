// Package module loads JavaScript and TypeScript files into analyzed modules
// and resolves import specifiers between them.
package module

import (
	"sync"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/parser"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// Module is one parsed and scope-analyzed source file.
type Module struct {
	// Path is the absolute file path. It is empty for sources that have no
	// file, such as stdin.
	Path    string
	Dialect parser.Dialect
	Source  []byte
	Program *ast.Program
	Scopes  *scope.Manager

	exportsOnce sync.Once
	exports     *Exports
}

// New wraps an already parsed program.
func New(path string, d parser.Dialect, src []byte, prog *ast.Program) *Module {
	return &Module{
		Path:    path,
		Dialect: d,
		Source:  src,
		Program: prog,
		Scopes:  scope.Analyze(prog),
	}
}

// HasFile reports whether the module was loaded from disk.
func (m *Module) HasFile() bool {
	return m.Path != ""
}

// Resolve returns the variable bound to id in this module.
func (m *Module) Resolve(id *ast.Identifier) *scope.Variable {
	return m.Scopes.Resolve(id)
}

// ScopeFor returns the innermost scope enclosing n.
func (m *Module) ScopeFor(n ast.Node) *scope.Scope {
	return m.Scopes.ScopeFor(n)
}

// NodeAt returns the innermost node spanning the 1-based line and column.
func (m *Module) NodeAt(line, column int) ast.Node {
	return ast.Find(m.Program, ast.Position{Line: line, Column: column})
}

// Exports returns the export table of the module, built on first use.
func (m *Module) Exports() *Exports {
	m.exportsOnce.Do(func() {
		m.exports = collectExports(m.Program)
	})
	return m.exports
}

// Size approximates the memory held by the module for cache accounting.
func (m *Module) Size() int {
	return len(m.Source) * 8
}
