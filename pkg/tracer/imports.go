package tracer

import (
	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// importBinding follows an import declaration to the exporting module.
func (r *run) importBinding(c Context, def *scope.Definition) []Node {
	decl, ok := def.Parent.(*ast.ImportDeclaration)
	if !ok || decl.Source == nil {
		failAt(def.Node, "import binding outside an import declaration")
	}
	source, _ := ast.StringValue(decl.Source)
	c = c.with(def.Node)

	switch spec := def.Node.(type) {
	case *ast.ImportSpecifier:
		name, ok := ast.Name(spec.Imported)
		if !ok {
			failAt(spec, "import specifier without a name")
		}
		return r.followExport(c, spec, source, name)
	case *ast.ImportDefaultSpecifier:
		return r.followExport(c, spec, source, module.DefaultExport)
	case *ast.ImportNamespaceSpecifier:
		key, ok := c.meta.top()
		if !ok || key == AnyKey {
			return one(r.importNode(c, spec, source, AnyKey))
		}
		_, meta := c.meta.pop()
		return r.followExport(c.withMeta(meta), spec, source, key)
	}
	failAt(def.Node, "unexpected import specifier %s", ast.Type(def.Node))
	return nil
}

// followExport resolves the export name of source, imported from c's module.
// Package imports end the branch with an ImportNode.
func (r *run) followExport(c Context, n ast.Node, source, name string) []Node {
	if module.IsPackage(source) {
		return one(r.importNode(c, n, source, name))
	}
	target, reason := r.load(c.mod, source)
	if target == nil {
		return one(r.unresolved(c, n, reason))
	}
	return r.resolveExport(c, n, target, name, make(map[string]bool))
}

// load resolves and parses source relative to from.
func (r *run) load(from *module.Module, source string) (*module.Module, string) {
	if !from.HasFile() {
		return nil, ReasonImportNoFile
	}
	path, err := r.t.resolver.Resolve(from.Path, source)
	if err != nil {
		r.t.log.Debug("import not resolved", "from", from.Path, "source", source, "error", err)
		return nil, ReasonImport
	}
	m, err := r.t.loader.Load(r.ctx, path)
	if err != nil {
		r.t.log.Debug("import not loaded", "path", path, "error", err)
		return nil, ReasonImport
	}
	return m, ""
}

// resolveExport finds the value of export name in target. visited guards
// against re-export loops.
func (r *run) resolveExport(c Context, n ast.Node, target *module.Module, name string, visited map[string]bool) []Node {
	key := target.Path + "#" + name
	if visited[key] {
		return one(r.unresolved(c, n, ReasonImport))
	}
	visited[key] = true

	tc := c.inModule(target)
	exports := target.Exports()
	if exp, ok := exports.Lookup(name); ok {
		switch exp.Kind {
		case module.ExportBinding:
			if exp.Local != nil {
				if v := target.Resolve(exp.Local); v != nil {
					return one(r.variable(tc.with(exp.Node), exp.Local, v))
				}
			}
			return r.classify(tc, exp.Node)
		case module.ExportExpression:
			return r.classify(tc, exp.Node)
		case module.ExportReexport:
			return r.reexport(tc, exp.Node, exp.Source, exp.Imported, visited)
		case module.ExportNamespace:
			member, ok := tc.meta.top()
			if !ok || member == AnyKey {
				return one(r.importNode(tc.with(exp.Node), exp.Node, exp.Source, AnyKey))
			}
			_, meta := tc.meta.pop()
			return r.reexport(tc.withMeta(meta), exp.Node, exp.Source, member, visited)
		}
	}

	if name != module.DefaultExport {
		for _, star := range exports.Stars {
			if module.IsPackage(star) {
				continue
			}
			sub, _ := r.load(target, star)
			if sub != nil && r.exports(sub, name, make(map[string]bool)) {
				return r.resolveExport(tc, n, sub, name, visited)
			}
		}
		if def, ok := exports.Lookup(module.DefaultExport); ok && exports.CommonJS {
			// module.exports = value: the name is a property of value.
			return r.classify(tc.withMeta(tc.meta.push(name)), def.Node)
		}
	}
	return one(r.unresolved(c, n, ReasonImport))
}

func (r *run) reexport(c Context, n ast.Node, source, name string, visited map[string]bool) []Node {
	c = c.with(n)
	if module.IsPackage(source) {
		return one(r.importNode(c, n, source, name))
	}
	sub, reason := r.load(c.mod, source)
	if sub == nil {
		return one(r.unresolved(c, n, reason))
	}
	return r.resolveExport(c, n, sub, name, visited)
}

// exports reports whether m exports name directly or through a star
// re-export.
func (r *run) exports(m *module.Module, name string, seen map[string]bool) bool {
	if seen[m.Path] {
		return false
	}
	seen[m.Path] = true
	exports := m.Exports()
	if _, ok := exports.Lookup(name); ok {
		return true
	}
	for _, star := range exports.Stars {
		if module.IsPackage(star) {
			continue
		}
		if sub, _ := r.load(m, star); sub != nil && r.exports(sub, name, seen) {
			return true
		}
	}
	return false
}

// dynamicImport handles `import(source)` and `require(source)`. A pending
// member key selects an export; otherwise require yields the default export
// and import() the module namespace.
func (r *run) dynamicImport(c Context, n, sourceNode ast.Node, namespace bool) []Node {
	source, ok := ast.StringValue(sourceNode)
	if !ok {
		return one(r.astNode(c, n))
	}

	name := module.DefaultExport
	if namespace {
		name = AnyKey
	}
	if key, ok := c.meta.top(); ok && key != AnyKey {
		_, meta := c.meta.pop()
		c = c.withMeta(meta)
		name = key
	}

	if module.IsPackage(source) {
		return one(r.importNode(c, n, source, name))
	}
	target, reason := r.load(c.mod, source)
	if target == nil {
		return one(r.unresolved(c, n, reason))
	}
	if name == AnyKey {
		return one(r.astNode(c.inModule(target), target.Program))
	}
	return r.resolveExport(c, n, target, name, make(map[string]bool))
}
