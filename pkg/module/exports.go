package module

import (
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

// DefaultExport is the export name of `export default` and `module.exports`.
const DefaultExport = "default"

// ExportKind tells how an export obtains its value.
type ExportKind int

const (
	// ExportBinding exports a local binding. Local names the identifier.
	ExportBinding ExportKind = iota
	// ExportExpression exports a value that is not a binding, such as
	// `export default {...}` or `exports.x = ...`. Node holds it.
	ExportExpression
	// ExportReexport forwards Imported from Source.
	ExportReexport
	// ExportNamespace forwards the whole of Source, as in
	// `export * as ns from "./x"`.
	ExportNamespace
)

func (k ExportKind) String() string {
	switch k {
	case ExportBinding:
		return "binding"
	case ExportExpression:
		return "expression"
	case ExportReexport:
		return "reexport"
	case ExportNamespace:
		return "namespace"
	}
	return "unknown"
}

// Export is one named export of a module.
type Export struct {
	Name     string
	Kind     ExportKind
	Local    *ast.Identifier
	Node     ast.Node
	Source   string
	Imported string
}

// Exports is the export table of a module. When a name is exported more than
// once the later export wins.
type Exports struct {
	Named map[string]*Export
	// Stars lists the sources of `export * from` declarations in order.
	Stars []string
	// CommonJS is set when the module assigns module.exports or exports.*.
	CommonJS bool
}

// Lookup returns the export with the given name.
func (e *Exports) Lookup(name string) (*Export, bool) {
	exp, ok := e.Named[name]
	return exp, ok
}

func (e *Exports) add(exp *Export) {
	e.Named[exp.Name] = exp
}

func collectExports(prog *ast.Program) *Exports {
	e := &Exports{Named: make(map[string]*Export)}
	for _, stmt := range prog.Body {
		switch s := stmt.(type) {
		case *ast.ExportNamedDeclaration:
			e.named(s)
		case *ast.ExportDefaultDeclaration:
			e.defaultExport(s)
		case *ast.ExportAllDeclaration:
			source, _ := ast.StringValue(s.Source)
			if s.Exported != nil {
				if name, ok := ast.Name(s.Exported); ok {
					e.add(&Export{Name: name, Kind: ExportNamespace, Node: s, Source: source})
				}
				continue
			}
			e.Stars = append(e.Stars, source)
		}
	}
	e.commonJS(prog)
	return e
}

func (e *Exports) named(s *ast.ExportNamedDeclaration) {
	if s.Declaration != nil {
		for _, id := range declaredNames(s.Declaration) {
			e.add(&Export{Name: id.Name, Kind: ExportBinding, Local: id, Node: s.Declaration})
		}
		return
	}
	source := ""
	if s.Source != nil {
		source, _ = ast.StringValue(s.Source)
	}
	for _, spec := range s.Specifiers {
		local, _ := ast.Name(spec.Local)
		exported, ok := ast.Name(spec.Exported)
		if !ok {
			exported = local
		}
		if source != "" {
			e.add(&Export{Name: exported, Kind: ExportReexport, Node: spec, Source: source, Imported: local})
			continue
		}
		id, _ := spec.Local.(*ast.Identifier)
		e.add(&Export{Name: exported, Kind: ExportBinding, Local: id, Node: spec})
	}
}

func (e *Exports) defaultExport(s *ast.ExportDefaultDeclaration) {
	exp := &Export{Name: DefaultExport, Kind: ExportExpression, Node: s.Declaration}
	switch d := s.Declaration.(type) {
	case *ast.FunctionDeclaration:
		if d.ID != nil {
			exp.Kind, exp.Local = ExportBinding, d.ID
		}
	case *ast.ClassDeclaration:
		if d.ID != nil {
			exp.Kind, exp.Local = ExportBinding, d.ID
		}
	}
	e.add(exp)
}

// commonJS records top-level `module.exports = x`, `module.exports.a = x`
// and `exports.a = x` assignments. An object literal assigned to
// module.exports also exports each of its static keys.
func (e *Exports) commonJS(prog *ast.Program) {
	for _, stmt := range prog.Body {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			continue
		}
		assign, ok := es.Expression.(*ast.AssignmentExpression)
		if !ok || assign.Operator != "=" {
			continue
		}
		target := ast.CalleeName(assign.Left)
		if target == "module.exports" {
			e.CommonJS = true
			e.add(&Export{Name: DefaultExport, Kind: ExportExpression, Node: assign.Right})
			if obj, ok := assign.Right.(*ast.ObjectExpression); ok {
				for _, p := range obj.Properties {
					prop, ok := p.(*ast.Property)
					if !ok {
						continue
					}
					if key, ok := ast.KeyName(prop.Key, prop.Computed); ok {
						e.add(&Export{Name: key, Kind: ExportExpression, Node: prop.Value})
					}
				}
			}
			continue
		}
		name, ok := strings.CutPrefix(target, "module.exports.")
		if !ok {
			name, ok = strings.CutPrefix(target, "exports.")
		}
		if ok && name != "" && !strings.Contains(name, ".") {
			e.CommonJS = true
			e.add(&Export{Name: name, Kind: ExportExpression, Node: assign.Right})
		}
	}
}

// declaredNames returns the identifiers bound by a declaration.
func declaredNames(decl ast.Node) []*ast.Identifier {
	switch d := decl.(type) {
	case *ast.FunctionDeclaration:
		if d.ID != nil {
			return []*ast.Identifier{d.ID}
		}
	case *ast.ClassDeclaration:
		if d.ID != nil {
			return []*ast.Identifier{d.ID}
		}
	case *ast.VariableDeclaration:
		var out []*ast.Identifier
		for _, v := range d.Declarations {
			out = patternNames(v.ID, out)
		}
		return out
	}
	return nil
}

func patternNames(p ast.Node, out []*ast.Identifier) []*ast.Identifier {
	switch x := p.(type) {
	case *ast.Identifier:
		out = append(out, x)
	case *ast.ObjectPattern:
		for _, prop := range x.Properties {
			switch pp := prop.(type) {
			case *ast.Property:
				out = patternNames(pp.Value, out)
			default:
				out = patternNames(pp, out)
			}
		}
	case *ast.ArrayPattern:
		for _, el := range x.Elements {
			out = patternNames(el, out)
		}
	case *ast.AssignmentPattern:
		out = patternNames(x.Left, out)
	case *ast.RestElement:
		out = patternNames(x.Argument, out)
	}
	return out
}
