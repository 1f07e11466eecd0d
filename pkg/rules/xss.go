package rules

import (
	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
)

var htmlSanitizers = []string{"sanitize", "escape", "escapeHTML", "encodeURIComponent", "encodeURI"}

type xss struct {
	MetaData
}

// NewXSS reports untrusted values written to the DOM as markup.
func NewXSS() Rule {
	return &xss{MetaData{
		RuleID:   "xss",
		What:     "Untrusted data written as HTML",
		Severity: High,
	}}
}

func (r *xss) Severity() Severity { return r.MetaData.Severity }

func (r *xss) Sinks(mod *module.Module) []Sink {
	var sinks []Sink
	ast.Inspect(mod.Program, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.AssignmentExpression:
			m, ok := x.Left.(*ast.MemberExpression)
			if !ok {
				break
			}
			if name, ok := ast.KeyName(m.Property, m.Computed); ok && (name == "innerHTML" || name == "outerHTML") {
				sinks = append(sinks, Sink{Node: x, Expr: x.Right, What: "assignment to " + name})
			}
		case *ast.CallExpression:
			name, ok := methodName(x.Callee)
			if !ok {
				break
			}
			switch {
			case name == "write" || name == "writeln":
				if ast.CalleeName(x.Callee) != "document."+name {
					break
				}
				for _, a := range x.Arguments {
					sinks = append(sinks, Sink{Node: x, Expr: a, What: "document." + name})
				}
			case name == "insertAdjacentHTML":
				if a, ok := arg(x, 1); ok {
					sinks = append(sinks, Sink{Node: x, Expr: a, What: name})
				}
			}
		case *ast.JSXAttribute:
			if x.Name != "dangerouslySetInnerHTML" {
				break
			}
			if v := innerHTMLValue(x.Value); v != nil {
				sinks = append(sinks, Sink{Node: x, Expr: v, What: x.Name})
			}
		}
		return true
	})
	return sinks
}

// innerHTMLValue returns the __html value of a dangerouslySetInnerHTML
// object, or the attribute value itself when it is not an object literal.
func innerHTMLValue(v ast.Node) ast.Node {
	obj, ok := v.(*ast.ObjectExpression)
	if !ok {
		return v
	}
	for _, p := range obj.Properties {
		prop, ok := p.(*ast.Property)
		if !ok {
			continue
		}
		if name, ok := ast.KeyName(prop.Key, prop.Computed); ok && name == "__html" {
			return prop.Value
		}
	}
	return nil
}

func (r *xss) Unsafe(_ Sink, t traces.Trace) bool {
	return tainted(t) && !t.Passes(htmlSanitizers...)
}
