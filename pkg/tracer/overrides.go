package tracer

import (
	"github.com/l3aro/go-taint-trace/pkg/ast"
)

// override models calls whose effect on the value is known without reading
// their implementation: string and array methods, a few Object and path
// helpers and the React state hook. It reports false for any other call.
func (r *run) override(c Context, call *ast.CallExpression) ([]Node, bool) {
	if m, ok := call.Callee.(*ast.MemberExpression); ok {
		if method, static := ast.KeyName(m.Property, m.Computed); static {
			if out, ok := r.methodOverride(c.withFlag(Override), call, m, method); ok {
				return out, true
			}
		}
	}

	c = c.withFlag(Override)
	switch ast.CalleeName(call.Callee) {
	case "Object.values":
		if len(call.Arguments) == 0 {
			return nil, false
		}
		// Every element of the result is some property value.
		meta := c.meta
		if key, ok := meta.top(); ok && isIndex(key) {
			_, meta = meta.pop()
		}
		return r.classify(c.withMeta(meta.push(AnyKey)), call.Arguments[0]), true
	case "Object.assign":
		return r.union(c, call.Arguments...), true
	case "Object.freeze", "Array.from", "structuredClone":
		return r.firstArg(c, call), true
	case "String", "JSON.stringify":
		return r.firstArg(c.withFlag(Modification), call), true
	case "path.join", "path.resolve", "path.normalize", "path.posix.join", "path.win32.join":
		return r.union(c.withFlag(Modification), call.Arguments...), true
	case "useState", "React.useState":
		return r.useState(c, call), true
	}
	return nil, false
}

func (r *run) methodOverride(c Context, call *ast.CallExpression, m *ast.MemberExpression, method string) ([]Node, bool) {
	switch method {
	case "join":
		// The joined string is made of every element and the separator.
		c = c.withFlag(Modification)
		out := r.classify(c.withMeta(c.meta.push(AnyKey)), m.Object)
		return append(out, r.union(c, call.Arguments...)...), true
	case "concat":
		meta := c.meta
		if key, ok := meta.top(); ok && isIndex(key) {
			// Element positions shift, any element may be selected.
			_, meta = meta.pop()
			meta = meta.push(AnyKey)
			c = c.withMeta(meta)
		} else {
			c = c.withFlag(Modification)
		}
		out := r.classify(c, m.Object)
		return append(out, r.union(c, call.Arguments...)...), true
	case "split":
		c = c.withFlag(Split)
		if key, ok := c.meta.top(); ok && isIndex(key) {
			_, meta := c.meta.pop()
			c = c.withMeta(meta)
		}
		return r.classify(c, m.Object), true
	case "slice", "filter", "reverse", "sort", "flat":
		if key, ok := c.meta.top(); ok && isIndex(key) {
			_, meta := c.meta.pop()
			c = c.withMeta(meta.push(AnyKey))
		}
		return r.classify(c.withFlag(Modification), m.Object), true
	case "trim", "trimStart", "trimEnd", "toLowerCase", "toUpperCase",
		"toLocaleLowerCase", "toLocaleUpperCase", "substring", "substr",
		"padStart", "padEnd", "normalize", "toString", "valueOf", "charAt", "at":
		return r.classify(c.withFlag(Modification), m.Object), true
	case "replace", "replaceAll":
		c = c.withFlag(Modification)
		out := r.classify(c, m.Object)
		if len(call.Arguments) > 1 {
			out = append(out, r.classify(c, call.Arguments[1])...)
		}
		return out, true
	}
	return nil, false
}

// construct models constructors that wrap their arguments.
func (r *run) construct(c Context, n *ast.NewExpression) ([]Node, bool) {
	id, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	if v := c.mod.Resolve(id); v != nil && !v.IsGlobal() {
		return nil, false
	}
	c = c.withFlag(Override)
	switch id.Name {
	case "String", "URL":
		return r.union(c.withFlag(Modification), n.Arguments...), true
	case "Array", "Set", "Map":
		return r.union(c, n.Arguments...), true
	}
	return nil, false
}

func (r *run) firstArg(c Context, call *ast.CallExpression) []Node {
	if len(call.Arguments) == 0 {
		return one(r.constant(c, call, "undefined"))
	}
	return r.classify(c, call.Arguments[0])
}

// useState follows a `const [value, setValue] = useState(init)` tuple. The
// state is the initial value or anything passed to the setter.
func (r *run) useState(c Context, call *ast.CallExpression) []Node {
	key, ok := c.meta.top()
	if !ok || key != "0" {
		return one(r.astNode(c, call))
	}
	_, meta := c.meta.pop()
	c = c.withMeta(meta)
	out := r.firstArg(c, call)

	decl, ok := call.Parent().(*ast.VariableDeclarator)
	if !ok {
		return out
	}
	pattern, ok := decl.ID.(*ast.ArrayPattern)
	if !ok || len(pattern.Elements) < 2 {
		return out
	}
	setter, ok := pattern.Elements[1].(*ast.Identifier)
	if !ok {
		return out
	}
	v := c.mod.Resolve(setter)
	if v == nil {
		return out
	}
	for _, ref := range v.References {
		set, ok := ref.Identifier.Parent().(*ast.CallExpression)
		if !ok || set.Callee != ast.Node(ref.Identifier) || len(set.Arguments) == 0 {
			continue
		}
		out = append(out, r.classify(c.with(set).withFlag(Reassign), set.Arguments[0])...)
	}
	return out
}
