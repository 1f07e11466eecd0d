package tracer

import (
	"sort"
	"strconv"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// expand produces the nodes a variable may take its value from: its writes,
// most recent first, followed by what its declarations contribute.
func (r *run) expand(vn *VariableNode) []Node {
	c := vn.next()
	v := vn.Variable
	if v.IsGlobal() {
		return r.expandGlobal(c, vn)
	}

	out := r.writes(c, v)
	for _, def := range v.Defs {
		switch def.Kind {
		case scope.VariableDef:
			// Declarations with an initializer are write references.
		case scope.ParameterDef:
			out = append(out, r.parameter(c, def)...)
		case scope.FunctionNameDef, scope.ClassNameDef:
			out = append(out, r.classify(c, def.Node)...)
		case scope.ImportBindingDef:
			out = append(out, r.importBinding(c, def)...)
		case scope.CatchClauseDef:
			out = append(out, r.astNode(c.with(def.Name), def.Name))
		default:
			failAt(def.Node, "unknown definition kind %v", def.Kind)
		}
	}
	return out
}

func (r *run) expandGlobal(c Context, vn *VariableNode) []Node {
	name := vn.Variable.Name
	switch name {
	case "undefined", "NaN", "Infinity":
		return one(r.constant(c.with(vn.expr), vn.expr, name))
	case "require":
		if !c.meta.callApplies() {
			break
		}
		call, meta := c.meta.enterCall()
		if call == nil || len(call.args) == 0 {
			break
		}
		return r.dynamicImport(c.withMeta(meta).with(call.node), call.node, call.args[0], false)
	}
	return one(r.global(c.with(vn.expr), vn.expr, name))
}

// write is one assignment that may have produced the traced value.
type write struct {
	pos   int
	nodes func() []Node
}

// writes collects direct assignments, property writes and array appends to
// v that match the pending member path.
func (r *run) writes(c Context, v *scope.Variable) []Node {
	var ws []write
	for _, ref := range v.References {
		ref := ref
		pos := int(ref.Identifier.Pos().StartByte)
		if ref.IsWrite() {
			if ref.WriteExpr == nil {
				// x++ and friends only produce numbers.
				continue
			}
			ws = append(ws, write{pos: pos, nodes: func() []Node { return r.assigned(c, ref) }})
			continue
		}
		if w, ok := r.memberWrite(c, ref.Identifier); ok {
			w.pos = pos
			ws = append(ws, w)
		}
	}

	sort.SliceStable(ws, func(i, j int) bool { return ws[i].pos > ws[j].pos })
	var out []Node
	for _, w := range ws {
		out = append(out, w.nodes()...)
	}
	return out
}

func (r *run) assigned(c Context, ref *scope.Reference) []Node {
	site := ref.WriteExpr.Parent()
	if site == nil {
		site = ref.WriteExpr
	}
	c = c.with(site)
	if !ref.Init {
		c = c.withFlag(Reassign)
	}
	if ref.Flag == scope.ReadWrite {
		c = c.withFlag(Modification)
	}
	out := r.classify(c.withMeta(c.meta.pushPath(ref.Path)), ref.WriteExpr)
	if ref.Default != nil {
		out = append(out, r.classify(c, ref.Default)...)
	}
	return out
}

// memberWrite recognizes `id.a.b = value` and `id.push(value)`.
func (r *run) memberWrite(c Context, id *ast.Identifier) (write, bool) {
	var keys []string
	var outer ast.Node = id
	for {
		m, ok := outer.Parent().(*ast.MemberExpression)
		if !ok || m.Object != outer {
			break
		}
		key, ok := ast.KeyName(m.Property, m.Computed)
		if !ok {
			key = AnyKey
		}
		keys = append(keys, key)
		outer = m
	}
	if len(keys) == 0 {
		return write{}, false
	}

	switch p := outer.Parent().(type) {
	case *ast.AssignmentExpression:
		if p.Left != outer {
			return write{}, false
		}
		meta, ok := matchKeys(c.meta, keys)
		if !ok {
			return write{}, false
		}
		cc := c.with(p).withFlag(Reassign).withMeta(meta)
		if p.Operator != "=" {
			cc = cc.withFlag(Modification)
		}
		return write{nodes: func() []Node { return r.classify(cc, p.Right) }}, true

	case *ast.CallExpression:
		method := keys[len(keys)-1]
		if p.Callee != outer || (method != "push" && method != "unshift") {
			return write{}, false
		}
		meta, ok := matchKeys(c.meta, keys[:len(keys)-1])
		if !ok {
			return write{}, false
		}
		if key, ok := meta.top(); ok {
			if !isIndex(key) {
				return write{}, false
			}
			_, meta = meta.pop()
		}
		cc := c.with(p).withFlag(Append).withMeta(meta)
		return write{nodes: func() []Node { return r.elements(cc, p.Arguments) }}, true
	}
	return write{}, false
}

// matchKeys pops keys, outermost first, from the member path. A write deeper
// than the traced path still contributes to it.
func matchKeys(m Meta, keys []string) (Meta, bool) {
	for _, k := range keys {
		top, ok := m.top()
		if !ok {
			return m, true
		}
		if top != k && top != AnyKey && k != AnyKey {
			return m, false
		}
		_, m = m.pop()
	}
	return m, true
}

// isIndex reports whether key selects array elements.
func isIndex(key string) bool {
	if key == AnyKey {
		return true
	}
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0
}

// parameter binds a parameter to the argument of the latest call that
// entered its function.
func (r *run) parameter(c Context, def *scope.Definition) []Node {
	var out []Node
	call, bound := r.params[def.Node]
	switch {
	case !bound:
		out = one(r.astNode(c.with(def.Name), def.Name))
	case def.Rest:
		out = r.restArgs(c.inModule(call.mod).with(call.node), call.node, call.args, def.Index)
	case def.Index < len(call.args):
		cc := c.inModule(call.mod).with(call.node)
		out = r.classify(cc.withMeta(cc.meta.pushPath(def.Path)), call.args[def.Index])
	case def.Default == nil:
		out = one(r.constant(c.with(def.Name), def.Name, "undefined"))
	}
	if def.Default != nil {
		out = append(out, r.classify(c, def.Default)...)
	}
	return out
}

// restArgs resolves a rest parameter, the array of arguments from index on.
func (r *run) restArgs(c Context, call ast.Node, args []ast.Node, index int) []Node {
	if index > len(args) {
		index = len(args)
	}
	rest := args[index:]
	key, ok := c.meta.top()
	if !ok {
		return r.elements(c, rest)
	}
	_, meta := c.meta.pop()
	c = c.withMeta(meta)
	if key == AnyKey {
		return r.elements(c, rest)
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return one(r.astNode(c, call))
	}
	for j, arg := range rest {
		if _, ok := arg.(*ast.SpreadElement); ok {
			return r.elements(c, rest[j:])
		}
		if j == i {
			return r.classify(c, arg)
		}
	}
	return one(r.constant(c, call, "undefined"))
}
