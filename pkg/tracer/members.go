package tracer

import (
	"strconv"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// object resolves the top member key against an object literal. Without a
// pending key the literal itself is the value.
func (r *run) object(c Context, obj *ast.ObjectExpression) []Node {
	key, ok := c.meta.top()
	if !ok {
		return one(r.astNode(c, obj))
	}
	_, meta := c.meta.pop()
	c = c.withMeta(meta)

	var out []Node
	if key == AnyKey {
		for _, p := range obj.Properties {
			switch prop := p.(type) {
			case *ast.Property:
				out = append(out, r.property(c, prop)...)
			case *ast.SpreadElement:
				out = append(out, r.spread(c, prop, AnyKey)...)
			}
		}
		return out
	}

	// Later properties shadow earlier ones, so walk backwards and stop at
	// the first static match.
	for i := len(obj.Properties) - 1; i >= 0; i-- {
		switch prop := obj.Properties[i].(type) {
		case *ast.Property:
			name, static := ast.KeyName(prop.Key, prop.Computed)
			if static && name != key {
				continue
			}
			out = append(out, r.property(c, prop)...)
			if static {
				return out
			}
		case *ast.SpreadElement:
			out = append(out, r.spread(c, prop, key)...)
		}
	}
	if len(out) == 0 {
		return one(r.unresolved(c, obj, ReasonUnknownProperty))
	}
	return out
}

// property classifies the value of an object literal property. Getters are
// entered as if called.
func (r *run) property(c Context, prop *ast.Property) []Node {
	c = c.with(prop)
	if prop.Kind == "get" {
		c = c.withMeta(c.meta.pushCall(&pendingCall{node: prop, mod: c.mod}))
	}
	if prop.Kind == "set" {
		return nil
	}
	return r.classify(c, prop.Value)
}

// spread resolves key on the argument of a spread element. Each spread is
// resolved at most once per path and the nesting is bounded.
func (r *run) spread(c Context, s *ast.SpreadElement, key string) []Node {
	meta, ok := c.meta.withSpread(s)
	if !ok {
		return nil
	}
	c = c.with(s)
	if len(meta.spread) > r.t.opts.MaxNestedTraces {
		return one(r.unresolved(c, s, ReasonNesting))
	}
	return r.classify(c.withMeta(meta.push(key)), s.Argument)
}

// array resolves an index against an array literal. A spread whose source is
// an array literal shifts the index by its length; any other spread makes
// every element from the spread on a candidate.
func (r *run) array(c Context, arr *ast.ArrayExpression) []Node {
	key, ok := c.meta.top()
	if !ok || !isIndex(key) {
		// The whole array, or one of its own properties such as length.
		return one(r.astNode(c, arr))
	}
	_, meta := c.meta.pop()
	c = c.withMeta(meta)
	if key == AnyKey {
		return r.elements(c, arr.Elements)
	}

	idx, _ := strconv.Atoi(key)
	pos := 0
	for i, el := range arr.Elements {
		if s, ok := el.(*ast.SpreadElement); ok {
			n, ok := r.spreadLength(c.mod, s.Argument, 0)
			if !ok {
				return r.elements(c, arr.Elements[i:])
			}
			if idx < pos+n {
				return r.spread(c, s, strconv.Itoa(idx-pos))
			}
			pos += n
			continue
		}
		if pos == idx {
			if el == nil {
				return one(r.constant(c, arr, "undefined"))
			}
			return r.classify(c, el)
		}
		pos++
	}
	return one(r.constant(c, arr, "undefined"))
}

// spreadLength returns the number of elements spread from n when n is an
// array literal, or a variable whose only write is one and which is never
// resized. Nesting is bounded by MaxNestedTraces.
func (r *run) spreadLength(mod *module.Module, n ast.Node, depth int) (int, bool) {
	if depth > r.t.opts.MaxNestedTraces {
		return 0, false
	}
	switch x := n.(type) {
	case *ast.ArrayExpression:
		total := 0
		for _, el := range x.Elements {
			s, ok := el.(*ast.SpreadElement)
			if !ok {
				total++
				continue
			}
			k, ok := r.spreadLength(mod, s.Argument, depth+1)
			if !ok {
				return 0, false
			}
			total += k
		}
		return total, true
	case *ast.Identifier:
		v := mod.Resolve(x)
		if v == nil || v.IsGlobal() {
			return 0, false
		}
		src, ok := arraySource(v)
		if !ok {
			return 0, false
		}
		return r.spreadLength(mod, src, depth+1)
	case *ast.TSAsExpression:
		return r.spreadLength(mod, x.Expression, depth+1)
	}
	return 0, false
}

// arraySource returns the initializer of v when it is v's only write and no
// reference changes the length of v in place.
func arraySource(v *scope.Variable) (ast.Node, bool) {
	for _, def := range v.Defs {
		if def.Kind != scope.VariableDef {
			return nil, false
		}
	}
	var src ast.Node
	for _, ref := range v.References {
		if ref.IsWrite() {
			if src != nil || !ref.Init || len(ref.Path) > 0 || ref.WriteExpr == nil {
				return nil, false
			}
			src = ref.WriteExpr
			continue
		}
		if resizes(ref.Identifier) {
			return nil, false
		}
	}
	return src, src != nil
}

// resizes reports whether id is the target of `id.k = v` or of a method
// call that changes an array's length.
func resizes(id *ast.Identifier) bool {
	m, ok := id.Parent().(*ast.MemberExpression)
	if !ok || m.Object != ast.Node(id) {
		return false
	}
	switch p := m.Parent().(type) {
	case *ast.AssignmentExpression:
		return p.Left == ast.Node(m)
	case *ast.CallExpression:
		if p.Callee != ast.Node(m) {
			return false
		}
		name, _ := ast.KeyName(m.Property, m.Computed)
		switch name {
		case "push", "pop", "shift", "unshift", "splice":
			return true
		}
	}
	return false
}

// elements classifies every element of an element list. Spread elements
// contribute all of their own elements.
func (r *run) elements(c Context, els []ast.Node) []Node {
	var out []Node
	for _, el := range els {
		switch x := el.(type) {
		case nil:
		case *ast.SpreadElement:
			out = append(out, r.spread(c, x, AnyKey)...)
		default:
			out = append(out, r.classify(c, x)...)
		}
	}
	return out
}

// this resolves `this` to the class or object literal that owns the
// enclosing method.
func (r *run) this(c Context, th *ast.ThisExpression) []Node {
	switch owner := thisOwner(th).(type) {
	case *ast.ObjectExpression:
		return r.object(c, owner)
	case *ast.ClassDeclaration, *ast.ClassExpression:
		if _, ok := c.meta.top(); ok {
			return r.classMember(c, owner)
		}
	}
	return one(r.astNode(c, th))
}

// thisOwner returns the class or object literal that `this` refers to at n,
// or nil when it is bound by a plain function.
func thisOwner(n ast.Node) ast.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch x := p.(type) {
		case *ast.ArrowFunctionExpression:
			continue
		case *ast.FunctionDeclaration:
			return nil
		case *ast.FunctionExpression:
			switch owner := x.Parent().(type) {
			case *ast.MethodDefinition:
				return ast.Enclosing(owner, ast.IsClass)
			case *ast.Property:
				if obj, ok := owner.Parent().(*ast.ObjectExpression); ok {
					return obj
				}
			}
			return nil
		case *ast.PropertyDefinition:
			return ast.Enclosing(x, ast.IsClass)
		case *ast.Program:
			return nil
		}
	}
	return nil
}

// super resolves `super` to the superclass of the enclosing class.
func (r *run) super(c Context, s *ast.Super) []Node {
	cls := ast.Enclosing(s, ast.IsClass)
	if cls == nil {
		return one(r.astNode(c, s))
	}
	superClass, _ := ast.ClassParts(cls)
	if superClass == nil {
		return one(r.astNode(c, s))
	}
	return r.classify(c, superClass)
}

// class handles a class reached as a value. A pending call constructs it,
// binding the constructor parameters, and a pending key selects a member.
func (r *run) class(c Context, cls ast.Node) []Node {
	if c.meta.callApplies() {
		if c.meta.depth >= r.t.opts.MaxCallDepth {
			return one(r.unresolved(c, cls, ReasonCallDepth))
		}
		call, meta := c.meta.enterCall()
		c = c.withMeta(meta)
		if ctor := constructorOf(cls); ctor != nil && call != nil {
			r.params[ctor] = call
		}
	}
	if _, ok := c.meta.top(); !ok {
		return one(r.astNode(c, cls))
	}
	return r.classMember(c, cls)
}

func constructorOf(cls ast.Node) *ast.FunctionExpression {
	_, body := ast.ClassParts(cls)
	if body == nil {
		return nil
	}
	for _, member := range body.Body {
		if m, ok := member.(*ast.MethodDefinition); ok && m.Kind == "constructor" {
			return m.Value
		}
	}
	return nil
}

// classMember resolves the top key against the members of cls: field
// initializers, methods, getters and `this.key = value` in the constructor.
// Keys the class does not define are looked up on the superclass.
func (r *run) classMember(c Context, cls ast.Node) []Node {
	key, meta := c.meta.pop()
	mc := c.withMeta(meta)
	superClass, body := ast.ClassParts(cls)

	var out []Node
	if body != nil {
		for _, member := range body.Body {
			switch m := member.(type) {
			case *ast.PropertyDefinition:
				if !keyMatches(m.Key, m.Computed, key) {
					continue
				}
				if m.Value == nil {
					out = append(out, r.constant(mc.with(m), m, "undefined"))
					continue
				}
				out = append(out, r.classify(mc.with(m), m.Value)...)
			case *ast.MethodDefinition:
				if m.Value == nil {
					continue
				}
				if m.Kind == "constructor" {
					out = append(out, r.constructorWrites(mc, m.Value, key)...)
					continue
				}
				if m.Kind == "set" || !keyMatches(m.Key, m.Computed, key) {
					continue
				}
				mm := mc.with(m)
				if m.Kind == "get" {
					mm = mm.withMeta(mm.meta.pushCall(&pendingCall{node: m, mod: mm.mod}))
				}
				out = append(out, r.classify(mm, m.Value)...)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	if superClass != nil {
		return r.classify(c, superClass)
	}
	return one(r.unresolved(mc, cls, ReasonUnknownProperty))
}

// constructorWrites classifies the values assigned to `this.key` in a
// constructor body, outside nested non-arrow functions.
func (r *run) constructorWrites(c Context, ctor *ast.FunctionExpression, key string) []Node {
	if ctor.Body == nil {
		return nil
	}
	var out []Node
	ast.Inspect(ctor.Body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FunctionExpression, *ast.FunctionDeclaration, *ast.ClassDeclaration, *ast.ClassExpression:
			return false
		case *ast.AssignmentExpression:
			m, ok := x.Left.(*ast.MemberExpression)
			if !ok {
				return true
			}
			if _, isThis := m.Object.(*ast.ThisExpression); !isThis || !keyMatches(m.Property, m.Computed, key) {
				return true
			}
			cc := c.with(x)
			if x.Operator != "=" {
				cc = cc.withFlag(Modification)
			}
			out = append(out, r.classify(cc, x.Right)...)
		}
		return true
	})
	return out
}

// keyMatches reports whether a member key may be key. Computed keys that are
// not literals match anything.
func keyMatches(k ast.Node, computed bool, key string) bool {
	name, ok := ast.KeyName(k, computed)
	return !ok || key == AnyKey || name == key
}
