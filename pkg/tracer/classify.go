package tracer

import (
	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// classify turns one expression into the trace nodes it may evaluate to.
// Variables become VariableNodes, expanded later by the driver; every other
// expression is looked through immediately.
func (r *run) classify(c Context, n ast.Node) []Node {
	if n == nil {
		return nil
	}
	c = c.with(n)
	if c.depth > maxExpressionDepth {
		return one(r.unresolved(c, n, ReasonExpressionDepth))
	}

	switch x := n.(type) {
	case *ast.Literal:
		return one(r.constant(c, x, x.Value))
	case *ast.Identifier:
		return r.identifier(c, x)
	case *ast.TemplateLiteral:
		return r.template(c.withFlag(Modification), x)
	case *ast.TaggedTemplateExpression:
		return r.invoke(c, x, x.Tag, x.Quasi.Expressions)
	case *ast.MemberExpression:
		return r.member(c, x)
	case *ast.CallExpression:
		if out, ok := r.override(c, x); ok {
			return out
		}
		return r.invoke(c, x, x.Callee, x.Arguments)
	case *ast.NewExpression:
		if out, ok := r.construct(c, x); ok {
			return out
		}
		return r.invoke(c, x, x.Callee, x.Arguments)
	case *ast.ImportExpression:
		return r.dynamicImport(c, x, x.Source, true)
	case *ast.ArrayExpression:
		return r.array(c, x)
	case *ast.ObjectExpression:
		return r.object(c, x)

	case *ast.Property:
		return r.classify(c, x.Value)
	case *ast.SpreadElement:
		return r.classify(c, x.Argument)
	case *ast.AssignmentExpression:
		if x.Operator != "=" {
			c = c.withFlag(Modification)
			return r.union(c, x.Left, x.Right)
		}
		return r.classify(c, x.Right)
	case *ast.VariableDeclarator:
		return r.classify(c, x.Init)
	case *ast.AssignmentPattern:
		return r.classify(c, x.Right)
	case *ast.AwaitExpression:
		return r.classify(c, x.Argument)
	case *ast.TSAsExpression:
		return r.classify(c, x.Expression)
	case *ast.TSNonNullExpression:
		return r.classify(c, x.Expression)
	case *ast.ChainExpression:
		return r.classify(c, x.Expression)
	case *ast.SequenceExpression:
		if len(x.Expressions) == 0 {
			return nil
		}
		return r.classify(c, x.Expressions[len(x.Expressions)-1])
	case *ast.YieldExpression:
		if x.Argument == nil {
			return one(r.constant(c, x, "undefined"))
		}
		if x.Delegate {
			c = c.withMeta(c.meta.push(AnyKey))
		}
		return r.classify(c, x.Argument)

	case *ast.BinaryExpression:
		return r.union(c.withFlag(Modification), x.Left, x.Right)
	case *ast.UnaryExpression:
		if x.Operator == "void" {
			return one(r.constant(c, x, "undefined"))
		}
		return r.classify(c.withFlag(Modification), x.Argument)
	case *ast.UpdateExpression:
		return r.classify(c.withFlag(Modification), x.Argument)
	case *ast.LogicalExpression:
		return r.union(c, x.Left, x.Right)
	case *ast.ConditionalExpression:
		return r.union(c, x.Consequent, x.Alternate)

	case *ast.ThisExpression:
		return r.this(c, x)
	case *ast.Super:
		return r.super(c, x)
	case *ast.FunctionExpression, *ast.ArrowFunctionExpression, *ast.FunctionDeclaration:
		return r.function(c, x)
	case *ast.ClassExpression, *ast.ClassDeclaration:
		return r.class(c, x)

	case *ast.JSXElement:
		return one(r.astNode(c, x))
	case *ast.Unknown:
		r.unhandled(x.Kind)
		return one(r.unresolved(c, x, ReasonUnhandled+" "+x.Kind))
	default:
		kind := ast.Type(n)
		r.unhandled(kind)
		return one(r.unresolved(c, n, ReasonUnhandled+" "+kind))
	}
}

// union classifies every operand with the same context.
func (r *run) union(c Context, operands ...ast.Node) []Node {
	var out []Node
	for _, op := range operands {
		out = append(out, r.classify(c, op)...)
	}
	return out
}

func (r *run) identifier(c Context, id *ast.Identifier) []Node {
	v := c.mod.Resolve(id)
	if v == nil {
		return one(r.constant(c, id, id.Name))
	}
	return one(r.variable(c, id, v))
}

// template classifies the static parts of a template literal as constants
// and each substitution as an operand.
func (r *run) template(c Context, tpl *ast.TemplateLiteral) []Node {
	var out []Node
	for i, q := range tpl.Quasis {
		if q.Value != "" {
			out = append(out, r.constant(c.with(q), q, q.Value))
		}
		if i < len(tpl.Expressions) {
			out = append(out, r.classify(c, tpl.Expressions[i])...)
		}
	}
	return out
}

// member pushes the accessed key and classifies the object. The key itself
// is reported as a member-key constant.
func (r *run) member(c Context, m *ast.MemberExpression) []Node {
	key, ok := ast.KeyName(m.Property, m.Computed)
	if !ok {
		key = AnyKey
	}
	out := one(r.memberKey(c.with(m.Property), m.Property, key))
	return append(out, r.classify(c.withMeta(c.meta.push(key)), m.Object)...)
}

// invoke records a call and classifies its callee. Functions reached with a
// pending call are entered through their returns.
func (r *run) invoke(c Context, call, callee ast.Node, args []ast.Node) []Node {
	pc := &pendingCall{node: call, args: args, mod: c.mod}
	return r.classify(c.withFlag(Call).withMeta(c.meta.pushCall(pc)), callee)
}

// Node constructors. Each creates the node's connection from c.

func (r *run) connect(c Context) *Connection {
	return r.arena.Add(Connection{
		Parent:   c.parent,
		Path:     c.path,
		Flags:    c.flags,
		Variable: c.variable,
	})
}

func (r *run) variable(c Context, id *ast.Identifier, v *scope.Variable) Node {
	return &VariableNode{
		base:     base{conn: r.connect(c), expr: id, mod: c.mod},
		Variable: v,
		Scope:    c.mod.ScopeFor(id),
		ctx:      c,
	}
}

func (r *run) constant(c Context, n ast.Node, value string) Node {
	return &ConstantNode{base: base{conn: r.connect(c), expr: n, mod: c.mod}, Value: value}
}

func (r *run) memberKey(c Context, n ast.Node, key string) Node {
	return &ConstantNode{base: base{conn: r.connect(c), expr: n, mod: c.mod}, Value: key, MemberKey: true}
}

func (r *run) importNode(c Context, n ast.Node, source, imported string) Node {
	return &ImportNode{base: base{conn: r.connect(c), expr: n, mod: c.mod}, Source: source, Imported: imported}
}

func (r *run) global(c Context, n ast.Node, name string) Node {
	return &GlobalNode{base: base{conn: r.connect(c), expr: n, mod: c.mod}, Name: name}
}

func (r *run) astNode(c Context, n ast.Node) Node {
	return &ASTNode{base: base{conn: r.connect(c), expr: n, mod: c.mod}}
}

func (r *run) unresolved(c Context, n ast.Node, reason string) Node {
	return &UnresolvedNode{base: base{conn: r.connect(c), expr: n, mod: c.mod}, Reason: reason}
}
