package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

type converter struct {
	src []byte
}

func (c *converter) base(n *sitter.Node) ast.Base {
	sp, ep := n.StartPoint(), n.EndPoint()
	return ast.Base{Loc: ast.Range{
		Start:     ast.Position{Line: int(sp.Row) + 1, Column: int(sp.Column) + 1},
		End:       ast.Position{Line: int(ep.Row) + 1, Column: int(ep.Column) + 1},
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
	}}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// named returns the named children of n without comments.
func named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if kids := named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// hasToken reports whether n has a direct anonymous child of the given type.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == tok {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func (c *converter) program(n *sitter.Node) *ast.Program {
	prog := &ast.Program{Base: c.base(n)}
	prog.Body = c.list(named(n))
	return prog
}

func (c *converter) list(nodes []*sitter.Node) []ast.Node {
	var out []ast.Node
	for _, n := range nodes {
		if conv := c.node(n); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

// field converts the child stored under a grammar field name.
func (c *converter) field(n *sitter.Node, name string) ast.Node {
	return c.node(n.ChildByFieldName(name))
}

// declarationOnly lists TypeScript constructs that carry no runtime value.
var declarationOnly = map[string]bool{
	"interface_declaration":     true,
	"type_alias_declaration":    true,
	"ambient_declaration":       true,
	"function_signature":        true,
	"abstract_method_signature": true,
	"index_signature":           true,
	"method_signature":          true,
	"enum_declaration":          true,
	"module":                    true,
	"internal_module":           true,
	"import_alias":              true,
	"type_annotation":           true,
	"type_arguments":            true,
	"type_parameters":           true,
	"decorator":                 true,
	"meta_property":             true,
	"hash_bang_line":            true,
}

// node converts any statement, expression or pattern node.
func (c *converter) node(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	typ := n.Type()
	if declarationOnly[typ] {
		return &ast.Unknown{Base: c.base(n), Kind: typ}
	}

	switch typ {
	case "comment", ";":
		return nil
	case "empty_statement":
		return &ast.EmptyStatement{Base: c.base(n)}

	// statements
	case "expression_statement":
		return &ast.ExpressionStatement{Base: c.base(n), Expression: c.node(firstNamed(n))}
	case "lexical_declaration", "variable_declaration":
		return c.variableDeclaration(n)
	case "function_declaration", "generator_function_declaration":
		fn := c.function(n)
		return &ast.FunctionDeclaration{Base: fn.Base, ID: fn.ID, Params: fn.Params, Body: fn.Body, Async: fn.Async, Generator: fn.Generator}
	case "class_declaration", "abstract_class_declaration":
		id, super, body := c.class(n)
		return &ast.ClassDeclaration{Base: c.base(n), ID: id, SuperClass: super, Body: body}
	case "return_statement":
		return &ast.ReturnStatement{Base: c.base(n), Argument: c.node(firstNamed(n))}
	case "if_statement":
		stmt := &ast.IfStatement{Base: c.base(n), Test: c.field(n, "condition"), Consequent: c.field(n, "consequence")}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				stmt.Alternate = c.node(firstNamed(alt))
			} else {
				stmt.Alternate = c.node(alt)
			}
		}
		return stmt
	case "for_statement":
		return &ast.ForStatement{
			Base:   c.base(n),
			Init:   c.forPart(n.ChildByFieldName("initializer")),
			Test:   c.forPart(n.ChildByFieldName("condition")),
			Update: c.forPart(n.ChildByFieldName("increment")),
			Body:   c.field(n, "body"),
		}
	case "for_in_statement":
		return c.forIn(n)
	case "while_statement":
		return &ast.WhileStatement{Base: c.base(n), Test: c.field(n, "condition"), Body: c.field(n, "body")}
	case "do_statement":
		return &ast.DoWhileStatement{Base: c.base(n), Body: c.field(n, "body"), Test: c.field(n, "condition")}
	case "switch_statement":
		return c.switchStatement(n)
	case "try_statement":
		return c.tryStatement(n)
	case "labeled_statement":
		stmt := &ast.LabeledStatement{Base: c.base(n), Body: c.field(n, "body")}
		if label := n.ChildByFieldName("label"); label != nil {
			stmt.Label = c.identifier(label)
		}
		return stmt
	case "throw_statement":
		return &ast.ThrowStatement{Base: c.base(n), Argument: c.node(firstNamed(n))}
	case "break_statement":
		stmt := &ast.BreakStatement{Base: c.base(n)}
		if label := n.ChildByFieldName("label"); label != nil {
			stmt.Label = c.identifier(label)
		}
		return stmt
	case "continue_statement":
		stmt := &ast.ContinueStatement{Base: c.base(n)}
		if label := n.ChildByFieldName("label"); label != nil {
			stmt.Label = c.identifier(label)
		}
		return stmt
	case "statement_block":
		return c.block(n)
	case "import_statement":
		return c.importStatement(n)
	case "export_statement":
		return c.exportStatement(n)

	// expressions
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "statement_identifier",
		"private_property_identifier", "type_identifier":
		return c.identifier(n)
	case "undefined":
		return &ast.Identifier{Base: c.base(n), Name: "undefined"}
	case "this":
		return &ast.ThisExpression{Base: c.base(n)}
	case "super":
		return &ast.Super{Base: c.base(n)}
	case "string":
		return c.stringLiteral(n)
	case "number":
		return c.numberLiteral(n)
	case "true", "false":
		return &ast.Literal{Base: c.base(n), Kind: ast.BooleanLiteral, Value: typ, Raw: typ}
	case "null":
		return &ast.Literal{Base: c.base(n), Kind: ast.NullLiteral, Value: "null", Raw: "null"}
	case "regex":
		raw := c.text(n)
		return &ast.Literal{Base: c.base(n), Kind: ast.RegExpLiteral, Value: raw, Raw: raw}
	case "template_string":
		return c.template(n)
	case "parenthesized_expression":
		return c.node(firstNamed(n))
	case "member_expression":
		return c.member(n, n.ChildByFieldName("property"), false)
	case "subscript_expression":
		return c.member(n, n.ChildByFieldName("index"), true)
	case "call_expression":
		return c.call(n)
	case "new_expression":
		return &ast.NewExpression{Base: c.base(n), Callee: c.field(n, "constructor"), Arguments: c.arguments(n.ChildByFieldName("arguments"))}
	case "await_expression":
		return &ast.AwaitExpression{Base: c.base(n), Argument: c.node(firstNamed(n))}
	case "yield_expression":
		return &ast.YieldExpression{Base: c.base(n), Argument: c.node(firstNamed(n)), Delegate: hasToken(n, "*")}
	case "as_expression", "satisfies_expression":
		return &ast.TSAsExpression{Base: c.base(n), Expression: c.node(firstNamed(n))}
	case "type_assertion":
		kids := named(n)
		if len(kids) == 0 {
			return nil
		}
		return &ast.TSAsExpression{Base: c.base(n), Expression: c.node(kids[len(kids)-1])}
	case "non_null_expression":
		return &ast.TSNonNullExpression{Base: c.base(n), Expression: c.node(firstNamed(n))}
	case "sequence_expression":
		return &ast.SequenceExpression{Base: c.base(n), Expressions: c.sequence(n, nil)}
	case "binary_expression":
		return c.binary(n)
	case "unary_expression":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = o.Type()
		}
		return &ast.UnaryExpression{Base: c.base(n), Operator: op, Argument: c.field(n, "argument")}
	case "update_expression":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = o.Type()
		}
		prefix := n.ChildCount() > 0 && !n.Child(0).IsNamed()
		return &ast.UpdateExpression{Base: c.base(n), Operator: op, Argument: c.field(n, "argument"), Prefix: prefix}
	case "ternary_expression":
		return &ast.ConditionalExpression{
			Base:       c.base(n),
			Test:       c.field(n, "condition"),
			Consequent: c.field(n, "consequence"),
			Alternate:  c.field(n, "alternative"),
		}
	case "assignment_expression":
		return &ast.AssignmentExpression{Base: c.base(n), Operator: "=", Left: c.field(n, "left"), Right: c.field(n, "right")}
	case "augmented_assignment_expression":
		op := "="
		if o := n.ChildByFieldName("operator"); o != nil {
			op = o.Type()
		}
		return &ast.AssignmentExpression{Base: c.base(n), Operator: op, Left: c.field(n, "left"), Right: c.field(n, "right")}
	case "arrow_function":
		return c.arrow(n)
	case "function_expression", "function", "generator_function":
		return c.function(n)
	case "class":
		id, super, body := c.class(n)
		return &ast.ClassExpression{Base: c.base(n), ID: id, SuperClass: super, Body: body}
	case "array":
		return &ast.ArrayExpression{Base: c.base(n), Elements: c.elements(n)}
	case "object":
		return c.object(n)
	case "spread_element":
		return &ast.SpreadElement{Base: c.base(n), Argument: c.node(firstNamed(n))}

	// patterns
	case "object_pattern":
		return c.objectPattern(n)
	case "array_pattern":
		return &ast.ArrayPattern{Base: c.base(n), Elements: c.elements(n)}
	case "assignment_pattern":
		return &ast.AssignmentPattern{Base: c.base(n), Left: c.field(n, "left"), Right: c.field(n, "right")}
	case "rest_pattern":
		return &ast.RestElement{Base: c.base(n), Argument: c.node(firstNamed(n))}
	case "required_parameter", "optional_parameter":
		return c.parameter(n)

	// jsx
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return c.jsxElement(n)
	case "jsx_expression":
		return c.node(firstNamed(n))
	case "jsx_text":
		raw := c.text(n)
		return &ast.Literal{Base: c.base(n), Kind: ast.StringLiteral, Value: raw, Raw: raw}
	}

	return &ast.Unknown{Base: c.base(n), Kind: typ, Children: c.list(named(n))}
}

func (c *converter) identifier(n *sitter.Node) *ast.Identifier {
	return &ast.Identifier{Base: c.base(n), Name: c.text(n)}
}

func (c *converter) block(n *sitter.Node) *ast.BlockStatement {
	if n == nil {
		return nil
	}
	if n.Type() != "statement_block" {
		// Single-statement bodies are wrapped so callers always get a block.
		b := &ast.BlockStatement{Base: c.base(n)}
		if s := c.node(n); s != nil {
			b.Body = []ast.Node{s}
		}
		return b
	}
	return &ast.BlockStatement{Base: c.base(n), Body: c.list(named(n))}
}

func (c *converter) variableDeclaration(n *sitter.Node) *ast.VariableDeclaration {
	kind := "var"
	if k := n.ChildByFieldName("kind"); k != nil {
		kind = k.Type()
	} else if n.Type() == "lexical_declaration" && n.ChildCount() > 0 {
		kind = n.Child(0).Type()
	}
	decl := &ast.VariableDeclaration{Base: c.base(n), Kind: kind}
	for _, child := range named(n) {
		if child.Type() != "variable_declarator" {
			continue
		}
		decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{
			Base: c.base(child),
			ID:   c.field(child, "name"),
			Init: c.field(child, "value"),
		})
	}
	return decl
}

func (c *converter) forPart(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
		return c.node(n)
	case "expression_statement":
		return c.node(firstNamed(n))
	case "empty_statement", ";":
		return nil
	}
	return c.node(n)
}

func (c *converter) forIn(n *sitter.Node) ast.Node {
	left := c.field(n, "left")
	if kind := n.ChildByFieldName("kind"); kind != nil {
		lhs := n.ChildByFieldName("left")
		declarator := &ast.VariableDeclarator{Base: c.base(lhs), ID: left}
		left = &ast.VariableDeclaration{Base: c.base(lhs), Kind: kind.Type(), Declarations: []*ast.VariableDeclarator{declarator}}
	}
	right := c.field(n, "right")
	body := c.field(n, "body")
	if hasToken(n, "of") {
		return &ast.ForOfStatement{Base: c.base(n), Left: left, Right: right, Body: body, Await: hasToken(n, "await")}
	}
	return &ast.ForInStatement{Base: c.base(n), Left: left, Right: right, Body: body}
}

func (c *converter) switchStatement(n *sitter.Node) *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{Base: c.base(n), Discriminant: c.field(n, "value")}
	for _, child := range named(n.ChildByFieldName("body")) {
		sc := &ast.SwitchCase{Base: c.base(child)}
		value := child.ChildByFieldName("value")
		if child.Type() == "switch_case" && value != nil {
			sc.Test = c.node(value)
		} else if child.Type() != "switch_default" {
			continue
		}
		for _, s := range named(child) {
			if sameNode(s, value) {
				continue
			}
			if conv := c.node(s); conv != nil {
				sc.Consequent = append(sc.Consequent, conv)
			}
		}
		stmt.Cases = append(stmt.Cases, sc)
	}
	return stmt
}

func (c *converter) tryStatement(n *sitter.Node) *ast.TryStatement {
	stmt := &ast.TryStatement{Base: c.base(n), Block: c.block(n.ChildByFieldName("body"))}
	if h := n.ChildByFieldName("handler"); h != nil {
		stmt.Handler = &ast.CatchClause{
			Base:  c.base(h),
			Param: c.field(h, "parameter"),
			Body:  c.block(h.ChildByFieldName("body")),
		}
	}
	if f := n.ChildByFieldName("finalizer"); f != nil {
		stmt.Finalizer = c.block(f.ChildByFieldName("body"))
	}
	return stmt
}

func (c *converter) sequence(n *sitter.Node, acc []ast.Node) []ast.Node {
	for _, child := range named(n) {
		if child.Type() == "sequence_expression" {
			acc = c.sequence(child, acc)
			continue
		}
		if conv := c.node(child); conv != nil {
			acc = append(acc, conv)
		}
	}
	return acc
}

func (c *converter) binary(n *sitter.Node) ast.Node {
	op := ""
	if o := n.ChildByFieldName("operator"); o != nil {
		op = o.Type()
	}
	left, right := c.field(n, "left"), c.field(n, "right")
	switch op {
	case "&&", "||", "??":
		return &ast.LogicalExpression{Base: c.base(n), Operator: op, Left: left, Right: right}
	}
	return &ast.BinaryExpression{Base: c.base(n), Operator: op, Left: left, Right: right}
}

func (c *converter) member(n, prop *sitter.Node, computed bool) ast.Node {
	m := &ast.MemberExpression{
		Base:     c.base(n),
		Object:   c.field(n, "object"),
		Property: c.node(prop),
		Computed: computed,
		Optional: n.ChildByFieldName("optional_chain") != nil,
	}
	if m.Optional {
		return &ast.ChainExpression{Base: m.Base, Expression: m}
	}
	return m
}

func (c *converter) call(n *sitter.Node) ast.Node {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if args != nil && args.Type() == "template_string" {
		return &ast.TaggedTemplateExpression{Base: c.base(n), Tag: c.node(fn), Quasi: c.template(args)}
	}
	if fn != nil && fn.Type() == "import" {
		imp := &ast.ImportExpression{Base: c.base(n)}
		if list := c.arguments(args); len(list) > 0 {
			imp.Source = list[0]
		}
		return imp
	}
	call := &ast.CallExpression{
		Base:      c.base(n),
		Callee:    c.node(fn),
		Arguments: c.arguments(args),
		Optional:  n.ChildByFieldName("optional_chain") != nil,
	}
	if call.Optional {
		return &ast.ChainExpression{Base: call.Base, Expression: call}
	}
	return call
}

func (c *converter) arguments(n *sitter.Node) []ast.Node {
	return c.list(named(n))
}

// elements converts array literal or array pattern children, keeping holes
// as nil entries.
func (c *converter) elements(n *sitter.Node) []ast.Node {
	var out []ast.Node
	expect := true
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch {
		case child == nil, child.Type() == "[", child.Type() == "]", child.Type() == "comment":
			continue
		case child.Type() == ",":
			if expect {
				out = append(out, nil)
			}
			expect = true
		default:
			out = append(out, c.node(child))
			expect = false
		}
	}
	return out
}

// propertyKey converts an object or class member key.
func (c *converter) propertyKey(n *sitter.Node) (ast.Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.Type() == "computed_property_name" {
		return c.node(firstNamed(n)), true
	}
	return c.node(n), false
}

func (c *converter) object(n *sitter.Node) *ast.ObjectExpression {
	obj := &ast.ObjectExpression{Base: c.base(n)}
	for _, child := range named(n) {
		switch child.Type() {
		case "pair":
			key, computed := c.propertyKey(child.ChildByFieldName("key"))
			obj.Properties = append(obj.Properties, &ast.Property{
				Base:     c.base(child),
				Key:      key,
				Value:    c.field(child, "value"),
				Computed: computed,
				Kind:     "init",
			})
		case "shorthand_property_identifier":
			id := c.identifier(child)
			obj.Properties = append(obj.Properties, &ast.Property{Base: c.base(child), Key: id, Value: id, Shorthand: true, Kind: "init"})
		case "method_definition":
			key, computed := c.propertyKey(child.ChildByFieldName("name"))
			kind := "init"
			if hasToken(child, "get") {
				kind = "get"
			} else if hasToken(child, "set") {
				kind = "set"
			}
			obj.Properties = append(obj.Properties, &ast.Property{
				Base:     c.base(child),
				Key:      key,
				Value:    c.function(child),
				Computed: computed,
				Method:   kind == "init",
				Kind:     kind,
			})
		case "spread_element":
			obj.Properties = append(obj.Properties, c.node(child))
		}
	}
	return obj
}

func (c *converter) objectPattern(n *sitter.Node) *ast.ObjectPattern {
	pat := &ast.ObjectPattern{Base: c.base(n)}
	for _, child := range named(n) {
		switch child.Type() {
		case "pair_pattern":
			key, computed := c.propertyKey(child.ChildByFieldName("key"))
			pat.Properties = append(pat.Properties, &ast.Property{
				Base:     c.base(child),
				Key:      key,
				Value:    c.field(child, "value"),
				Computed: computed,
				Kind:     "init",
			})
		case "shorthand_property_identifier_pattern":
			id := c.identifier(child)
			pat.Properties = append(pat.Properties, &ast.Property{Base: c.base(child), Key: id, Value: id, Shorthand: true, Kind: "init"})
		case "object_assignment_pattern":
			left := child.ChildByFieldName("left")
			right := c.field(child, "right")
			if left != nil && left.Type() == "shorthand_property_identifier_pattern" {
				id := c.identifier(left)
				def := &ast.AssignmentPattern{Base: c.base(child), Left: id, Right: right}
				pat.Properties = append(pat.Properties, &ast.Property{Base: c.base(child), Key: id, Value: def, Shorthand: true, Kind: "init"})
				continue
			}
			pat.Properties = append(pat.Properties, &ast.AssignmentPattern{Base: c.base(child), Left: c.node(left), Right: right})
		case "rest_pattern":
			pat.Properties = append(pat.Properties, c.node(child))
		}
	}
	return pat
}

func (c *converter) parameter(n *sitter.Node) ast.Node {
	pattern := n.ChildByFieldName("pattern")
	if pattern == nil || pattern.Type() == "this" {
		return nil
	}
	p := c.node(pattern)
	if value := n.ChildByFieldName("value"); value != nil {
		return &ast.AssignmentPattern{Base: c.base(n), Left: p, Right: c.node(value)}
	}
	return p
}

func (c *converter) params(n *sitter.Node) []ast.Node {
	if n == nil {
		return nil
	}
	if n.Type() != "formal_parameters" {
		// Single unparenthesized arrow parameter.
		return []ast.Node{c.node(n)}
	}
	return c.list(named(n))
}

// function converts any function-like node (declaration, expression or
// method) to a FunctionExpression.
func (c *converter) function(n *sitter.Node) *ast.FunctionExpression {
	fn := &ast.FunctionExpression{
		Base:      c.base(n),
		Params:    c.params(n.ChildByFieldName("parameters")),
		Body:      c.block(n.ChildByFieldName("body")),
		Async:     hasToken(n, "async"),
		Generator: hasToken(n, "*") || n.Type() == "generator_function" || n.Type() == "generator_function_declaration",
	}
	if name := n.ChildByFieldName("name"); name != nil && n.Type() != "method_definition" {
		fn.ID = c.identifier(name)
	}
	return fn
}

func (c *converter) arrow(n *sitter.Node) *ast.ArrowFunctionExpression {
	fn := &ast.ArrowFunctionExpression{Base: c.base(n), Async: hasToken(n, "async")}
	if p := n.ChildByFieldName("parameter"); p != nil {
		fn.Params = []ast.Node{c.node(p)}
	} else {
		fn.Params = c.params(n.ChildByFieldName("parameters"))
	}
	body := n.ChildByFieldName("body")
	if body != nil && body.Type() == "statement_block" {
		fn.Body = c.block(body)
	} else {
		fn.Body = c.node(body)
		fn.Expression = true
	}
	return fn
}

func (c *converter) class(n *sitter.Node) (*ast.Identifier, ast.Node, *ast.ClassBody) {
	var id *ast.Identifier
	if name := n.ChildByFieldName("name"); name != nil {
		id = c.identifier(name)
	}

	var super ast.Node
	for _, child := range named(n) {
		if child.Type() != "class_heritage" {
			continue
		}
		h := firstNamed(child)
		switch {
		case h == nil:
		case h.Type() == "extends_clause":
			if v := h.ChildByFieldName("value"); v != nil {
				super = c.node(v)
			} else {
				super = c.node(firstNamed(h))
			}
		case h.Type() == "implements_clause":
		default:
			super = c.node(h)
		}
	}

	var body *ast.ClassBody
	if b := n.ChildByFieldName("body"); b != nil {
		body = &ast.ClassBody{Base: c.base(b)}
		for _, m := range named(b) {
			if member := c.classMember(m); member != nil {
				body.Body = append(body.Body, member)
			}
		}
	}
	return id, super, body
}

func (c *converter) classMember(n *sitter.Node) ast.Node {
	switch n.Type() {
	case "method_definition":
		key, computed := c.propertyKey(n.ChildByFieldName("name"))
		kind := "method"
		switch {
		case hasToken(n, "get"):
			kind = "get"
		case hasToken(n, "set"):
			kind = "set"
		default:
			if name, ok := ast.Name(key); ok && name == "constructor" && !computed {
				kind = "constructor"
			}
		}
		return &ast.MethodDefinition{
			Base:     c.base(n),
			Key:      key,
			Value:    c.function(n),
			Kind:     kind,
			Computed: computed,
			Static:   hasToken(n, "static"),
		}
	case "field_definition", "public_field_definition":
		keyNode := n.ChildByFieldName("property")
		if keyNode == nil {
			keyNode = n.ChildByFieldName("name")
		}
		key, computed := c.propertyKey(keyNode)
		if key == nil {
			return nil
		}
		return &ast.PropertyDefinition{
			Base:     c.base(n),
			Key:      key,
			Value:    c.field(n, "value"),
			Computed: computed,
			Static:   hasToken(n, "static"),
		}
	}
	return nil
}

func (c *converter) importStatement(n *sitter.Node) *ast.ImportDeclaration {
	decl := &ast.ImportDeclaration{Base: c.base(n)}
	if src := n.ChildByFieldName("source"); src != nil {
		decl.Source = c.stringLiteral(src)
	}
	for _, child := range named(n) {
		if child.Type() != "import_clause" {
			continue
		}
		for _, part := range named(child) {
			switch part.Type() {
			case "identifier":
				decl.Specifiers = append(decl.Specifiers, &ast.ImportDefaultSpecifier{Base: c.base(part), Local: c.identifier(part)})
			case "namespace_import":
				if id := firstNamed(part); id != nil {
					decl.Specifiers = append(decl.Specifiers, &ast.ImportNamespaceSpecifier{Base: c.base(part), Local: c.identifier(id)})
				}
			case "named_imports":
				for _, spec := range named(part) {
					if spec.Type() != "import_specifier" {
						continue
					}
					decl.Specifiers = append(decl.Specifiers, c.importSpecifier(spec))
				}
			}
		}
	}
	return decl
}

func (c *converter) importSpecifier(n *sitter.Node) *ast.ImportSpecifier {
	spec := &ast.ImportSpecifier{Base: c.base(n)}
	name := n.ChildByFieldName("name")
	alias := n.ChildByFieldName("alias")
	if name != nil {
		spec.Imported = c.node(name)
	}
	if alias != nil {
		spec.Local = c.identifier(alias)
	} else if id, ok := spec.Imported.(*ast.Identifier); ok {
		spec.Local = id
	}
	return spec
}

func (c *converter) exportStatement(n *sitter.Node) ast.Node {
	isDefault := hasToken(n, "default")
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		if isDefault {
			return &ast.ExportDefaultDeclaration{Base: c.base(n), Declaration: c.node(decl)}
		}
		return &ast.ExportNamedDeclaration{Base: c.base(n), Declaration: c.node(decl)}
	}
	if value := n.ChildByFieldName("value"); value != nil {
		return &ast.ExportDefaultDeclaration{Base: c.base(n), Declaration: c.node(value)}
	}

	var source *ast.Literal
	if src := n.ChildByFieldName("source"); src != nil {
		source = c.stringLiteral(src)
	}

	out := &ast.ExportNamedDeclaration{Base: c.base(n), Source: source}
	for _, child := range named(n) {
		switch child.Type() {
		case "export_clause":
			for _, spec := range named(child) {
				if spec.Type() != "export_specifier" {
					continue
				}
				es := &ast.ExportSpecifier{Base: c.base(spec), Local: c.field(spec, "name")}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					es.Exported = c.node(alias)
				} else {
					es.Exported = es.Local
				}
				out.Specifiers = append(out.Specifiers, es)
			}
		case "namespace_export":
			return &ast.ExportAllDeclaration{Base: c.base(n), Exported: c.node(firstNamed(child)), Source: source}
		}
	}
	if hasToken(n, "*") {
		return &ast.ExportAllDeclaration{Base: c.base(n), Source: source}
	}
	return out
}

func (c *converter) jsxElement(n *sitter.Node) *ast.JSXElement {
	el := &ast.JSXElement{Base: c.base(n)}
	opening := n
	if n.Type() == "jsx_element" {
		opening = n.ChildByFieldName("open_tag")
		if opening == nil {
			opening = firstNamed(n)
		}
	}
	if opening != nil && opening.Type() != "jsx_fragment" {
		if name := opening.ChildByFieldName("name"); name != nil {
			el.Name = c.text(name)
		}
		for _, attr := range named(opening) {
			switch attr.Type() {
			case "jsx_attribute":
				kids := named(attr)
				if len(kids) == 0 {
					continue
				}
				a := &ast.JSXAttribute{Base: c.base(attr), Name: c.text(kids[0])}
				if len(kids) > 1 {
					a.Value = c.node(kids[1])
				}
				el.Attributes = append(el.Attributes, a)
			case "jsx_expression":
				if conv := c.node(attr); conv != nil {
					el.Attributes = append(el.Attributes, conv)
				}
			}
		}
	}
	if n.Type() == "jsx_self_closing_element" {
		return el
	}
	for _, child := range named(n) {
		switch child.Type() {
		case "jsx_opening_element", "jsx_closing_element":
			continue
		}
		if conv := c.node(child); conv != nil {
			el.Children = append(el.Children, conv)
		}
	}
	return el
}
