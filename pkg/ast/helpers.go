package ast

// IsFunction reports whether n is a function declaration or expression.
func IsFunction(n Node) bool {
	switch n.(type) {
	case *FunctionDeclaration, *FunctionExpression, *ArrowFunctionExpression:
		return true
	}
	return false
}

// IsClass reports whether n is a class declaration or expression.
func IsClass(n Node) bool {
	switch n.(type) {
	case *ClassDeclaration, *ClassExpression:
		return true
	}
	return false
}

// FunctionParams returns the parameter patterns of a function node.
func FunctionParams(n Node) []Node {
	switch f := n.(type) {
	case *FunctionDeclaration:
		return f.Params
	case *FunctionExpression:
		return f.Params
	case *ArrowFunctionExpression:
		return f.Params
	}
	return nil
}

// FunctionBody returns the body of a function node: a *BlockStatement, or an
// expression for concise arrow functions.
func FunctionBody(n Node) Node {
	switch f := n.(type) {
	case *FunctionDeclaration:
		if f.Body != nil {
			return f.Body
		}
	case *FunctionExpression:
		if f.Body != nil {
			return f.Body
		}
	case *ArrowFunctionExpression:
		return f.Body
	}
	return nil
}

// ClassParts returns the superclass and body of a class node.
func ClassParts(n Node) (super Node, body *ClassBody) {
	switch c := n.(type) {
	case *ClassDeclaration:
		return c.SuperClass, c.Body
	case *ClassExpression:
		return c.SuperClass, c.Body
	}
	return nil, nil
}

// Name returns the identifier name or string literal value of n.
func Name(n Node) (string, bool) {
	switch x := n.(type) {
	case *Identifier:
		return x.Name, true
	case *Literal:
		return x.Value, true
	}
	return "", false
}

// KeyName returns the static name of a property key. Computed keys only have
// a static name when they are literals.
func KeyName(key Node, computed bool) (string, bool) {
	if computed {
		if lit, ok := key.(*Literal); ok {
			return lit.Value, true
		}
		if tpl, ok := key.(*TemplateLiteral); ok && len(tpl.Expressions) == 0 && len(tpl.Quasis) == 1 {
			return tpl.Quasis[0].Value, true
		}
		return "", false
	}
	return Name(key)
}

// StringValue returns the value of a string literal or of a template literal
// without substitutions.
func StringValue(n Node) (string, bool) {
	switch x := n.(type) {
	case *Literal:
		if x.Kind == StringLiteral {
			return x.Value, true
		}
	case *TemplateLiteral:
		if len(x.Expressions) == 0 && len(x.Quasis) == 1 {
			return x.Quasis[0].Value, true
		}
	}
	return "", false
}

// Enclosing walks up from the parent of n and returns the first ancestor
// matching pred, or nil.
func Enclosing(n Node, pred func(Node) bool) Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if pred(p) {
			return p
		}
	}
	return nil
}

// EnclosingFunction returns the nearest function containing n.
func EnclosingFunction(n Node) Node {
	return Enclosing(n, IsFunction)
}

// IsAncestor reports whether anc is n or one of its ancestors.
func IsAncestor(anc, n Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == anc {
			return true
		}
	}
	return false
}

// CalleeName returns the dotted name of a callee such as `a.b.c`, or "" when
// the callee is not a chain of identifiers and static property names.
func CalleeName(n Node) string {
	switch x := n.(type) {
	case *Identifier:
		return x.Name
	case *ChainExpression:
		return CalleeName(x.Expression)
	case *ThisExpression:
		return "this"
	case *MemberExpression:
		prop, ok := KeyName(x.Property, x.Computed)
		if !ok {
			return ""
		}
		obj := CalleeName(x.Object)
		if obj == "" {
			return ""
		}
		return obj + "." + prop
	}
	return ""
}
