package ast

// Children returns the direct child nodes of n in source order. Absent
// optional children and array holes are skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch x := n.(type) {
	case *Program:
		add(x.Body...)
	case *Unknown:
		add(x.Children...)
	case *Identifier, *Literal, *TemplateElement, *ThisExpression, *Super, *EmptyStatement:
	case *TemplateLiteral:
		// Quasis and expressions interleave in source order.
		for i, q := range x.Quasis {
			add(q)
			if i < len(x.Expressions) {
				add(x.Expressions[i])
			}
		}
	case *TaggedTemplateExpression:
		add(x.Tag)
		if x.Quasi != nil {
			add(x.Quasi)
		}
	case *MemberExpression:
		add(x.Object, x.Property)
	case *CallExpression:
		add(x.Callee)
		add(x.Arguments...)
	case *NewExpression:
		add(x.Callee)
		add(x.Arguments...)
	case *ImportExpression:
		add(x.Source)
	case *ArrayExpression:
		add(x.Elements...)
	case *ObjectExpression:
		add(x.Properties...)
	case *Property:
		if x.Shorthand {
			add(x.Value)
		} else {
			add(x.Key, x.Value)
		}
	case *SpreadElement:
		add(x.Argument)
	case *AssignmentExpression:
		add(x.Left, x.Right)
	case *AwaitExpression:
		add(x.Argument)
	case *YieldExpression:
		add(x.Argument)
	case *TSAsExpression:
		add(x.Expression)
	case *TSNonNullExpression:
		add(x.Expression)
	case *ChainExpression:
		add(x.Expression)
	case *SequenceExpression:
		add(x.Expressions...)
	case *BinaryExpression:
		add(x.Left, x.Right)
	case *LogicalExpression:
		add(x.Left, x.Right)
	case *ConditionalExpression:
		add(x.Test, x.Consequent, x.Alternate)
	case *UnaryExpression:
		add(x.Argument)
	case *UpdateExpression:
		add(x.Argument)
	case *ArrowFunctionExpression:
		add(x.Params...)
		add(x.Body)
	case *FunctionExpression:
		if x.ID != nil {
			add(x.ID)
		}
		add(x.Params...)
		if x.Body != nil {
			add(x.Body)
		}
	case *FunctionDeclaration:
		if x.ID != nil {
			add(x.ID)
		}
		add(x.Params...)
		if x.Body != nil {
			add(x.Body)
		}
	case *ClassDeclaration:
		if x.ID != nil {
			add(x.ID)
		}
		add(x.SuperClass)
		if x.Body != nil {
			add(x.Body)
		}
	case *ClassExpression:
		if x.ID != nil {
			add(x.ID)
		}
		add(x.SuperClass)
		if x.Body != nil {
			add(x.Body)
		}
	case *ClassBody:
		add(x.Body...)
	case *MethodDefinition:
		add(x.Key)
		if x.Value != nil {
			add(x.Value)
		}
	case *PropertyDefinition:
		add(x.Key, x.Value)
	case *VariableDeclaration:
		for _, d := range x.Declarations {
			add(d)
		}
	case *VariableDeclarator:
		add(x.ID, x.Init)
	case *ObjectPattern:
		add(x.Properties...)
	case *ArrayPattern:
		add(x.Elements...)
	case *AssignmentPattern:
		add(x.Left, x.Right)
	case *RestElement:
		add(x.Argument)
	case *BlockStatement:
		add(x.Body...)
	case *ExpressionStatement:
		add(x.Expression)
	case *ReturnStatement:
		add(x.Argument)
	case *IfStatement:
		add(x.Test, x.Consequent, x.Alternate)
	case *ForStatement:
		add(x.Init, x.Test, x.Update, x.Body)
	case *ForInStatement:
		add(x.Left, x.Right, x.Body)
	case *ForOfStatement:
		add(x.Left, x.Right, x.Body)
	case *WhileStatement:
		add(x.Test, x.Body)
	case *DoWhileStatement:
		add(x.Body, x.Test)
	case *SwitchStatement:
		add(x.Discriminant)
		for _, c := range x.Cases {
			add(c)
		}
	case *SwitchCase:
		add(x.Test)
		add(x.Consequent...)
	case *TryStatement:
		if x.Block != nil {
			add(x.Block)
		}
		if x.Handler != nil {
			add(x.Handler)
		}
		if x.Finalizer != nil {
			add(x.Finalizer)
		}
	case *CatchClause:
		add(x.Param)
		if x.Body != nil {
			add(x.Body)
		}
	case *LabeledStatement:
		if x.Label != nil {
			add(x.Label)
		}
		add(x.Body)
	case *ThrowStatement:
		add(x.Argument)
	case *BreakStatement:
		if x.Label != nil {
			add(x.Label)
		}
	case *ContinueStatement:
		if x.Label != nil {
			add(x.Label)
		}
	case *ImportDeclaration:
		add(x.Specifiers...)
		if x.Source != nil {
			add(x.Source)
		}
	case *ImportSpecifier:
		add(x.Imported)
		if x.Local != nil && x.Local != x.Imported {
			add(x.Local)
		}
	case *ImportDefaultSpecifier:
		if x.Local != nil {
			add(x.Local)
		}
	case *ImportNamespaceSpecifier:
		if x.Local != nil {
			add(x.Local)
		}
	case *ExportNamedDeclaration:
		add(x.Declaration)
		for _, s := range x.Specifiers {
			add(s)
		}
		if x.Source != nil {
			add(x.Source)
		}
	case *ExportSpecifier:
		add(x.Local)
		if x.Exported != x.Local {
			add(x.Exported)
		}
	case *ExportDefaultDeclaration:
		add(x.Declaration)
	case *ExportAllDeclaration:
		add(x.Exported)
		if x.Source != nil {
			add(x.Source)
		}
	case *JSXElement:
		add(x.Attributes...)
		add(x.Children...)
	case *JSXAttribute:
		add(x.Value)
	}
	return out
}

// Inspect traverses the tree rooted at n in depth-first order. If f returns
// false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil {
		return
	}
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f(cur) {
			continue
		}
		children := Children(cur)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// LinkParents sets the parent pointer of every node below root.
func LinkParents(root Node) {
	Inspect(root, func(n Node) bool {
		for _, c := range Children(n) {
			c.base().parent = n
		}
		return true
	})
}

// SetParent attaches n below parent. Used when building synthetic trees.
func SetParent(n, parent Node) {
	if n != nil {
		n.base().parent = parent
	}
}

// Find returns the innermost node whose range contains pos.
func Find(root Node, pos Position) Node {
	var found Node
	Inspect(root, func(n Node) bool {
		if !n.Pos().Contains(pos) {
			return false
		}
		found = n
		return true
	})
	return found
}
