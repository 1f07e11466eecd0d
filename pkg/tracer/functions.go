package tracer

import (
	"github.com/l3aro/go-taint-trace/pkg/ast"
)

// function handles a function reached as a value. With a call pending at
// this member path the function is entered: its parameters are bound to the
// call arguments and its return values are classified. Otherwise the
// function object itself is the value.
func (r *run) function(c Context, fn ast.Node) []Node {
	if !c.meta.callApplies() {
		return one(r.astNode(c, fn))
	}
	if c.meta.depth >= r.t.opts.MaxCallDepth {
		return one(r.unresolved(c, fn, ReasonCallDepth))
	}
	call, meta := c.meta.enterCall()
	c = c.withMeta(meta)
	if call != nil {
		r.params[fn] = call
	}

	body := ast.FunctionBody(fn)
	block, ok := body.(*ast.BlockStatement)
	if !ok {
		if body == nil {
			return one(r.constant(c, fn, "undefined"))
		}
		return r.classify(c, body)
	}

	if isGenerator(fn) {
		// Iterating a generator yields its values one element at a time.
		if key, ok := c.meta.top(); ok && isIndex(key) {
			_, m := c.meta.pop()
			c = c.withMeta(m)
		}
	}

	var rc returnCollector
	rc.stmts(block.Body)
	if len(rc.values) == 0 {
		return one(r.constant(c, fn, "undefined"))
	}
	var out []Node
	for _, v := range rc.values {
		switch x := v.(type) {
		case *ast.ReturnStatement:
			if x.Argument == nil {
				out = append(out, r.constant(c.with(x), x, "undefined"))
				continue
			}
			out = append(out, r.classify(c.with(x), x.Argument)...)
		default:
			out = append(out, r.classify(c, x)...)
		}
	}
	return out
}

func isGenerator(fn ast.Node) bool {
	switch f := fn.(type) {
	case *ast.FunctionDeclaration:
		return f.Generator
	case *ast.FunctionExpression:
		return f.Generator
	}
	return false
}

// returnCollector gathers the return statements and yield expressions of a
// function body in source order, skipping code after statements that always
// leave the current block.
type returnCollector struct {
	values []ast.Node
}

// stmts reports whether the statement list always leaves its block.
func (rc *returnCollector) stmts(list []ast.Node) bool {
	for _, s := range list {
		if rc.stmt(s) {
			return true
		}
	}
	return false
}

func (rc *returnCollector) stmt(s ast.Node) bool {
	switch x := s.(type) {
	case *ast.ReturnStatement:
		rc.yields(x.Argument)
		rc.values = append(rc.values, x)
		return true
	case *ast.ThrowStatement:
		rc.yields(x.Argument)
		return true
	case *ast.BreakStatement, *ast.ContinueStatement:
		return true
	case *ast.BlockStatement:
		return rc.stmts(x.Body)
	case *ast.IfStatement:
		rc.yields(x.Test)
		then := rc.stmt(x.Consequent)
		if x.Alternate == nil {
			return false
		}
		return rc.stmt(x.Alternate) && then
	case *ast.ForStatement:
		rc.yields(x.Init)
		rc.yields(x.Test)
		rc.yields(x.Update)
		rc.stmt(x.Body)
	case *ast.ForInStatement:
		rc.yields(x.Right)
		rc.stmt(x.Body)
	case *ast.ForOfStatement:
		rc.yields(x.Right)
		rc.stmt(x.Body)
	case *ast.WhileStatement:
		rc.yields(x.Test)
		rc.stmt(x.Body)
	case *ast.DoWhileStatement:
		rc.stmt(x.Body)
		rc.yields(x.Test)
	case *ast.SwitchStatement:
		rc.yields(x.Discriminant)
		for _, sc := range x.Cases {
			rc.stmts(sc.Consequent)
		}
	case *ast.TryStatement:
		var tried, caught bool
		if x.Block != nil {
			tried = rc.stmt(x.Block)
		}
		caught = true
		if x.Handler != nil && x.Handler.Body != nil {
			caught = rc.stmt(x.Handler.Body)
		}
		if x.Finalizer != nil && rc.stmt(x.Finalizer) {
			return true
		}
		return tried && caught
	case *ast.LabeledStatement:
		// A labeled break lands after the statement.
		rc.stmt(x.Body)
	case *ast.ExpressionStatement:
		rc.yields(x.Expression)
	case *ast.VariableDeclaration:
		for _, d := range x.Declarations {
			rc.yields(d.Init)
		}
	}
	return false
}

// yields collects the yield expressions in n outside nested functions.
func (rc *returnCollector) yields(n ast.Node) {
	ast.Inspect(n, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FunctionExpression, *ast.FunctionDeclaration, *ast.ArrowFunctionExpression,
			*ast.ClassDeclaration, *ast.ClassExpression:
			return false
		case *ast.YieldExpression:
			rc.values = append(rc.values, n)
		}
		return true
	})
}
