package rules

import (
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/traces"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

// tainted reports whether the value at the end of t may come from outside
// the program. Literals are trusted, and so are branches cut by a cycle
// since the other branches of the cycle are traced anyway.
func tainted(t traces.Trace) bool {
	switch n := t.Last().(type) {
	case nil:
		return false
	case *tracer.ConstantNode:
		return false
	case *tracer.UnresolvedNode:
		return n.Reason != tracer.ReasonCycle
	case *tracer.ASTNode:
		return !ast.IsFunction(n.Expr()) && !ast.IsClass(n.Expr())
	}
	return true
}

// calls returns every call in the module whose callee ends in one of
// methods, such as `fs.readFile` for "readFile".
func calls(root ast.Node, methods ...string) []*ast.CallExpression {
	var out []*ast.CallExpression
	ast.Inspect(root, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return true
		}
		if m, ok := methodName(call.Callee); ok && contains(methods, m) {
			out = append(out, call)
		}
		return true
	})
	return out
}

// methodName returns the last name of a callee: the identifier of a plain
// call or the static property of a member call.
func methodName(callee ast.Node) (string, bool) {
	switch x := callee.(type) {
	case *ast.Identifier:
		return x.Name, true
	case *ast.ChainExpression:
		return methodName(x.Expression)
	case *ast.MemberExpression:
		return ast.KeyName(x.Property, x.Computed)
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// arg returns the i-th argument of call, skipping spread arguments.
func arg(call *ast.CallExpression, i int) (ast.Node, bool) {
	if i >= len(call.Arguments) {
		return nil, false
	}
	a := call.Arguments[i]
	if _, ok := a.(*ast.SpreadElement); ok {
		return nil, false
	}
	return a, true
}

// code returns the source text of n, cut at the first line break.
func code(src []byte, n ast.Node) string {
	r := n.Pos()
	if int(r.EndByte) > len(src) || r.StartByte > r.EndByte {
		return ""
	}
	text := string(src[r.StartByte:r.EndByte])
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " ..."
	}
	return text
}
