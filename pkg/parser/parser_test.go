package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

func parse(t *testing.T, path, src string) *ast.Program {
	t.Helper()
	prog, err := New().Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func firstDeclarator(t *testing.T, prog *ast.Program, idx int) *ast.VariableDeclarator {
	t.Helper()
	require.Greater(t, len(prog.Body), idx)
	decl, ok := prog.Body[idx].(*ast.VariableDeclaration)
	require.True(t, ok, "statement %d is %s", idx, ast.Type(prog.Body[idx]))
	require.NotEmpty(t, decl.Declarations)
	return decl.Declarations[0]
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		path string
		want Dialect
		ok   bool
	}{
		{"a.js", JavaScript, true},
		{"a.mjs", JavaScript, true},
		{"a.jsx", JavaScript, true},
		{"a.ts", TypeScript, true},
		{"a.cts", TypeScript, true},
		{"a.tsx", TSX, true},
		{"a.go", JavaScript, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DialectFor(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParse_Unsupported(t *testing.T) {
	_, err := New().Parse(context.Background(), "main.py", []byte("x = 1"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParse_VariableDeclarations(t *testing.T) {
	prog := parse(t, "a.js", `const a = "x"; let b = 'y\n'; var c = 0x10;`)
	require.Len(t, prog.Body, 3)

	d := firstDeclarator(t, prog, 0)
	assert.Equal(t, "const", prog.Body[0].(*ast.VariableDeclaration).Kind)
	id := d.ID.(*ast.Identifier)
	assert.Equal(t, "a", id.Name)
	lit := d.Init.(*ast.Literal)
	assert.Equal(t, ast.StringLiteral, lit.Kind)
	assert.Equal(t, "x", lit.Value)
	assert.Equal(t, prog.Body[0], d.Parent())

	assert.Equal(t, "y\n", firstDeclarator(t, prog, 1).Init.(*ast.Literal).Value)
	assert.Equal(t, "var", prog.Body[2].(*ast.VariableDeclaration).Kind)
	assert.Equal(t, "16", firstDeclarator(t, prog, 2).Init.(*ast.Literal).Value)
}

func TestParse_Positions(t *testing.T) {
	prog := parse(t, "a.js", "const a = 1;\nconst b = a;")
	d := firstDeclarator(t, prog, 1)
	ref := d.Init.(*ast.Identifier)
	assert.Equal(t, ast.Position{Line: 2, Column: 11}, ref.Pos().Start)
	assert.Equal(t, ast.Node(ref), ast.Find(prog, ast.Position{Line: 2, Column: 11}))
}

func TestParse_MemberAndCall(t *testing.T) {
	prog := parse(t, "a.js", `const v = a.b["c"](d, ...e);`)
	call := firstDeclarator(t, prog, 0).Init.(*ast.CallExpression)
	require.Len(t, call.Arguments, 2)
	assert.IsType(t, &ast.SpreadElement{}, call.Arguments[1])

	outer := call.Callee.(*ast.MemberExpression)
	assert.True(t, outer.Computed)
	assert.Equal(t, "c", outer.Property.(*ast.Literal).Value)

	inner := outer.Object.(*ast.MemberExpression)
	assert.False(t, inner.Computed)
	assert.Equal(t, "b", inner.Property.(*ast.Identifier).Name)
	assert.Equal(t, "a.b.c", ast.CalleeName(outer))
}

func TestParse_OptionalChain(t *testing.T) {
	prog := parse(t, "a.js", `const v = a?.b;`)
	chain, ok := firstDeclarator(t, prog, 0).Init.(*ast.ChainExpression)
	require.True(t, ok)
	m := chain.Expression.(*ast.MemberExpression)
	assert.True(t, m.Optional)
}

func TestParse_LogicalAndBinary(t *testing.T) {
	prog := parse(t, "a.js", `const v = (a || b) + c;`)
	bin := firstDeclarator(t, prog, 0).Init.(*ast.BinaryExpression)
	assert.Equal(t, "+", bin.Operator)
	logical := bin.Left.(*ast.LogicalExpression)
	assert.Equal(t, "||", logical.Operator)
}

func TestParse_Template(t *testing.T) {
	prog := parse(t, "a.js", "const v = `a${b}c${d}`;")
	tpl := firstDeclarator(t, prog, 0).Init.(*ast.TemplateLiteral)
	require.Len(t, tpl.Quasis, 3)
	require.Len(t, tpl.Expressions, 2)
	assert.Equal(t, "a", tpl.Quasis[0].Value)
	assert.Equal(t, "c", tpl.Quasis[1].Value)
	assert.Equal(t, "", tpl.Quasis[2].Value)
	assert.Equal(t, "b", tpl.Expressions[0].(*ast.Identifier).Name)
}

func TestParse_ArrayHoles(t *testing.T) {
	prog := parse(t, "a.js", `const v = [, a, , b];`)
	arr := firstDeclarator(t, prog, 0).Init.(*ast.ArrayExpression)
	require.Len(t, arr.Elements, 4)
	assert.Nil(t, arr.Elements[0])
	assert.NotNil(t, arr.Elements[1])
	assert.Nil(t, arr.Elements[2])
	assert.NotNil(t, arr.Elements[3])
}

func TestParse_ObjectLiteral(t *testing.T) {
	prog := parse(t, "a.js", `const o = { p: 1, "q": 2, [k]: 3, s, m() { return 1 }, ...r };`)
	obj := firstDeclarator(t, prog, 0).Init.(*ast.ObjectExpression)
	require.Len(t, obj.Properties, 6)

	p := obj.Properties[0].(*ast.Property)
	name, ok := ast.KeyName(p.Key, p.Computed)
	assert.True(t, ok)
	assert.Equal(t, "p", name)

	q := obj.Properties[1].(*ast.Property)
	assert.Equal(t, "q", q.Key.(*ast.Literal).Value)

	assert.True(t, obj.Properties[2].(*ast.Property).Computed)
	assert.True(t, obj.Properties[3].(*ast.Property).Shorthand)
	m := obj.Properties[4].(*ast.Property)
	assert.True(t, m.Method)
	assert.IsType(t, &ast.FunctionExpression{}, m.Value)
	assert.IsType(t, &ast.SpreadElement{}, obj.Properties[5])
}

func TestParse_Destructuring(t *testing.T) {
	prog := parse(t, "a.js", `const { a, b: { c }, d = 1, ...rest } = o; const [x, , y] = arr;`)
	pat := firstDeclarator(t, prog, 0).ID.(*ast.ObjectPattern)
	require.Len(t, pat.Properties, 4)
	assert.True(t, pat.Properties[0].(*ast.Property).Shorthand)
	assert.IsType(t, &ast.ObjectPattern{}, pat.Properties[1].(*ast.Property).Value)
	assert.IsType(t, &ast.AssignmentPattern{}, pat.Properties[2].(*ast.Property).Value)
	assert.IsType(t, &ast.RestElement{}, pat.Properties[3])

	arr := firstDeclarator(t, prog, 1).ID.(*ast.ArrayPattern)
	require.Len(t, arr.Elements, 3)
	assert.Nil(t, arr.Elements[1])
}

func TestParse_Functions(t *testing.T) {
	prog := parse(t, "a.js", `function f(a, b = 1, ...c) { return a; }
const g = async x => x;
const h = function named() {};`)

	fn := prog.Body[0].(*ast.FunctionDeclaration)
	assert.Equal(t, "f", fn.ID.Name)
	require.Len(t, fn.Params, 3)
	assert.IsType(t, &ast.AssignmentPattern{}, fn.Params[1])
	assert.IsType(t, &ast.RestElement{}, fn.Params[2])
	assert.IsType(t, &ast.ReturnStatement{}, fn.Body.Body[0])

	arrow := firstDeclarator(t, prog, 1).Init.(*ast.ArrowFunctionExpression)
	assert.True(t, arrow.Expression)
	assert.True(t, arrow.Async)
	require.Len(t, arrow.Params, 1)

	expr := firstDeclarator(t, prog, 2).Init.(*ast.FunctionExpression)
	require.NotNil(t, expr.ID)
	assert.Equal(t, "named", expr.ID.Name)
}

func TestParse_Class(t *testing.T) {
	prog := parse(t, "a.js", `class A extends B {
  field = "f";
  constructor(x) { super(); this.x = x; }
  get value() { return this.x; }
  static make() { return new A(1); }
}`)
	cls := prog.Body[0].(*ast.ClassDeclaration)
	assert.Equal(t, "A", cls.ID.Name)
	assert.Equal(t, "B", cls.SuperClass.(*ast.Identifier).Name)
	require.Len(t, cls.Body.Body, 4)

	field := cls.Body.Body[0].(*ast.PropertyDefinition)
	assert.Equal(t, "f", field.Value.(*ast.Literal).Value)
	assert.Equal(t, "constructor", cls.Body.Body[1].(*ast.MethodDefinition).Kind)
	assert.Equal(t, "get", cls.Body.Body[2].(*ast.MethodDefinition).Kind)
	assert.True(t, cls.Body.Body[3].(*ast.MethodDefinition).Static)
}

func TestParse_TypeScriptClassHeritage(t *testing.T) {
	prog := parse(t, "a.ts", `class A extends B implements C { private name: string = "n"; }`)
	cls := prog.Body[0].(*ast.ClassDeclaration)
	assert.Equal(t, "B", cls.SuperClass.(*ast.Identifier).Name)
	require.Len(t, cls.Body.Body, 1)
	assert.IsType(t, &ast.PropertyDefinition{}, cls.Body.Body[0])
}

func TestParse_TypeScriptExpressions(t *testing.T) {
	prog := parse(t, "a.ts", `function f(a: string, b: number = 2): void {}
const v = x as string;
const w = y!;`)
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].(*ast.Identifier).Name)
	assert.IsType(t, &ast.AssignmentPattern{}, fn.Params[1])

	assert.IsType(t, &ast.TSAsExpression{}, firstDeclarator(t, prog, 1).Init)
	assert.IsType(t, &ast.TSNonNullExpression{}, firstDeclarator(t, prog, 2).Init)
}

func TestParse_ImportsAndExports(t *testing.T) {
	prog := parse(t, "a.js", `import def, { a, b as c } from "./mod";
import * as ns from "pkg";
export const x = 1;
export { a as y };
export default x;
export * from "./other";
export { z } from "./third";`)
	require.Len(t, prog.Body, 7)

	imp := prog.Body[0].(*ast.ImportDeclaration)
	assert.Equal(t, "./mod", imp.Source.Value)
	require.Len(t, imp.Specifiers, 3)
	assert.Equal(t, "def", imp.Specifiers[0].(*ast.ImportDefaultSpecifier).Local.Name)
	spec := imp.Specifiers[2].(*ast.ImportSpecifier)
	assert.Equal(t, "b", spec.Imported.(*ast.Identifier).Name)
	assert.Equal(t, "c", spec.Local.Name)

	ns := prog.Body[1].(*ast.ImportDeclaration)
	assert.IsType(t, &ast.ImportNamespaceSpecifier{}, ns.Specifiers[0])

	named := prog.Body[2].(*ast.ExportNamedDeclaration)
	assert.IsType(t, &ast.VariableDeclaration{}, named.Declaration)

	clause := prog.Body[3].(*ast.ExportNamedDeclaration)
	require.Len(t, clause.Specifiers, 1)
	assert.Equal(t, "y", clause.Specifiers[0].Exported.(*ast.Identifier).Name)

	assert.IsType(t, &ast.ExportDefaultDeclaration{}, prog.Body[4])
	all := prog.Body[5].(*ast.ExportAllDeclaration)
	assert.Equal(t, "./other", all.Source.Value)
	re := prog.Body[6].(*ast.ExportNamedDeclaration)
	assert.Equal(t, "./third", re.Source.Value)
}

func TestParse_DynamicImportAndRequire(t *testing.T) {
	prog := parse(t, "a.js", `const a = import("./a"); const b = require("./b");`)
	imp := firstDeclarator(t, prog, 0).Init.(*ast.ImportExpression)
	assert.Equal(t, "./a", imp.Source.(*ast.Literal).Value)

	call := firstDeclarator(t, prog, 1).Init.(*ast.CallExpression)
	assert.Equal(t, "require", call.Callee.(*ast.Identifier).Name)
}

func TestParse_ControlFlow(t *testing.T) {
	prog := parse(t, "a.js", `function f(x) {
  if (x) { return 1; } else return 2;
  for (const k of list) { return k; }
  for (let i = 0; i < 3; i++) {}
  switch (x) { case 1: return "one"; default: return "other"; }
  try { return g(); } catch (e) { return e; } finally {}
  outer: while (x) { break outer; }
}`)
	body := prog.Body[0].(*ast.FunctionDeclaration).Body.Body
	require.Len(t, body, 6)
	ifs := body[0].(*ast.IfStatement)
	assert.IsType(t, &ast.ReturnStatement{}, ifs.Alternate)
	assert.IsType(t, &ast.ForOfStatement{}, body[1])
	assert.IsType(t, &ast.VariableDeclaration{}, body[2].(*ast.ForStatement).Init)
	sw := body[3].(*ast.SwitchStatement)
	require.Len(t, sw.Cases, 2)
	assert.NotNil(t, sw.Cases[0].Test)
	assert.Nil(t, sw.Cases[1].Test)
	assert.Len(t, sw.Cases[0].Consequent, 1)
	try := body[4].(*ast.TryStatement)
	require.NotNil(t, try.Handler)
	assert.Equal(t, "e", try.Handler.Param.(*ast.Identifier).Name)
	assert.IsType(t, &ast.LabeledStatement{}, body[5])
}

func TestParse_JSX(t *testing.T) {
	prog := parse(t, "a.jsx", `const el = <div className="x" dangerouslySetInnerHTML={{ __html: html }} />;`)
	el := firstDeclarator(t, prog, 0).Init.(*ast.JSXElement)
	assert.Equal(t, "div", el.Name)
	require.Len(t, el.Attributes, 2)
	attr := el.Attributes[1].(*ast.JSXAttribute)
	assert.Equal(t, "dangerouslySetInnerHTML", attr.Name)
	assert.IsType(t, &ast.ObjectExpression{}, attr.Value)
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`\x41`, "A"},
		{`\u0041`, "A"},
		{`\u{1F600}`, "\U0001F600"},
		{`\'q\'`, "'q'"},
		{`\\`, `\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unescape(tt.in), tt.in)
	}
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "1", normalizeNumber("1"))
	assert.Equal(t, "1.5", normalizeNumber("1.5"))
	assert.Equal(t, "1000", normalizeNumber("1_000"))
	assert.Equal(t, "255", normalizeNumber("0xff"))
}
