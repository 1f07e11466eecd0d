package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(sl, sc, el, ec int) Base {
	return Base{Loc: Range{Start: Position{Line: sl, Column: sc}, End: Position{Line: el, Column: ec}}}
}

// buildMember builds `a.b.c` on line 1.
func buildMember() *Program {
	a := &Identifier{Base: pos(1, 1, 1, 2), Name: "a"}
	b := &Identifier{Base: pos(1, 3, 1, 4), Name: "b"}
	c := &Identifier{Base: pos(1, 5, 1, 6), Name: "c"}
	ab := &MemberExpression{Base: pos(1, 1, 1, 4), Object: a, Property: b}
	abc := &MemberExpression{Base: pos(1, 1, 1, 6), Object: ab, Property: c}
	stmt := &ExpressionStatement{Base: pos(1, 1, 1, 7), Expression: abc}
	return &Program{Base: pos(1, 1, 2, 1), Body: []Node{stmt}}
}

func TestType(t *testing.T) {
	assert.Equal(t, "Identifier", Type(&Identifier{}))
	assert.Equal(t, "MemberExpression", Type(&MemberExpression{}))
	assert.Equal(t, "enum_declaration", Type(&Unknown{Kind: "enum_declaration"}))
	assert.Equal(t, "<nil>", Type(nil))
}

func TestLinkParents(t *testing.T) {
	prog := buildMember()
	LinkParents(prog)

	stmt := prog.Body[0].(*ExpressionStatement)
	abc := stmt.Expression.(*MemberExpression)
	ab := abc.Object.(*MemberExpression)

	assert.Equal(t, Node(prog), stmt.Parent())
	assert.Equal(t, Node(abc), ab.Parent())
	assert.Equal(t, Node(ab), ab.Object.Parent())
	assert.Nil(t, prog.Parent())
}

func TestChildren_SkipsHoles(t *testing.T) {
	one := &Literal{Kind: NumberLiteral, Value: "1"}
	arr := &ArrayExpression{Elements: []Node{nil, one, nil}}
	assert.Equal(t, []Node{one}, Children(arr))
}

func TestChildren_TemplateOrder(t *testing.T) {
	q0 := &TemplateElement{Value: "a"}
	q1 := &TemplateElement{Value: "b"}
	x := &Identifier{Name: "x"}
	tpl := &TemplateLiteral{Quasis: []*TemplateElement{q0, q1}, Expressions: []Node{x}}
	assert.Equal(t, []Node{q0, x, q1}, Children(tpl))
}

func TestFind(t *testing.T) {
	prog := buildMember()
	LinkParents(prog)

	n := Find(prog, Position{Line: 1, Column: 3})
	require.NotNil(t, n)
	id, ok := n.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, "b", id.Name)

	assert.Nil(t, Find(prog, Position{Line: 5, Column: 1}))
}

func TestCalleeName(t *testing.T) {
	prog := buildMember()
	abc := prog.Body[0].(*ExpressionStatement).Expression
	assert.Equal(t, "a.b.c", CalleeName(abc))

	computed := &MemberExpression{Object: &Identifier{Name: "o"}, Property: &Identifier{Name: "k"}, Computed: true}
	assert.Equal(t, "", CalleeName(computed))

	lit := &MemberExpression{Object: &Identifier{Name: "o"}, Property: &Literal{Kind: StringLiteral, Value: "k"}, Computed: true}
	assert.Equal(t, "o.k", CalleeName(lit))
}

func TestEnclosingFunction(t *testing.T) {
	ret := &ReturnStatement{Argument: &Identifier{Name: "x"}}
	body := &BlockStatement{Body: []Node{ret}}
	fn := &FunctionDeclaration{ID: &Identifier{Name: "f"}, Body: body}
	prog := &Program{Body: []Node{fn}}
	LinkParents(prog)

	assert.Equal(t, Node(fn), EnclosingFunction(ret.Argument))
	assert.Nil(t, EnclosingFunction(fn))
	assert.True(t, IsAncestor(fn, ret.Argument))
	assert.False(t, IsAncestor(ret, fn))
}

func TestKeyName(t *testing.T) {
	name, ok := KeyName(&Identifier{Name: "p"}, false)
	assert.True(t, ok)
	assert.Equal(t, "p", name)

	_, ok = KeyName(&Identifier{Name: "p"}, true)
	assert.False(t, ok)

	name, ok = KeyName(&Literal{Kind: NumberLiteral, Value: "0"}, true)
	assert.True(t, ok)
	assert.Equal(t, "0", name)
}
