package tracer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

func TestMetaIsCopyOnWrite(t *testing.T) {
	var m Meta
	a := m.push("x")
	b := a.push("y")
	_, c := b.pop()

	assert.Empty(t, m.MemberPath())
	assert.Equal(t, []string{"x"}, a.MemberPath())
	assert.Equal(t, []string{"x", "y"}, b.MemberPath())
	assert.Equal(t, []string{"x"}, c.MemberPath())

	// Pushing onto a popped copy must not clobber the original.
	d := c.push("z")
	assert.Equal(t, []string{"x", "y"}, b.MemberPath())
	assert.Equal(t, []string{"x", "z"}, d.MemberPath())
}

func TestMetaPushPath(t *testing.T) {
	m := Meta{}.pushPath([]string{"a", "b", "c"})
	key, _ := m.top()
	assert.Equal(t, "a", key)
	assert.Equal(t, []string{"c", "b", "a"}, m.MemberPath())
}

func TestMetaCalls(t *testing.T) {
	outer := &pendingCall{node: &ast.CallExpression{}}
	inner := &pendingCall{node: &ast.NewExpression{}}

	m := Meta{}.pushCall(outer).push("method").pushCall(inner)
	assert.Equal(t, 2, m.CallCount())
	assert.True(t, m.callApplies())

	call, m := m.enterCall()
	assert.Same(t, inner.node, call.node)
	assert.Equal(t, 1, m.CallCount())
	// The outer call applies to `method`, not to the object.
	assert.False(t, m.callApplies())

	_, m = m.pop()
	assert.True(t, m.callApplies())
	call, m = m.enterCall()
	assert.Same(t, outer.node, call.node)
	assert.Equal(t, 2, m.depth)
	assert.False(t, m.callApplies())
}

func TestMetaWithSpread(t *testing.T) {
	s := &ast.SpreadElement{}
	m, ok := Meta{}.withSpread(s)
	require.True(t, ok)
	_, ok = m.withSpread(s)
	assert.False(t, ok)
	_, ok = Meta{}.withSpread(s)
	assert.True(t, ok, "the original meta must not see the spread")
}

func TestMetaInvariants(t *testing.T) {
	for name, f := range map[string]func(){
		"pop":   func() { Meta{}.pop() },
		"enter": func() { Meta{}.enterCall() },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				rec := recover()
				err, ok := rec.(*InvariantError)
				require.True(t, ok, "expected *InvariantError, got %v", rec)
				assert.True(t, errors.Is(err, ErrInvariant))
			}()
			f()
		})
	}
}

func TestArena(t *testing.T) {
	a := NewArena()
	root := a.Add(Connection{Parent: NoConnection, Flags: Call})
	mid := a.Add(Connection{Parent: root.ID, Flags: Modification})
	leaf := a.Add(Connection{Parent: mid.ID})

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, ConnectionID(2), leaf.ID)
	assert.Same(t, mid, a.Get(mid.ID))
	assert.Equal(t, Call|Modification, a.FlagsOf(leaf.ID))

	var ids []ConnectionID
	a.Ancestors(leaf.ID, func(c *Connection) bool {
		ids = append(ids, c.ID)
		return true
	})
	assert.Equal(t, []ConnectionID{2, 1, 0}, ids)

	assert.Panics(t, func() { a.Add(Connection{Parent: 7}) })
	assert.Panics(t, func() { a.Get(9) })
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "none", Flag(0).String())
	assert.Equal(t, "Reassign|Call", (Reassign | Call).String())
	assert.True(t, (Reassign | Append).Has(Append))
	assert.False(t, Reassign.Has(Reassign|Append))
}
