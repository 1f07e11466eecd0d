package tracer

import (
	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// AnyKey in a member path stands for every element or property.
const AnyKey = "*"

// pendingCall is a call whose callee is being classified. Entering a
// function through it binds the function's parameters to args.
type pendingCall struct {
	node ast.Node
	args []ast.Node
	mod  *module.Module
	// pathLen is the member path length when the call was recorded. The
	// call applies to the value reached at that length, not to a member
	// of it.
	pathLen int
}

// Meta is the per-step state that travels with a value. Every method
// returns a modified copy; a Meta is never changed in place.
type Meta struct {
	// memberPath is a stack of property keys still to be resolved on the
	// traced value. The top is the last element.
	memberPath []string
	callCount  int
	calls      []*pendingCall
	spread     map[ast.Node]struct{}
	// calls entered through function returns, bounded by MaxCallDepth
	depth int
}

// MemberPath returns the pending property keys, next key last.
func (m Meta) MemberPath() []string {
	return append([]string(nil), m.memberPath...)
}

// CallCount returns the number of calls applied to the traced value that
// have not been entered yet.
func (m Meta) CallCount() int {
	return m.callCount
}

func (m Meta) top() (string, bool) {
	if len(m.memberPath) == 0 {
		return "", false
	}
	return m.memberPath[len(m.memberPath)-1], true
}

func (m Meta) push(keys ...string) Meta {
	if len(keys) == 0 {
		return m
	}
	path := make([]string, len(m.memberPath), len(m.memberPath)+len(keys))
	copy(path, m.memberPath)
	m.memberPath = append(path, keys...)
	return m
}

// pushPath pushes a destructuring path so that its first key is resolved
// first.
func (m Meta) pushPath(path []string) Meta {
	keys := make([]string, len(path))
	for i, k := range path {
		keys[len(path)-1-i] = k
	}
	return m.push(keys...)
}

func (m Meta) pop() (string, Meta) {
	key, ok := m.top()
	if !ok {
		fail("pop on empty member path")
	}
	n := len(m.memberPath) - 1
	m.memberPath = m.memberPath[:n:n]
	return key, m
}

func (m Meta) pushCall(call *pendingCall) Meta {
	pc := *call
	pc.pathLen = len(m.memberPath)
	calls := make([]*pendingCall, len(m.calls), len(m.calls)+1)
	copy(calls, m.calls)
	m.calls = append(calls, &pc)
	m.callCount++
	return m
}

// callApplies reports whether a pending call applies to the value at the
// current member path. For `obj.run()` the call applies once `run` has been
// resolved on obj, not to obj itself.
func (m Meta) callApplies() bool {
	if m.callCount <= 0 {
		return false
	}
	if len(m.calls) == 0 {
		return true
	}
	return m.calls[len(m.calls)-1].pathLen == len(m.memberPath)
}

// enterCall consumes one pending call. It returns nil when no call was
// recorded for the current call count.
func (m Meta) enterCall() (*pendingCall, Meta) {
	if m.callCount <= 0 {
		fail("entering a call with call count %d", m.callCount)
	}
	m.callCount--
	m.depth++
	if len(m.calls) == 0 {
		return nil, m
	}
	n := len(m.calls) - 1
	call := m.calls[n]
	m.calls = m.calls[:n:n]
	return call, m
}

// withSpread records spread as being resolved. It reports false when the
// spread is already being resolved on this path.
func (m Meta) withSpread(spread ast.Node) (Meta, bool) {
	if _, ok := m.spread[spread]; ok {
		return m, false
	}
	set := make(map[ast.Node]struct{}, len(m.spread)+1)
	for k := range m.spread {
		set[k] = struct{}{}
	}
	set[spread] = struct{}{}
	m.spread = set
	return m, true
}

// Context is the immutable bundle threaded through classification: where the
// value is, how it was reached since the last variable, and its Meta.
type Context struct {
	mod      *module.Module
	parent   ConnectionID
	variable *scope.Variable
	path     []ast.Node
	flags    Flag
	meta     Meta
	// depth counts nested classifications within one step.
	depth int
}

func rootContext(mod *module.Module) Context {
	return Context{mod: mod, parent: NoConnection}
}

// Module returns the module the value is in.
func (c Context) Module() *module.Module {
	return c.mod
}

// Meta returns the value state.
func (c Context) Meta() Meta {
	return c.meta
}

func (c Context) with(n ast.Node) Context {
	path := make([]ast.Node, len(c.path), len(c.path)+1)
	copy(path, c.path)
	c.path = append(path, n)
	c.depth++
	return c
}

func (c Context) withFlag(f Flag) Context {
	c.flags |= f
	return c
}

func (c Context) withMeta(m Meta) Context {
	c.meta = m
	return c
}

func (c Context) inModule(mod *module.Module) Context {
	c.mod = mod
	return c
}

// next starts the context for the nodes produced by expanding vn.
func (vn *VariableNode) next() Context {
	c := vn.ctx
	c.mod = vn.mod
	c.parent = vn.conn.ID
	c.variable = vn.Variable
	c.path = nil
	c.flags = 0
	c.depth = 0
	return c
}
