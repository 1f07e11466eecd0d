package tracer

import (
	"sync"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/scope"
)

// ConnectionID addresses a Connection in its Arena.
type ConnectionID int

// NoConnection is the parent of root connections.
const NoConnection ConnectionID = -1

// Connection records how a trace node was reached from its parent. It is
// never modified after it is added to an Arena.
type Connection struct {
	ID     ConnectionID
	Parent ConnectionID
	// Path lists the AST nodes walked from the parent to the node, outermost
	// first.
	Path  []ast.Node
	Flags Flag
	// Variable is the variable whose expansion produced the node. It is nil
	// for roots.
	Variable *scope.Variable
}

// Arena owns the connections of one trace invocation.
type Arena struct {
	mu    sync.RWMutex
	conns []*Connection
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores c under a new ID and returns the stored copy.
func (a *Arena) Add(c Connection) *Connection {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c.Parent != NoConnection && (c.Parent < 0 || int(c.Parent) >= len(a.conns)) {
		fail("connection parent %d out of range (arena size %d)", c.Parent, len(a.conns))
	}
	c.ID = ConnectionID(len(a.conns))
	stored := &c
	a.conns = append(a.conns, stored)
	return stored
}

// Get returns the connection with the given ID.
func (a *Arena) Get(id ConnectionID) *Connection {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || int(id) >= len(a.conns) {
		fail("connection %d out of range (arena size %d)", id, len(a.conns))
	}
	return a.conns[id]
}

// Len returns the number of connections.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.conns)
}

// Ancestors calls f for id and each of its parents, nearest first, until f
// returns false.
func (a *Arena) Ancestors(id ConnectionID, f func(*Connection) bool) {
	for id != NoConnection {
		c := a.Get(id)
		if !f(c) {
			return
		}
		id = c.Parent
	}
}

// FlagsOf returns the union of the flags from id up to the root.
func (a *Arena) FlagsOf(id ConnectionID) Flag {
	var flags Flag
	a.Ancestors(id, func(c *Connection) bool {
		flags |= c.Flags
		return true
	})
	return flags
}
