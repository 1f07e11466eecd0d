package tracer

// cycleGuard stops a variable from being expanded again once it appears more
// than bound times on its own path.
type cycleGuard struct {
	arena *Arena
	bound int
}

func (g cycleGuard) allows(vn *VariableNode) bool {
	return g.occurrences(vn) <= g.bound
}

// occurrences counts the connections from vn to the root that were produced
// by expanding vn's variable.
func (g cycleGuard) occurrences(vn *VariableNode) int {
	count := 0
	g.arena.Ancestors(vn.conn.ID, func(c *Connection) bool {
		if c.Variable == vn.Variable {
			count++
		}
		return count <= g.bound
	})
	return count
}
