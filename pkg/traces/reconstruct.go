package traces

import (
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

// Reconstructor turns the node stream of a tracer run into traces. The
// tracer visits nodes depth first and shares prefixes between branches, so
// a node that does not continue the current trace ends it; the current
// trace is then unwound to the new node's parent.
type Reconstructor struct {
	current []tracer.Node
	onTrace func(Trace) bool
	halted  bool
}

// NewReconstructor creates a Reconstructor that passes every finished trace
// to onTrace. Returning false from onTrace halts the run.
func NewReconstructor(onTrace func(Trace) bool) *Reconstructor {
	return &Reconstructor{onTrace: onTrace}
}

// connected reports whether next was produced by expanding prev.
func connected(prev, next tracer.Node) bool {
	return next.Connection().Parent == prev.Connection().ID
}

// Visit adds n to the current trace, first finishing the trace it does not
// continue.
func (r *Reconstructor) Visit(n tracer.Node) tracer.Signal {
	if len(r.current) > 0 && !connected(r.current[len(r.current)-1], n) {
		r.emit()
		for len(r.current) > 0 && !connected(r.current[len(r.current)-1], n) {
			r.current = r.current[:len(r.current)-1]
		}
	}
	r.current = append(r.current, n)
	if r.halted {
		return tracer.Halt
	}
	return tracer.Continue
}

// Finish emits the trace in progress.
func (r *Reconstructor) Finish() {
	if len(r.current) > 0 {
		r.emit()
	}
	r.current = nil
}

func (r *Reconstructor) emit() {
	if r.halted {
		return
	}
	t := make(Trace, len(r.current))
	copy(t, r.current)
	if !r.onTrace(t) {
		r.halted = true
	}
}

// Callbacks wires the reconstructor into a tracer run. visit, if not nil,
// sees every node first and may stop or halt the search.
func (r *Reconstructor) Callbacks(visit func(tracer.Node) tracer.Signal) tracer.Callbacks {
	return tracer.Callbacks{
		OnNodeVisited: func(n tracer.Node) tracer.Signal {
			signal := r.Visit(n)
			if visit != nil {
				if s := visit(n); s > signal {
					signal = s
				}
			}
			return signal
		},
		OnFinished: r.Finish,
	}
}
