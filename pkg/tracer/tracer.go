// Package tracer finds the possible origins of a JavaScript or TypeScript
// expression. Starting from an expression it walks backwards through
// variable definitions, call returns, parameter bindings, property accesses
// and module boundaries, and reports every step to the caller as a stream of
// trace nodes ending in constants, imports, globals, opaque expressions or
// unresolved branches.
package tracer

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/l3aro/go-taint-trace/internal/log"
	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
)

// Options configures a Tracer.
type Options struct {
	// CycleBound is how many times a variable may already appear on a
	// path before expanding it again is reported as a cycle.
	CycleBound int
	// MaxCallDepth bounds the number of function returns entered on one
	// path.
	MaxCallDepth int
	// MaxNestedTraces bounds nested spread resolution on one path.
	MaxNestedTraces int
	// Debug logs every visited node.
	Debug bool

	Logger   log.Logger
	Loader   *module.Loader
	Resolver *module.Resolver
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CycleBound:      1,
		MaxCallDepth:    32,
		MaxNestedTraces: 8,
	}
}

// maxExpressionDepth bounds nested classification within one step.
const maxExpressionDepth = 512

// Callbacks receive the nodes of a trace.
type Callbacks struct {
	// OnNodeVisited is called for every node, parents before children.
	OnNodeVisited func(Node) Signal
	// OnFinished is called once when the search ends, including after Halt,
	// cancellation and an invariant violation.
	OnFinished func()
}

// Tracer runs traces. It is safe for concurrent use; each Trace call has its
// own state and shares only the module loader and resolver caches.
type Tracer struct {
	opts      Options
	log       log.Logger
	loader    *module.Loader
	resolver  *module.Resolver
	unhandled sync.Map
}

// New creates a Tracer. Zero limits are replaced by their defaults.
func New(opts Options) *Tracer {
	defaults := DefaultOptions()
	if opts.CycleBound <= 0 {
		opts.CycleBound = defaults.CycleBound
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = defaults.MaxCallDepth
	}
	if opts.MaxNestedTraces <= 0 {
		opts.MaxNestedTraces = defaults.MaxNestedTraces
	}
	t := &Tracer{
		opts:     opts,
		log:      opts.Logger,
		loader:   opts.Loader,
		resolver: opts.Resolver,
	}
	if t.log == nil {
		t.log = log.Nop()
	}
	if t.loader == nil {
		t.loader = module.NewLoader(module.LoaderOptions{Logger: t.log})
	}
	if t.resolver == nil {
		t.resolver = module.NewResolver(module.ResolverOptions{})
	}
	return t
}

// Trace reports the origins of start, an expression of mod, to cb. The
// search is depth first: after a variable is visited its own origins are
// visited before its siblings. Invariant violations abort the search and are
// returned as an error wrapping ErrInvariant.
func (t *Tracer) Trace(ctx context.Context, mod *module.Module, start ast.Node, cb Callbacks) (err error) {
	if mod == nil || start == nil {
		return fmt.Errorf("trace: module and start node are required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{
		t:      t,
		ctx:    ctx,
		cb:     cb,
		arena:  NewArena(),
		params: make(map[ast.Node]*pendingCall),
	}
	r.guard = cycleGuard{arena: r.arena, bound: t.opts.CycleBound}

	defer func() {
		if rec := recover(); rec != nil {
			ie, ok := rec.(*InvariantError)
			if !ok {
				panic(rec)
			}
			t.log.Error("trace aborted", "file", mod.Path, "error", ie)
			err = fmt.Errorf("tracing %s: %w", mod.Path, ie)
		}
		if cb.OnFinished != nil {
			cb.OnFinished()
		}
	}()

	return r.drive(mod, start)
}

// run is the state of one Trace call.
type run struct {
	t     *Tracer
	ctx   context.Context
	cb    Callbacks
	arena *Arena
	guard cycleGuard
	// params holds the latest call that entered each function.
	params map[ast.Node]*pendingCall
}

func (r *run) drive(mod *module.Module, start ast.Node) error {
	queue := list.New()
	pushFront(queue, r.classify(rootContext(mod), start))

	for queue.Len() > 0 {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		n := queue.Remove(queue.Front()).(Node)
		if r.t.opts.Debug {
			conn := n.Connection()
			r.t.log.Debug("visit", "node", n.String(), "conn", conn.ID, "parent", conn.Parent, "flags", conn.Flags)
		}

		signal := Continue
		if r.cb.OnNodeVisited != nil {
			signal = r.cb.OnNodeVisited(n)
		}
		switch signal {
		case Halt:
			return nil
		case StopFollowingVariable:
			if vn, ok := n.(*VariableNode); ok {
				sweep(queue, vn)
			}
			continue
		}

		vn, ok := n.(*VariableNode)
		if !ok {
			continue
		}
		if !r.guard.allows(vn) {
			pushFront(queue, one(r.unresolved(vn.next(), vn.expr, ReasonCycle)))
			continue
		}
		next := r.expand(vn)
		if len(next) == 0 {
			next = one(r.unresolved(vn.next(), vn.expr, ReasonNoDefinition))
		}
		pushFront(queue, next)
	}
	return nil
}

// pushFront queues nodes so that nodes[0] is visited next.
func pushFront(queue *list.List, nodes []Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		queue.PushFront(nodes[i])
	}
}

// sweep drops queued nodes produced by expanding vn's variable.
func sweep(queue *list.List, vn *VariableNode) {
	for e := queue.Front(); e != nil; {
		next := e.Next()
		if e.Value.(Node).Connection().Variable == vn.Variable {
			queue.Remove(e)
		}
		e = next
	}
}

func one(n Node) []Node {
	return []Node{n}
}

// unhandled logs a node kind the classifier has no rule for, once per kind.
func (r *run) unhandled(kind string) {
	if _, seen := r.t.unhandled.LoadOrStore(kind, struct{}{}); !seen {
		r.t.log.Warn("unhandled node kind, treating it as unresolved", "kind", kind)
	}
}
