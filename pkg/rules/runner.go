package rules

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-taint-trace/internal/log"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

// Options configures a Runner.
type Options struct {
	Rules   []Rule
	Tracer  *tracer.Tracer
	Loader  *module.Loader
	Workers int
	Logger  log.Logger
	// OnFile is called after each scanned file, from any worker.
	OnFile func(path string)
}

// Runner checks modules against a set of rules.
type Runner struct {
	rules   []Rule
	tracer  *tracer.Tracer
	loader  *module.Loader
	workers int
	log     log.Logger
	onFile  func(string)
}

// NewRunner creates a Runner. Missing rules, tracer or loader are replaced
// by defaults.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		rules:   opts.Rules,
		tracer:  opts.Tracer,
		loader:  opts.Loader,
		workers: opts.Workers,
		log:     opts.Logger,
		onFile:  opts.OnFile,
	}
	if r.log == nil {
		r.log = log.Nop()
	}
	if r.rules == nil {
		r.rules = Generate()
	}
	if r.loader == nil {
		r.loader = module.NewLoader(module.LoaderOptions{Logger: r.log})
	}
	if r.tracer == nil {
		r.tracer = tracer.New(tracer.Options{Logger: r.log, Loader: r.loader})
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// CheckModule runs every rule against mod. Each sink yields at most one
// issue, for the first unsafe trace found.
func (r *Runner) CheckModule(ctx context.Context, mod *module.Module) ([]*Issue, error) {
	var issues []*Issue
	for _, rule := range r.rules {
		for _, sink := range rule.Sinks(mod) {
			issue, err := r.check(ctx, mod, rule, sink)
			if err != nil {
				return issues, err
			}
			if issue != nil {
				issues = append(issues, issue)
			}
		}
	}
	return issues, nil
}

func (r *Runner) check(ctx context.Context, mod *module.Module, rule Rule, sink Sink) (*Issue, error) {
	var found traces.Trace
	rc := traces.NewReconstructor(func(t traces.Trace) bool {
		if rule.Unsafe(sink, t) {
			found = t
			return false
		}
		return true
	})
	if err := r.tracer.Trace(ctx, mod, sink.Expr, rc.Callbacks(nil)); err != nil {
		if !errors.Is(err, tracer.ErrInvariant) {
			return nil, err
		}
		r.log.Warn("skipping sink", "rule", rule.ID(), "file", mod.Path, "error", err)
		return nil, nil
	}
	if found == nil {
		return nil, nil
	}
	pos := sink.Node.Pos().Start
	return &Issue{
		RuleID:   rule.ID(),
		Severity: rule.Severity(),
		What:     fmt.Sprintf("%s (%s)", rule.Description(), sink.What),
		File:     mod.Path,
		Line:     pos.Line,
		Column:   pos.Column,
		Code:     code(mod.Source, sink.Node),
		Trace:    traces.Steps(found),
	}, nil
}

// Scan loads and checks every path with up to Workers files in flight.
// Files that fail to load are logged and skipped. Issues are sorted by
// location.
func (r *Runner) Scan(ctx context.Context, paths []string) ([]*Issue, error) {
	var (
		mu     sync.Mutex
		issues []*Issue
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			defer func() {
				if r.onFile != nil {
					r.onFile(path)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			mod, err := r.loader.Load(ctx, path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Warn("skipping file", "path", path, "error", err)
				return nil
			}
			found, err := r.CheckModule(ctx, mod)
			if err != nil {
				return err
			}
			mu.Lock()
			issues = append(issues, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	SortIssues(issues)
	return issues, nil
}

// SortIssues orders issues by file, position and rule.
func SortIssues(issues []*Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}
