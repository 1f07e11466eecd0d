package rules

import (
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

var queryMethods = []string{"query", "execute", "raw", "$queryRawUnsafe", "$executeRawUnsafe"}

type sqlInjection struct {
	MetaData
}

// NewSQLInjection reports queries assembled from untrusted values. Passing
// untrusted values as bind parameters is fine; only concatenation and
// template interpolation into the query text are flagged.
func NewSQLInjection() Rule {
	return &sqlInjection{MetaData{
		RuleID:   "sqli",
		What:     "SQL string formatting",
		Severity: High,
	}}
}

func (r *sqlInjection) Severity() Severity { return r.MetaData.Severity }

func (r *sqlInjection) Sinks(mod *module.Module) []Sink {
	var sinks []Sink
	for _, call := range calls(mod.Program, queryMethods...) {
		if a, ok := arg(call, 0); ok {
			sinks = append(sinks, Sink{Node: call, Expr: a, What: "query text"})
		}
	}
	return sinks
}

func (r *sqlInjection) Unsafe(_ Sink, t traces.Trace) bool {
	return t.Flags().Has(tracer.Modification) && tainted(t)
}
