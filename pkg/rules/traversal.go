package rules

import (
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
)

var fileMethods = []string{
	"readFile", "readFileSync", "writeFile", "writeFileSync",
	"appendFile", "appendFileSync", "createReadStream", "createWriteStream",
	"unlink", "unlinkSync", "readdir", "readdirSync", "sendFile",
}

var pathSanitizers = []string{"basename"}

type pathTraversal struct {
	MetaData
}

// NewPathTraversal reports file system calls whose path may come from
// outside the program.
func NewPathTraversal() Rule {
	return &pathTraversal{MetaData{
		RuleID:   "path-traversal",
		What:     "Potential file inclusion via variable",
		Severity: Medium,
	}}
}

func (r *pathTraversal) Severity() Severity { return r.MetaData.Severity }

func (r *pathTraversal) Sinks(mod *module.Module) []Sink {
	var sinks []Sink
	for _, call := range calls(mod.Program, fileMethods...) {
		if a, ok := arg(call, 0); ok {
			name, _ := methodName(call.Callee)
			sinks = append(sinks, Sink{Node: call, Expr: a, What: name})
		}
	}
	return sinks
}

func (r *pathTraversal) Unsafe(_ Sink, t traces.Trace) bool {
	return tainted(t) && !t.Passes(pathSanitizers...)
}
