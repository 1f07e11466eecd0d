// Package rules holds the security detectors built on the tracer. A rule
// names the sink expressions it cares about in a module and judges each
// trace that reaches them; the runner does the tracing.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
)

// Severity ranks how problematic an issue is.
type Severity int

const (
	Low Severity = iota
	Medium
	High
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	}
	return "UNDEFINED"
}

// MarshalText encodes the severity by name in JSON and YAML reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue is a finding reported by a rule.
type Issue struct {
	RuleID   string        `json:"rule_id" yaml:"rule_id"`
	Severity Severity      `json:"severity" yaml:"severity"`
	What     string        `json:"details" yaml:"details"`
	File     string        `json:"file" yaml:"file"`
	Line     int           `json:"line" yaml:"line"`
	Column   int           `json:"column" yaml:"column"`
	Code     string        `json:"code" yaml:"code"`
	Trace    []traces.Step `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// FileLocation returns file:line:column.
func (i *Issue) FileLocation() string {
	return fmt.Sprintf("%s:%d:%d", i.File, i.Line, i.Column)
}

// Sink is an expression whose origins a rule wants traced.
type Sink struct {
	// Node is where the issue is reported.
	Node ast.Node
	// Expr is the expression traced.
	Expr ast.Node
	What string
}

// Rule is a detector.
type Rule interface {
	ID() string
	Description() string
	Severity() Severity
	// Sinks returns the expressions of mod the rule traces.
	Sinks(mod *module.Module) []Sink
	// Unsafe reports whether a trace reaching s is a finding.
	Unsafe(s Sink, t traces.Trace) bool
}

// MetaData is embedded in every rule.
type MetaData struct {
	RuleID   string
	What     string
	Severity Severity
}

func (m MetaData) ID() string { return m.RuleID }
func (m MetaData) Description() string { return m.What }

// RuleDefinition describes a rule and how to create it.
type RuleDefinition struct {
	ID          string
	Description string
	Create      func() Rule
}

var definitions = []RuleDefinition{
	{"xss", "Untrusted data written as HTML", NewXSS},
	{"sqli", "SQL query built from untrusted data", NewSQLInjection},
	{"hardcoded-credentials", "Credential assigned from a hard-coded high entropy string", NewHardcodedCredentials},
	{"weak-cipher", "Weak cipher or hash algorithm", NewWeakCipher},
	{"path-traversal", "File system path built from untrusted data", NewPathTraversal},
}

// Definitions returns every known rule, sorted by ID.
func Definitions() []RuleDefinition {
	out := append([]RuleDefinition(nil), definitions...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Generate creates the rules whose IDs pass every filter.
func Generate(filters ...func(id string) bool) []Rule {
	var out []Rule
next:
	for _, def := range Definitions() {
		for _, keep := range filters {
			if !keep(def.ID) {
				continue next
			}
		}
		out = append(out, def.Create())
	}
	return out
}

// Select creates the rules with the given IDs. An empty list selects every
// rule.
func Select(ids []string) ([]Rule, error) {
	if len(ids) == 0 {
		return Generate(), nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = true
	}
	for id := range want {
		if !known(id) {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
	}
	return Generate(func(id string) bool { return want[id] }), nil
}

func known(id string) bool {
	for _, def := range definitions {
		if def.ID == id {
			return true
		}
	}
	return false
}
