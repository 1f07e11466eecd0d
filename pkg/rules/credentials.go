package rules

import (
	"regexp"

	zxcvbn "github.com/ccojocar/zxcvbn-go"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/traces"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

const (
	entropyThreshold = 80.0
	perCharThreshold = 3.0
	truncateLength   = 16
)

var credentialName = regexp.MustCompile(`(?i)(passwd|password|pwd|secret|api[_-]?key|auth[_-]?token|access[_-]?(key|token)|private[_-]?key|client[_-]?secret|bearer|credential)`)

type credentials struct {
	MetaData
	pattern *regexp.Regexp
}

// NewHardcodedCredentials reports credential-like names whose value is a
// literal string that looks random enough to be a real secret.
func NewHardcodedCredentials() Rule {
	return &credentials{
		MetaData: MetaData{
			RuleID:   "hardcoded-credentials",
			What:     "Potential hardcoded credentials",
			Severity: High,
		},
		pattern: credentialName,
	}
}

func (r *credentials) Severity() Severity { return r.MetaData.Severity }

func (r *credentials) Sinks(mod *module.Module) []Sink {
	var sinks []Sink
	add := func(at ast.Node, name string, value ast.Node) {
		if value != nil && r.pattern.MatchString(name) {
			sinks = append(sinks, Sink{Node: at, Expr: value, What: name})
		}
	}
	ast.Inspect(mod.Program, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.VariableDeclarator:
			if id, ok := x.ID.(*ast.Identifier); ok {
				add(x, id.Name, x.Init)
			}
		case *ast.AssignmentExpression:
			if x.Operator != "=" {
				break
			}
			switch left := x.Left.(type) {
			case *ast.Identifier:
				add(x, left.Name, x.Right)
			case *ast.MemberExpression:
				if name, ok := ast.KeyName(left.Property, left.Computed); ok {
					add(x, name, x.Right)
				}
			}
		case *ast.Property:
			if _, ok := x.Parent().(*ast.ObjectExpression); !ok || x.Method {
				break
			}
			if name, ok := ast.KeyName(x.Key, x.Computed); ok {
				add(x, name, x.Value)
			}
		case *ast.PropertyDefinition:
			if name, ok := ast.KeyName(x.Key, x.Computed); ok {
				add(x, name, x.Value)
			}
		}
		return true
	})
	return sinks
}

func (r *credentials) Unsafe(_ Sink, t traces.Trace) bool {
	value, ok := t.Constant()
	if !ok || t.Flags().Has(tracer.Modification) {
		return false
	}
	return highEntropy(value)
}

// highEntropy reports whether s looks like a generated secret rather than a
// word or a placeholder.
func highEntropy(s string) bool {
	if len(s) > truncateLength {
		s = s[:truncateLength]
	}
	if s == "" {
		return false
	}
	entropy := zxcvbn.PasswordStrength(s, nil).Entropy
	return entropy >= entropyThreshold || (entropy >= 40 && entropy/float64(len(s)) >= perCharThreshold)
}
