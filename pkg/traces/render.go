package traces

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gookit/color"

	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

// Step is the serializable form of one trace node.
type Step struct {
	Kind   string `json:"kind" yaml:"kind"`
	Label  string `json:"label" yaml:"label"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Flags  string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Steps converts a trace to its serializable form.
func Steps(t Trace) []Step {
	steps := make([]Step, len(t))
	for i, n := range t {
		steps[i] = stepOf(n)
	}
	return steps
}

func stepOf(n tracer.Node) Step {
	s := Step{Kind: kindOf(n), Label: n.String()}
	if n.Module() != nil {
		s.File = n.Module().Path
	}
	if e := n.Expr(); e != nil {
		pos := e.Pos().Start
		s.Line, s.Column = pos.Line, pos.Column
	}
	if f := n.Connection().Flags; f != 0 {
		s.Flags = f.String()
	}
	return s
}

func kindOf(n tracer.Node) string {
	switch x := n.(type) {
	case *tracer.VariableNode:
		return "variable"
	case *tracer.ConstantNode:
		if x.MemberKey {
			return "member-key"
		}
		return "constant"
	case *tracer.ImportNode:
		return "import"
	case *tracer.GlobalNode:
		return "global"
	case *tracer.ASTNode:
		return "node"
	case *tracer.UnresolvedNode:
		return "unresolved"
	}
	return "unknown"
}

// WriteJSON writes traces as a JSON array of step arrays.
func WriteJSON(w io.Writer, ts []Trace) error {
	out := make([][]Step, len(ts))
	for i, t := range ts {
		out[i] = Steps(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteText writes one block per trace, indenting each step under its
// parent. Paths are shown relative to base when possible.
func WriteText(w io.Writer, ts []Trace, base string, colors bool) {
	for i, t := range ts {
		header := fmt.Sprintf("trace %d/%d", i+1, len(ts))
		if colors {
			header = color.OpBold.Render(header)
		}
		fmt.Fprintln(w, header)
		for depth, n := range t {
			s := stepOf(n)
			label := s.Label
			if colors {
				label = styleOf(n).Render(label)
			}
			loc := relative(base, s.File)
			if loc == "" {
				loc = "<stdin>"
			}
			fmt.Fprintf(w, "%*s%s  %s:%d:%d", depth*2+2, "", label, loc, s.Line, s.Column)
			if s.Flags != "" {
				fmt.Fprintf(w, "  [%s]", s.Flags)
			}
			fmt.Fprintln(w)
		}
	}
}

func styleOf(n tracer.Node) color.Color {
	switch n.(type) {
	case *tracer.ConstantNode:
		return color.FgGreen
	case *tracer.UnresolvedNode:
		return color.FgRed
	case *tracer.ImportNode, *tracer.GlobalNode:
		return color.FgYellow
	case *tracer.VariableNode:
		return color.FgCyan
	}
	return color.FgWhite
}

func relative(base, path string) string {
	if base == "" || path == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
