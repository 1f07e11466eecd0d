package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-taint-trace/pkg/ast"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/parser"
	"github.com/l3aro/go-taint-trace/pkg/traces"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file> [<line>:<col>]",
	Short: "Print every origin of an expression",
	Long: `Traces the expression at a 1-based line and column backwards through
variables, calls, properties and imports, and prints one trace per origin.

Use --var to trace the last reference to a variable instead of a position.
Pass "-" as the file to read the source from stdin; relative imports cannot
be followed from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		varName, _ := cmd.Flags().GetString("var")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		lang, _ := cmd.Flags().GetString("lang")
		if len(args) == 1 && varName == "" {
			return fmt.Errorf("either a <line>:<col> position or --var is required")
		}

		e := newEngine()
		defer e.close()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		mod, err := loadTarget(ctx, e, args[0], lang)
		if err != nil {
			return err
		}

		var start ast.Node
		if varName != "" {
			start = lastReference(mod.Program, varName)
			if start == nil {
				return fmt.Errorf("variable %q not found in %s", varName, args[0])
			}
		} else {
			line, col, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			start = expressionAt(mod, line, col)
			if start == nil {
				return fmt.Errorf("no expression at %d:%d in %s", line, col, args[0])
			}
		}

		ts, err := traces.Collect(ctx, e.tracer, mod, start)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}

		if jsonOutput {
			return traces.WriteJSON(os.Stdout, ts)
		}
		cwd, _ := os.Getwd()
		traces.WriteText(os.Stdout, ts, cwd, useColors())
		return nil
	},
}

// loadTarget loads path, or stdin when path is "-".
func loadTarget(ctx context.Context, e *engine, path, lang string) (*module.Module, error) {
	if path != "-" {
		mod, err := e.loader.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return mod, nil
	}
	d, ok := parser.DialectFor("stdin." + strings.TrimPrefix(lang, "."))
	if !ok {
		return nil, fmt.Errorf("unknown language %q", lang)
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return e.loader.LoadSource(ctx, "", d, src)
}

func parsePosition(s string) (line, col int, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q, expected <line>:<col>", s)
	}
	if line, err = strconv.Atoi(l); err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in %q", s)
	}
	if col, err = strconv.Atoi(c); err != nil || col < 1 {
		return 0, 0, fmt.Errorf("invalid column in %q", s)
	}
	return line, col, nil
}

// expressionAt returns the innermost node at the position, widened from a
// property name to the member access it belongs to.
func expressionAt(mod *module.Module, line, col int) ast.Node {
	n := mod.NodeAt(line, col)
	if id, ok := n.(*ast.Identifier); ok && !isReference(id) {
		if m, ok := id.Parent().(*ast.MemberExpression); ok {
			return m
		}
	}
	return n
}

// lastReference returns the last identifier in the program that refers to
// the variable name.
func lastReference(root ast.Node, name string) ast.Node {
	var last *ast.Identifier
	ast.Inspect(root, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok && id.Name == name && isReference(id) {
			if last == nil || id.Pos().StartByte > last.Pos().StartByte {
				last = id
			}
		}
		return true
	})
	if last == nil {
		return nil
	}
	return last
}

// isReference reports whether id names a variable rather than a property.
func isReference(id *ast.Identifier) bool {
	switch p := id.Parent().(type) {
	case *ast.MemberExpression:
		return p.Property != ast.Node(id) || p.Computed
	case *ast.Property:
		return p.Key != ast.Node(id) || p.Computed || p.Shorthand
	case *ast.MethodDefinition:
		return p.Key != ast.Node(id) || p.Computed
	case *ast.PropertyDefinition:
		return p.Key != ast.Node(id) || p.Computed
	}
	return true
}

func init() {
	traceCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	traceCmd.Flags().String("var", "", "Trace the last reference to this variable")
	traceCmd.Flags().String("lang", "js", "Source language when reading stdin (js, jsx, ts, tsx)")
}
