// Package parser turns JavaScript and TypeScript sources into pkg/ast trees
// using the tree-sitter grammars.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

// ErrUnsupported is returned for files whose extension has no grammar.
var ErrUnsupported = errors.New("unsupported file type")

// Dialect selects the grammar used for a source file.
type Dialect int

const (
	JavaScript Dialect = iota
	TypeScript
	TSX
)

func (d Dialect) String() string {
	switch d {
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return "javascript"
	}
}

func (d Dialect) language() *sitter.Language {
	switch d {
	case TypeScript:
		return typescript.GetLanguage()
	case TSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

var extDialects = map[string]Dialect{
	".js":  JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".jsx": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

// DialectFor returns the dialect for a file path based on its extension.
func DialectFor(path string) (Dialect, bool) {
	d, ok := extDialects[strings.ToLower(filepath.Ext(path))]
	return d, ok
}

// Extensions returns the file extensions the parser understands.
func Extensions() []string {
	exts := make([]string, 0, len(extDialects))
	for ext := range extDialects {
		exts = append(exts, ext)
	}
	return exts
}

// Parser converts source text to an *ast.Program. It is safe for concurrent
// use: every call creates its own tree-sitter parser.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses src using the dialect implied by path.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*ast.Program, error) {
	d, ok := DialectFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return p.ParseDialect(ctx, d, src)
}

// ParseDialect parses src with an explicit dialect. Syntax errors do not fail
// the parse; the erroneous regions become ast.Unknown nodes.
func (p *Parser) ParseDialect(ctx context.Context, d Dialect, src []byte) (*ast.Program, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(d.language())

	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", d, err)
	}
	defer tree.Close()

	c := &converter{src: src}
	prog := c.program(tree.RootNode())
	ast.LinkParents(prog)
	return prog, nil
}
