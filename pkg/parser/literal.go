package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/go-taint-trace/pkg/ast"
)

func (c *converter) stringLiteral(n *sitter.Node) *ast.Literal {
	raw := c.text(n)
	inner := raw
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	return &ast.Literal{Base: c.base(n), Kind: ast.StringLiteral, Value: unescape(inner), Raw: raw}
}

func (c *converter) numberLiteral(n *sitter.Node) *ast.Literal {
	raw := c.text(n)
	if strings.HasSuffix(raw, "n") {
		return &ast.Literal{Base: c.base(n), Kind: ast.BigIntLiteral, Value: strings.TrimSuffix(raw, "n"), Raw: raw}
	}
	return &ast.Literal{Base: c.base(n), Kind: ast.NumberLiteral, Value: normalizeNumber(raw), Raw: raw}
}

// normalizeNumber renders a numeric literal the way JavaScript stringifies
// it, so that `o[1]` and `o["1"]` name the same key.
func normalizeNumber(raw string) string {
	clean := strings.ReplaceAll(raw, "_", "")
	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(clean, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return raw
}

// template splits a template string into quasis around its substitutions.
func (c *converter) template(n *sitter.Node) *ast.TemplateLiteral {
	tpl := &ast.TemplateLiteral{Base: c.base(n)}
	prev := n.StartByte() + 1
	for _, child := range named(n) {
		if child.Type() != "template_substitution" {
			continue
		}
		tpl.Quasis = append(tpl.Quasis, c.quasi(n, prev, child.StartByte()))
		tpl.Expressions = append(tpl.Expressions, c.node(firstNamed(child)))
		prev = child.EndByte()
	}
	end := n.EndByte()
	if end > prev {
		end--
	}
	tpl.Quasis = append(tpl.Quasis, c.quasi(n, prev, end))
	return tpl
}

func (c *converter) quasi(tpl *sitter.Node, start, end uint32) *ast.TemplateElement {
	b := c.base(tpl)
	b.Loc.StartByte, b.Loc.EndByte = start, end
	raw := ""
	if start < end && int(end) <= len(c.src) {
		raw = string(c.src[start:end])
	}
	return &ast.TemplateElement{Base: b, Value: unescape(raw)}
}

// unescape decodes JavaScript string escape sequences.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 >= len(s) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch esc := s[i]; esc {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if r, ok := hexRune(s, i+1, i+3); ok {
				sb.WriteRune(r)
				i += 2
			} else {
				sb.WriteByte(esc)
			}
		case 'u':
			if i+1 < len(s) && s[i+1] == '{' {
				if end := strings.IndexByte(s[i:], '}'); end > 0 {
					if r, ok := hexRune(s, i+2, i+end); ok {
						sb.WriteRune(r)
						i += end
						continue
					}
				}
			} else if r, ok := hexRune(s, i+1, i+5); ok {
				sb.WriteRune(r)
				i += 4
				continue
			}
			sb.WriteByte(esc)
		default:
			sb.WriteByte(esc)
		}
	}
	return sb.String()
}

func hexRune(s string, start, end int) (rune, bool) {
	if start >= end || end > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:end], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}
	return rune(v), true
}
