package expr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

var (
	// ErrSyntax is returned when a source cannot be parsed.
	ErrSyntax = errors.New("expr: syntax error")
	// ErrUnsupported is returned for constructs outside the allowed subset.
	ErrUnsupported = errors.New("expr: unsupported construct")
)

// Program is a compiled expression, safe for repeated evaluation.
type Program struct {
	source string
	root   hclsyntax.Expression
}

// Compile parses and validates src.
func Compile(src string) (*Program, error) {
	normalized, err := normalize(src)
	if err != nil {
		return nil, err
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(normalized), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w in %q: %s", ErrSyntax, src, diags.Error())
	}
	if err := validate(parsed); err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	return &Program{source: src, root: parsed}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the expression as written.
func (p *Program) Source() string { return p.source }

// References returns the sorted, de-duplicated variable traversals the
// expression reads, e.g. `model.address.city`.
func (p *Program) References() []string {
	seen := make(map[string]struct{})
	for _, t := range p.root.Variables() {
		seen[traversalKey(t)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func traversalKey(t hcl.Traversal) string {
	return strings.TrimSpace(string(hclwrite.TokensForTraversal(t).Bytes()))
}

// validate walks the syntax tree and rejects nodes outside the subset.
func validate(expr hclsyntax.Expression) error {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr, *hclsyntax.ScopeTraversalExpr:
		return nil
	case *hclsyntax.RelativeTraversalExpr:
		return validate(e.Source)
	case *hclsyntax.FunctionCallExpr:
		if _, ok := functions[e.Name]; !ok {
			return fmt.Errorf("%w: function %q is not allowed", ErrUnsupported, e.Name)
		}
		if e.ExpandFinal {
			return fmt.Errorf("%w: argument expansion", ErrUnsupported)
		}
		for _, arg := range e.Args {
			if err := validate(arg); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.BinaryOpExpr:
		if err := validate(e.LHS); err != nil {
			return err
		}
		return validate(e.RHS)
	case *hclsyntax.UnaryOpExpr:
		return validate(e.Val)
	case *hclsyntax.ConditionalExpr:
		for _, sub := range []hclsyntax.Expression{e.Condition, e.TrueResult, e.FalseResult} {
			if err := validate(sub); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			if err := validate(part); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.TemplateWrapExpr:
		return validate(e.Wrapped)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			if err := validate(item); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			if err := validate(item.KeyExpr); err != nil {
				return err
			}
			if err := validate(item.ValueExpr); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.ObjectConsKeyExpr:
		return validate(e.Wrapped)
	case *hclsyntax.IndexExpr:
		if err := validate(e.Collection); err != nil {
			return err
		}
		return validate(e.Key)
	case *hclsyntax.ParenthesesExpr:
		return validate(e.Expression)
	}
	return fmt.Errorf("%w: %T", ErrUnsupported, expr)
}

// normalize rewrites the JavaScript-isms the HCL parser does not accept:
// single-quoted strings, strict equality operators and template markers
// inside string literals.
func normalize(src string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			lit, n, ok := readString(src[i:])
			if !ok {
				return "", fmt.Errorf("%w in %q: unterminated string", ErrSyntax, src)
			}
			sb.WriteString(quote(lit))
			i += n
		case strings.HasPrefix(src[i:], "==="):
			sb.WriteString("==")
			i += 3
		case strings.HasPrefix(src[i:], "!=="):
			sb.WriteString("!=")
			i += 3
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}

// readString decodes a quoted literal at the start of s, returning its
// content and the number of bytes consumed.
func readString(s string) (string, int, bool) {
	q := s[0]
	var sb strings.Builder
	for j := 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '\\' && j+1 < len(s):
			j++
			switch s[j] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(s[j])
			}
		case c == q:
			return sb.String(), j + 1, true
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, false
}

func quote(lit string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\t", `\t`,
		"\r", `\r`,
		"${", "$${",
		"%{", "%%{",
	)
	return `"` + r.Replace(lit) + `"`
}
