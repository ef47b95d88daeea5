package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Object lets host values take part in property access.
type Object interface {
	Attr(name string) (any, bool)
}

// Scope binds root names, e.g. model, formState and field.
type Scope map[string]any

// Eval evaluates the program. Runtime failures, such as a function rejecting
// its arguments, are returned as errors; callers usually treat them as nil.
func (p *Program) Eval(scope Scope) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("expr: %q panicked: %v", p.source, r)
		}
	}()
	return eval(p.root, scope)
}

func eval(expr hclsyntax.Expression, scope Scope) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return FromCty(e.Val), nil

	case *hclsyntax.TemplateExpr:
		if e.IsStringLiteral() {
			v, _ := e.Value(nil)
			return FromCty(v), nil
		}
		var sb strings.Builder
		for _, part := range e.Parts {
			v, err := eval(part, scope)
			if err != nil {
				return nil, err
			}
			sb.WriteString(ToString(v))
		}
		return sb.String(), nil

	case *hclsyntax.TemplateWrapExpr:
		return eval(e.Wrapped, scope)

	case *hclsyntax.ScopeTraversalExpr:
		root := e.Traversal.RootName()
		return traverse(scope[root], e.Traversal[1:])

	case *hclsyntax.RelativeTraversalExpr:
		src, err := eval(e.Source, scope)
		if err != nil {
			return nil, err
		}
		return traverse(src, e.Traversal)

	case *hclsyntax.IndexExpr:
		coll, err := eval(e.Collection, scope)
		if err != nil {
			return nil, err
		}
		key, err := eval(e.Key, scope)
		if err != nil {
			return nil, err
		}
		return index(coll, key), nil

	case *hclsyntax.ParenthesesExpr:
		return eval(e.Expression, scope)

	case *hclsyntax.UnaryOpExpr:
		v, err := eval(e.Val, scope)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case hclsyntax.OpLogicalNot:
			return !Truthy(v), nil
		case hclsyntax.OpNegate:
			return -ToNumber(v), nil
		}
		return nil, fmt.Errorf("%w: unary operator", ErrUnsupported)

	case *hclsyntax.BinaryOpExpr:
		return evalBinary(e, scope)

	case *hclsyntax.ConditionalExpr:
		cond, err := eval(e.Condition, scope)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return eval(e.TrueResult, scope)
		}
		return eval(e.FalseResult, scope)

	case *hclsyntax.TupleConsExpr:
		out := make([]any, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, err := eval(item, scope)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case *hclsyntax.ObjectConsExpr:
		out := make(map[string]any, len(e.Items))
		for _, item := range e.Items {
			key := hcl.ExprAsKeyword(item.KeyExpr)
			if key == "" {
				k, err := eval(item.KeyExpr, scope)
				if err != nil {
					return nil, err
				}
				key = ToString(k)
			}
			v, err := eval(item.ValueExpr, scope)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil

	case *hclsyntax.ObjectConsKeyExpr:
		return eval(e.Wrapped, scope)

	case *hclsyntax.FunctionCallExpr:
		args := make([]any, 0, len(e.Args))
		for _, arg := range e.Args {
			v, err := eval(arg, scope)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return call(e.Name, args)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, expr)
}

func evalBinary(e *hclsyntax.BinaryOpExpr, scope Scope) (any, error) {
	lhs, err := eval(e.LHS, scope)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case hclsyntax.OpLogicalAnd:
		if !Truthy(lhs) {
			return lhs, nil
		}
		return eval(e.RHS, scope)
	case hclsyntax.OpLogicalOr:
		if Truthy(lhs) {
			return lhs, nil
		}
		return eval(e.RHS, scope)
	}

	rhs, err := eval(e.RHS, scope)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case hclsyntax.OpEqual:
		return Equal(lhs, rhs), nil
	case hclsyntax.OpNotEqual:
		return !Equal(lhs, rhs), nil
	case hclsyntax.OpGreaterThan:
		return compare(lhs, rhs, func(c int) bool { return c > 0 }), nil
	case hclsyntax.OpGreaterThanOrEqual:
		return compare(lhs, rhs, func(c int) bool { return c >= 0 }), nil
	case hclsyntax.OpLessThan:
		return compare(lhs, rhs, func(c int) bool { return c < 0 }), nil
	case hclsyntax.OpLessThanOrEqual:
		return compare(lhs, rhs, func(c int) bool { return c <= 0 }), nil
	case hclsyntax.OpAdd:
		_, ls := lhs.(string)
		_, rs := rhs.(string)
		if ls || rs {
			return ToString(lhs) + ToString(rhs), nil
		}
		return ToNumber(lhs) + ToNumber(rhs), nil
	case hclsyntax.OpSubtract:
		return ToNumber(lhs) - ToNumber(rhs), nil
	case hclsyntax.OpMultiply:
		return ToNumber(lhs) * ToNumber(rhs), nil
	case hclsyntax.OpDivide:
		return ToNumber(lhs) / ToNumber(rhs), nil
	case hclsyntax.OpModulo:
		return math.Mod(ToNumber(lhs), ToNumber(rhs)), nil
	}
	return nil, fmt.Errorf("%w: binary operator", ErrUnsupported)
}

func traverse(v any, t hcl.Traversal) (any, error) {
	for _, step := range t {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			v = attr(v, s.Name)
		case hcl.TraverseIndex:
			v = index(v, FromCty(s.Key))
		default:
			return nil, fmt.Errorf("%w: traversal %T", ErrUnsupported, step)
		}
	}
	return v, nil
}
