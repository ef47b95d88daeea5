package expression

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dynaform/internal/expr"
	"github.com/specialistvlad/dynaform/internal/field"
)

// Compile turns an expression into an evaluator. String sources see model,
// formState and field. Evaluation failures and panics yield nil.
func Compile(e *field.Expression) (field.Evaluator, error) {
	if e == nil {
		return nil, nil
	}
	if e.Func != nil {
		fn := e.Func
		return func(model any, formState map[string]any, f *field.Field) (out any) {
			defer func() {
				if r := recover(); r != nil {
					f.Log().Debug("Expression function panicked.", "id", idOf(f), "panic", r)
					out = nil
				}
			}()
			return fn(model, formState, f)
		}, nil
	}

	prog, err := expr.Compile(e.Source)
	if err != nil {
		return nil, err
	}
	return func(model any, formState map[string]any, f *field.Field) any {
		out, err := prog.Eval(expr.Scope{
			"model":     model,
			"formState": formState,
			"field":     f,
		})
		if err != nil {
			f.Log().Debug("Expression evaluation failed.", "id", idOf(f), "expression", prog.Source(), "error", err)
			return nil
		}
		return out
	}, nil
}

// normalizePath maps the "to." shorthand onto templateOptions.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "to.") {
		return "templateOptions." + strings.TrimPrefix(path, "to.")
	}
	return path
}

func compileAll(f *field.Field) (map[string]field.Evaluator, error) {
	out := make(map[string]field.Evaluator, len(f.ExpressionProperties)+1)
	for path, e := range f.ExpressionProperties {
		ev, err := Compile(e)
		if err != nil {
			return nil, fmt.Errorf("expressionProperties[%q]: %w", path, err)
		}
		if ev != nil {
			out[normalizePath(path)] = ev
		}
	}
	if f.HideExpression != nil {
		ev, err := Compile(f.HideExpression)
		if err != nil {
			return nil, fmt.Errorf("hideExpression: %w", err)
		}
		out[field.HideKey] = ev
	}
	return out, nil
}

func idOf(f *field.Field) string {
	if f == nil {
		return ""
	}
	return f.ID
}
