package expr

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions is the call allow-list.
var functions = map[string]function.Function{
	"abs":       stdlib.AbsoluteFunc,
	"ceil":      stdlib.CeilFunc,
	"coalesce":  stdlib.CoalesceFunc,
	"contains":  stdlib.ContainsFunc,
	"floor":     stdlib.FloorFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"keys":      stdlib.KeysFunc,
	"length":    stdlib.LengthFunc,
	"lower":     stdlib.LowerFunc,
	"max":       stdlib.MaxFunc,
	"min":       stdlib.MinFunc,
	"regex":     stdlib.RegexFunc,
	"regexall":  stdlib.RegexAllFunc,
	"replace":   stdlib.ReplaceFunc,
	"split":     stdlib.SplitFunc,
	"strlen":    stdlib.StrlenFunc,
	"substr":    stdlib.SubstrFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}

// Functions returns the names callable from expressions.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func call(name string, args []any) (any, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: function %q is not allowed", ErrUnsupported, name)
	}
	ctyArgs := make([]cty.Value, 0, len(args))
	for _, a := range args {
		v, err := ToCty(a)
		if err != nil {
			return nil, fmt.Errorf("expr: %s(): %w", name, err)
		}
		ctyArgs = append(ctyArgs, v)
	}
	out, err := fn.Call(ctyArgs)
	if err != nil {
		return nil, fmt.Errorf("expr: %s(): %w", name, err)
	}
	return FromCty(out), nil
}

// ToCty converts plain Go data into a cty value.
func ToCty(v any) (cty.Value, error) {
	if f, ok := asNumber(v); ok {
		return cty.NumberFloatVal(f), nil
	}
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, 0, len(x))
		for _, item := range x {
			cv, err := ToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			items = append(items, cv)
		}
		return cty.TupleVal(items), nil
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return ToCty(items)
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, item := range x {
			cv, err := ToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("cannot pass %T to a function", v)
}

// FromCty converts a cty value into plain Go data. Unknown values become nil.
func FromCty(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, item := it.Element()
			out = append(out, FromCty(item))
		}
		return out
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, item := it.Element()
			out[k.AsString()] = FromCty(item)
		}
		return out
	}
	return nil
}
