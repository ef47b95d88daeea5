// internal/modelpath/clone.go
package modelpath

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// Clone deep-copies JSON-like data. Values of other kinds are shared.
func Clone(v any) any {
	switch c := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, item := range c {
			out[k] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, item := range c {
			out[i] = Clone(item)
		}
		return out
	case []string:
		return append([]string(nil), c...)
	default:
		return v
	}
}

// CloneMap deep-copies a model map. A nil input yields an empty map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	return Clone(m).(map[string]any)
}

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// Equal reports deep equality. Numbers compare by value regardless of their
// Go type. Values that cannot be compared structurally are never equal.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return cmpEqual(a, b)
}

func cmpEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return cmp.Equal(a, b, exportAll)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
