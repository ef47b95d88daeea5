package expr

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/dynaform/internal/modelpath"
)

// Truthy applies JavaScript truthiness: nil, false, 0, NaN and "" are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := asNumber(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Equal is strict equality with numbers compared by value and containers
// compared structurally.
func Equal(a, b any) bool {
	return modelpath.Equal(a, b)
}

// ToNumber converts like JavaScript's Number(): nil and false are 0, true
// is 1, numeric strings parse, anything else is NaN.
func ToNumber(v any) float64 {
	if f, ok := asNumber(v); ok {
		return f
	}
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// ToString renders v for concatenation and templates. nil renders empty.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := asNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func compare(a, b any, ok func(int) bool) bool {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return ok(strings.Compare(as, bs))
	}
	x, y := ToNumber(a), ToNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	switch {
	case x < y:
		return ok(-1)
	case x > y:
		return ok(1)
	}
	return ok(0)
}

// attr reads a named property. Missing values yield nil.
func attr(v any, name string) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Object:
		if out, ok := x.Attr(name); ok {
			return out
		}
		return nil
	case map[string]any:
		return x[name]
	case string:
		if name == "length" {
			return float64(utf8.RuneCountInString(x))
		}
		return nil
	case []any:
		if name == "length" {
			return float64(len(x))
		}
		if i, err := strconv.Atoi(name); err == nil {
			return index(x, float64(i))
		}
		return nil
	}
	return reflectAttr(v, name)
}

// index reads v[key]. Missing values yield nil.
func index(v any, key any) any {
	if s, ok := key.(string); ok {
		if _, isSlice := v.([]any); !isSlice {
			return attr(v, s)
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return attr(v, s)
		}
		key = float64(i)
	}
	f, ok := asNumber(key)
	if !ok || f != math.Trunc(f) || f < 0 {
		return nil
	}
	i := int(f)
	switch x := v.(type) {
	case []any:
		if i < len(x) {
			return x[i]
		}
		return nil
	case string:
		r := []rune(x)
		if i < len(r) {
			return string(r[i])
		}
		return nil
	case map[string]any:
		return x[strconv.Itoa(i)]
	case Object:
		return attr(x, strconv.Itoa(i))
	}
	return reflectIndex(v, i)
}

func reflectAttr(v any, name string) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		item := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !item.IsValid() {
			return nil
		}
		return item.Interface()
	case reflect.Slice, reflect.Array:
		if name == "length" {
			return float64(rv.Len())
		}
	}
	return nil
}

func reflectIndex(v any, i int) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i < rv.Len() {
			return rv.Index(i).Interface()
		}
	}
	return nil
}
