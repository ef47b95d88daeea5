package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/specialistvlad/dynaform/internal/expr"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/modelpath"
)

// builtinOrder lists the templateOptions keys that imply a validator.
var builtinOrder = []string{
	"required",
	"pattern",
	"minLength",
	"maxLength",
	"min",
	"max",
	"multipleOf",
	"minItems",
	"maxItems",
	"uniqueItems",
}

// IsParam reports whether a templateOptions key parameterises a built-in validator.
func IsParam(name string) bool {
	for _, n := range builtinOrder {
		if n == name {
			return true
		}
	}
	return false
}

// HasParam reports whether f sets the validator parameter name, directly
// or through an expression property.
func HasParam(f *field.Field, name string) bool {
	if _, ok := f.TemplateOptions[name]; ok {
		return true
	}
	return f.ExpressionProperties["templateOptions."+name] != nil ||
		f.ExpressionProperties["to."+name] != nil
}

// builtin returns a validator reading its parameter from f at run time.
func builtin(f *field.Field, name string) forms.ValidatorFn {
	return func(c forms.Control) forms.Errors {
		param, ok := f.TemplateOptions[name]
		if !ok || param == nil {
			return nil
		}
		return check(name, param, c.Value())
	}
}

func check(name string, param, value any) forms.Errors {
	switch name {
	case "required":
		if expr.Truthy(param) && IsEmpty(value) {
			return forms.Errors{"required": true}
		}

	case "pattern":
		if IsEmpty(value) {
			return nil
		}
		re, src, err := compilePattern(param)
		if err != nil || re == nil {
			return nil
		}
		actual := expr.ToString(value)
		if !re.MatchString(actual) {
			return forms.Errors{"pattern": map[string]any{"requiredPattern": src, "actualValue": actual}}
		}

	case "minLength", "maxLength":
		if IsEmpty(value) {
			return nil
		}
		n, ok := number(param)
		l, hasLen := length(value)
		if !ok || !hasLen {
			return nil
		}
		if (name == "minLength" && float64(l) < n) || (name == "maxLength" && float64(l) > n) {
			return forms.Errors{name: map[string]any{"requiredLength": param, "actualLength": l}}
		}

	case "min", "max":
		if IsEmpty(value) {
			return nil
		}
		limit, ok := number(param)
		v := expr.ToNumber(value)
		if !ok || math.IsNaN(v) {
			return nil
		}
		if (name == "min" && v < limit) || (name == "max" && v > limit) {
			return forms.Errors{name: map[string]any{name: param, "actual": value}}
		}

	case "multipleOf":
		if IsEmpty(value) {
			return nil
		}
		m, ok := number(param)
		v := expr.ToNumber(value)
		if !ok || m == 0 || math.IsNaN(v) {
			return nil
		}
		if !IsMultipleOf(v, m) {
			return forms.Errors{"multipleOf": map[string]any{"multipleOf": param, "actual": value}}
		}

	case "minItems", "maxItems":
		items, isList := value.([]any)
		n, ok := number(param)
		if !isList || !ok {
			return nil
		}
		if (name == "minItems" && float64(len(items)) < n) || (name == "maxItems" && float64(len(items)) > n) {
			return forms.Errors{name: map[string]any{name: param, "actualItems": len(items)}}
		}

	case "uniqueItems":
		items, isList := value.([]any)
		if !isList || !expr.Truthy(param) {
			return nil
		}
		for i := range items {
			for j := i + 1; j < len(items); j++ {
				if modelpath.Equal(items[i], items[j]) {
					return forms.Errors{"uniqueItems": true}
				}
			}
		}
	}
	return nil
}

// IsEmpty reports nil, empty strings and empty lists.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}

// IsMultipleOf checks divisibility after scaling both operands to integers,
// so 0.3 is a multiple of 0.1.
func IsMultipleOf(value, multipleOf float64) bool {
	scale := math.Pow(10, float64(max(decimals(value), decimals(multipleOf))))
	v := math.Round(value * scale)
	m := math.Round(multipleOf * scale)
	return math.Mod(v, m) == 0
}

const maxDecimals = 10

func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return min(len(s)-i-1, maxDecimals)
	}
	return 0
}

func number(v any) (float64, bool) {
	f := expr.ToNumber(v)
	if _, isBool := v.(bool); isBool || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	}
	return 0, false
}

var patterns sync.Map

// AnchorPattern makes p match whole values. Patterns already anchored at
// both ends are kept; others are grouped so alternations stay anchored.
func AnchorPattern(p string) string {
	if strings.HasPrefix(p, "^") && strings.HasSuffix(p, "$") && !strings.HasSuffix(p, `\$`) {
		return p
	}
	return "^(?:" + p + ")$"
}

// compilePattern compiles string patterns through AnchorPattern.
func compilePattern(param any) (*regexp.Regexp, string, error) {
	switch p := param.(type) {
	case *regexp.Regexp:
		return p, p.String(), nil
	case string:
		if p == "" {
			return nil, p, nil
		}
		src := AnchorPattern(p)
		if re, ok := patterns.Load(src); ok {
			return re.(*regexp.Regexp), src, nil
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, src, err
		}
		patterns.Store(src, re)
		return re, src, nil
	}
	return nil, "", nil
}
