// internal/modelpath/parser.go
package modelpath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse normalizes a field key into a Path.
//
// Strings without brackets split on `.`. Strings with brackets split on the
// brackets first and then on `.`, dropping empty parts, so `a[0].b` and
// `a.0.b` yield the same segments. Integer keys are a single segment.
// Segment lists are taken literally.
func Parse(key any) (Path, error) {
	var p Path
	switch k := key.(type) {
	case Path:
		p = append(Path(nil), k...)
	case string:
		p = parseString(k)
	case int:
		p = Path{NewSegment(strconv.Itoa(k))}
	case int64:
		p = Path{NewSegment(strconv.FormatInt(k, 10))}
	case float64:
		if k != math.Trunc(k) {
			return nil, fmt.Errorf("%w: non-integer number %v", ErrUnsupportedKey, k)
		}
		p = Path{NewSegment(strconv.FormatInt(int64(k), 10))}
	case []string:
		for _, s := range k {
			p = append(p, NewSegment(s))
		}
	case []any:
		for _, item := range k {
			switch s := item.(type) {
			case string:
				p = append(p, NewSegment(s))
			case int:
				p = append(p, NewSegment(strconv.Itoa(s)))
			case float64:
				p = append(p, NewSegment(strconv.FormatInt(int64(s), 10)))
			default:
				return nil, fmt.Errorf("%w: segment %T", ErrUnsupportedKey, item)
			}
		}
	case nil:
		return nil, ErrEmptyKey
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}

	if len(p) == 0 {
		return nil, ErrEmptyKey
	}
	return p, nil
}

// MustParse is Parse that panics on error. Intended for tests and constants.
func MustParse(key any) Path {
	p, err := Parse(key)
	if err != nil {
		panic(err)
	}
	return p
}

func parseString(key string) Path {
	var parts []string
	if !strings.Contains(key, "[") {
		parts = strings.Split(key, ".")
	} else {
		for _, chunk := range strings.FieldsFunc(key, func(r rune) bool { return r == '[' || r == ']' }) {
			parts = append(parts, strings.Split(chunk, ".")...)
		}
	}

	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		p = append(p, NewSegment(part))
	}
	return p
}
