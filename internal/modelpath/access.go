// internal/modelpath/access.go
package modelpath

import (
	"fmt"
)

// Get reads the value at p. A missing intermediate or leaf reports false.
// A present nil value reports true.
func Get(model any, p Path) (any, bool) {
	cur := model
	for _, s := range p {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[s.Name]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !s.IsIndex() || s.Index >= len(c) {
				return nil, false
			}
			cur = c[s.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether a value is present at p.
func Has(model any, p Path) bool {
	_, ok := Get(model, p)
	return ok
}

// Set writes v at p, creating intermediate containers as needed. The model
// is left untouched when the path conflicts with an existing array.
func Set(model map[string]any, p Path, v any) error {
	if model == nil {
		return ErrNoModel
	}
	if len(p) == 0 {
		return ErrEmptyKey
	}
	if err := checkShape(model, p); err != nil {
		return err
	}
	setIn(model, p, v)
	return nil
}

// MaxIndexGrowth bounds how many elements a single write may add to an array.
const MaxIndexGrowth = 1024

// checkShape walks existing containers along p without mutating them.
func checkShape(model any, p Path) error {
	cur := model
	for i, s := range p {
		switch c := cur.(type) {
		case map[string]any:
			next, ok := c[s.Name]
			if !ok {
				return checkGrowth(p[i+1:], p)
			}
			cur = next
		case []any:
			if !s.IsIndex() {
				return fmt.Errorf("%w: segment %q of %q addresses an array", ErrPathConflict, s.Name, p.String())
			}
			if s.Index >= len(c) {
				if s.Index-len(c) >= MaxIndexGrowth {
					return fmt.Errorf("%w: index %d of %q", ErrIndexOutOfRange, s.Index, p.String())
				}
				return checkGrowth(p[i+1:], p)
			}
			cur = c[s.Index]
		default:
			return checkGrowth(p[i:], p)
		}
	}
	return nil
}

// checkGrowth validates the segments that will create new arrays.
func checkGrowth(rest, p Path) error {
	for _, s := range rest {
		if s.IsIndex() && s.Index >= MaxIndexGrowth {
			return fmt.Errorf("%w: index %d of %q", ErrIndexOutOfRange, s.Index, p.String())
		}
	}
	return nil
}

// setIn assigns and returns the (possibly reallocated) container.
func setIn(cur any, p Path, v any) any {
	s := p[0]
	last := len(p) == 1

	switch c := cur.(type) {
	case map[string]any:
		if last {
			c[s.Name] = v
		} else {
			c[s.Name] = setIn(c[s.Name], p[1:], v)
		}
		return c
	case []any:
		for len(c) <= s.Index {
			c = append(c, nil)
		}
		if last {
			c[s.Index] = v
		} else {
			c[s.Index] = setIn(c[s.Index], p[1:], v)
		}
		return c
	default:
		// nil or a scalar: replace with a container shaped by the segment.
		if s.IsIndex() {
			return setIn(make([]any, 0, s.Index+1), p, v)
		}
		return setIn(make(map[string]any), p, v)
	}
}

// Delete removes the value at p. Array elements are set to nil so sibling
// indices stay stable. It reports whether a value was present.
func Delete(model any, p Path) bool {
	if len(p) == 0 {
		return false
	}
	parent, ok := Get(model, p[:len(p)-1])
	if !ok {
		return false
	}
	s := p[len(p)-1]
	switch c := parent.(type) {
	case map[string]any:
		if _, ok := c[s.Name]; !ok {
			return false
		}
		delete(c, s.Name)
		return true
	case []any:
		if !s.IsIndex() || s.Index >= len(c) {
			return false
		}
		c[s.Index] = nil
		return true
	}
	return false
}
