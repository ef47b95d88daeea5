package registry

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dynaform/internal/field"
)

// Defaulter is an optional capability of a type component contributing
// defaults of its own, merged after the registered ones.
type Defaulter interface {
	DefaultOptions() *field.Field
}

// ResolveType walks the extends chain of name and returns the flattened
// registration: the nearest component and wrappers win, defaults of the
// whole chain are reverse-merged from child to ancestor.
func (r *Registry) ResolveType(name string) (*TypeOption, error) {
	var chain []*TypeOption
	seen := make(map[string]bool)
	for cur := name; cur != ""; {
		if seen[cur] {
			path := make([]string, 0, len(chain)+1)
			for _, t := range chain {
				path = append(path, t.Name)
			}
			path = append(path, cur)
			return nil, fmt.Errorf("%w: %s", ErrExtendsCycle, strings.Join(path, " -> "))
		}
		seen[cur] = true

		t, ok := r.types[cur]
		if !ok {
			if cur == name {
				return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
			}
			return nil, fmt.Errorf("%w: %q extends unregistered %q", ErrUnknownType, chain[len(chain)-1].Name, cur)
		}
		chain = append(chain, t)
		cur = t.Extends
	}

	out := &TypeOption{Name: name, Extends: chain[0].Extends}
	for _, t := range chain {
		if out.Component == nil {
			out.Component = t.Component
		}
		if len(out.Wrappers) == 0 && len(t.Wrappers) > 0 {
			out.Wrappers = append([]string(nil), t.Wrappers...)
		}
		if t.DefaultOptions != nil {
			if out.DefaultOptions == nil {
				out.DefaultOptions = t.DefaultOptions.Clone()
			} else {
				field.MergeDefaults(out.DefaultOptions, t.DefaultOptions)
			}
		}
	}
	return out, nil
}

// GetMergedField applies the defaults of f's type, then of each of its
// OptionsTypes, then of the component itself onto f. Values set by the
// author win. The type's wrappers are prepended to f's own, de-duplicated.
func (r *Registry) GetMergedField(f *field.Field) error {
	if f.Type == "" {
		return r.mergeOptionsTypes(f)
	}

	t, err := r.ResolveType(f.Type)
	if err != nil {
		return err
	}
	if t.DefaultOptions != nil {
		field.MergeDefaults(f, t.DefaultOptions)
	}
	if err := r.mergeOptionsTypes(f); err != nil {
		return err
	}
	if d, ok := t.Component.(Defaulter); ok {
		if defaults := d.DefaultOptions(); defaults != nil {
			field.MergeDefaults(f, defaults)
		}
	}

	if len(t.Wrappers) > 0 {
		var wrappers []string
		for _, w := range t.Wrappers {
			if !contains(f.Wrappers, w) {
				wrappers = appendUnique(wrappers, w)
			}
		}
		f.Wrappers = append(wrappers, f.Wrappers...)
	}
	return nil
}

func (r *Registry) mergeOptionsTypes(f *field.Field) error {
	for _, name := range f.OptionsTypes {
		t, err := r.ResolveType(name)
		if err != nil {
			return fmt.Errorf("optionsTypes: %w", err)
		}
		if t.DefaultOptions != nil {
			field.MergeDefaults(f, t.DefaultOptions)
		}
	}
	return nil
}

// Component returns the resolved component for a type name.
func (r *Registry) Component(name string) (any, error) {
	t, err := r.ResolveType(name)
	if err != nil {
		return nil, err
	}
	return t.Component, nil
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
