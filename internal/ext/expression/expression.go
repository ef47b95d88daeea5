// Package expression compiles hideExpression and expressionProperties once
// per build and re-applies their results whenever they change.
package expression

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/dynaform/internal/expr"
	"github.com/specialistvlad/dynaform/internal/ext/fieldform"
	"github.com/specialistvlad/dynaform/internal/ext/validation"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/modelpath"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Name is the extension name.
const Name = "field-expression"

// maxPasses bounds re-checks triggered by expressions writing the model.
const maxPasses = 10

// Module registers the field-expression extension.
type Module struct{}

// Register registers the field-expression extension with the registry.
func (m *Module) Register(r *registry.Registry) {
	e := &extension{reg: r}
	r.RegisterExtension(registry.Extension{
		Name:         Name,
		OnPopulate:   e.onPopulate,
		PostPopulate: e.postPopulate,
	})
}

type extension struct {
	reg *registry.Registry
}

func (e *extension) onPopulate(f *field.Field) error {
	compiled, err := compileAll(f)
	if err != nil {
		return fmt.Errorf("field %q: %w", f.ID, err)
	}
	rt := f.Runtime()
	rt.Expressions = compiled
	rt.Cache = make(map[string]any, len(compiled))
	return nil
}

func (e *extension) postPopulate(f *field.Field) error {
	if !f.IsRoot() {
		return nil
	}
	opts := f.Options()
	opts.Once("checkExpressions", func() {
		opts.CheckExpressions = e.checkExpressions
	})
	return nil
}

// pass collects the effects of one check.
type pass struct {
	ignoreCache  bool
	modelChanged bool
	changed      []*field.Field
	seen         map[*field.Field]bool
}

func (p *pass) markChanged(f *field.Field) {
	if p.seen[f] {
		return
	}
	p.seen[f] = true
	p.changed = append(p.changed, f)
}

func (e *extension) checkExpressions(root *field.Field, ignoreCache bool) {
	if root == nil || root.Options() == nil {
		return
	}
	opts := root.Options()

	for i := 0; i < maxPasses; i++ {
		p := &pass{ignoreCache: ignoreCache, seen: make(map[*field.Field]bool)}
		field.Walk(root, func(n *field.Field) { e.checkField(n, p) })

		hidden := opts.TakeHiddenForCheck()
		sort.SliceStable(hidden, func(a, b int) bool { return hidden[a].Hide && !hidden[b].Hide })
		for _, n := range hidden {
			e.toggle(n, n.Hidden())
			p.markChanged(n)
		}

		if p.modelChanged {
			syncControls(root)
		}
		if opts.ChangeDetector != nil {
			for _, n := range p.changed {
				opts.ChangeDetector(n)
			}
		}
		if !p.modelChanged {
			return
		}
		ignoreCache = false
	}
	opts.Log().Warn("Expressions did not settle.", "passes", maxPasses)
}

func (e *extension) checkField(f *field.Field, p *pass) {
	rt := f.Runtime()
	if len(rt.Expressions) == 0 {
		return
	}
	opts := f.Options()
	model := f.Model()

	paths := make([]string, 0, len(rt.Expressions))
	for path := range rt.Expressions {
		if path != field.HideKey {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		value := rt.Expressions[path](model, opts.FormState, f)
		if cached, ok := rt.Cache[path]; ok && !p.ignoreCache && modelpath.Equal(cached, value) {
			continue
		}
		rt.Cache[path] = modelpath.Clone(value)
		e.apply(f, path, value, p)
		opts.Emit(field.Event{Field: f, Value: value, Type: field.EventExpression, Name: path})
	}

	if ev, ok := rt.Expressions[field.HideKey]; ok {
		hide := expr.Truthy(ev(model, opts.FormState, f))
		if p.ignoreCache || hide != f.Hide {
			f.Hide = hide
			rt.Cache[field.HideKey] = hide
			opts.MarkHiddenForCheck(f)
		}
	}
}

func (e *extension) apply(f *field.Field, path string, value any, p *pass) {
	p.markChanged(f)
	switch {
	case strings.HasPrefix(path, "templateOptions."):
		name := strings.TrimPrefix(path, "templateOptions.")
		if err := setNested(f.TO(), name, value); err != nil {
			f.Log().Warn("Expression result not applied.", "id", f.ID, "path", path, "error", err)
			return
		}
		root := strings.SplitN(name, ".", 2)[0]
		c := f.Control()
		if c == nil || !f.HasKey() {
			return
		}
		switch {
		case root == "disabled" && !f.Hidden():
			if expr.Truthy(value) {
				c.Disable(forms.WithoutEvent())
			} else {
				c.Enable(forms.WithoutEvent())
			}
		case validation.IsParam(root):
			c.UpdateValueAndValidity(forms.WithoutEvent())
		}

	case strings.HasPrefix(path, "model."):
		m, ok := f.Model().(map[string]any)
		if !ok {
			f.Log().Warn("Expression writes into a non-object model.", "id", f.ID, "path", path)
			return
		}
		if err := setNested(m, strings.TrimPrefix(path, "model."), modelpath.Clone(value)); err != nil {
			f.Log().Warn("Expression result not applied.", "id", f.ID, "path", path, "error", err)
			return
		}
		p.modelChanged = true

	case strings.HasPrefix(path, "props."):
		if f.Props == nil {
			f.Props = make(map[string]any)
		}
		if err := setNested(f.Props, strings.TrimPrefix(path, "props."), value); err != nil {
			f.Log().Warn("Expression result not applied.", "id", f.ID, "path", path, "error", err)
		}

	case path == "className":
		f.ClassName = expr.ToString(value)
	case path == "fieldGroupClassName":
		f.FieldGroupClassName = expr.ToString(value)
	case path == "template":
		f.Template = expr.ToString(value)
	case path == "focus":
		f.Focus = expr.Truthy(value)

	default:
		if f.Props == nil {
			f.Props = make(map[string]any)
		}
		if err := setNested(f.Props, path, value); err != nil {
			f.Log().Warn("Expression result not applied.", "id", f.ID, "path", path, "error", err)
		}
	}
}

func setNested(m map[string]any, key string, value any) error {
	p, err := modelpath.Parse(key)
	if err != nil {
		return err
	}
	return modelpath.Set(m, p, value)
}

// toggle applies a visibility change to f and its descendants: controls are
// disabled once every node bound to them is hidden, validators of hidden
// nodes are dropped and, with resetFieldOnHide, values are cleared on hide
// and defaults re-applied on show.
func (e *extension) toggle(f *field.Field, hide bool) {
	extras := e.reg.Extras()
	e.toggleNode(f, hide, extras)
}

func (e *extension) toggleNode(n *field.Field, hide bool, extras registry.ResolvedExtras) {
	if n.HasKey() {
		if hide {
			if extras.ResetFieldOnHide {
				field.UnsetFieldValue(n)
			}
		} else if extras.ResetFieldOnHide && n.HasDefaultValue() {
			if _, ok := field.GetFieldValue(n); !ok {
				if err := field.AssignFieldValue(n, modelpath.Clone(n.DefaultValue)); err != nil {
					n.Log().Warn("Default value not assigned.", "id", n.ID, "error", err)
				}
			}
		}

		if c := n.Control(); c != nil {
			if fc, ok := c.(*forms.FieldControl); ok {
				v, _ := field.GetFieldValue(n)
				if !modelpath.Equal(fc.Value(), v) {
					fc.SetValue(modelpath.Clone(v), forms.WithoutEvent())
				}
			}
			switch {
			case hide && allHidden(n, c):
				if c.Enabled() {
					c.Disable(forms.WithoutEvent())
				}
			case !hide && c.Disabled() && !expr.Truthy(n.TemplateOptions["disabled"]):
				c.Enable(forms.WithoutEvent())
			}
			fieldform.UpdateValidators(n)
		}
	}

	if !hide && extras.LazyRender {
		rt := n.Runtime()
		if !rt.Initialized {
			rt.Initialized = true
			if n.Hooks != nil && n.Hooks.OnInit != nil {
				n.Hooks.OnInit(n)
			}
		}
	}

	for _, child := range n.FieldGroup {
		if child != nil {
			e.toggleNode(child, hide || child.Hide, extras)
		}
	}
}

func allHidden(n *field.Field, c forms.Control) bool {
	for _, other := range n.Tree().Nodes() {
		if other.FormControl == c && other.HasKey() && !other.Hidden() {
			return false
		}
	}
	return true
}

// syncControls refreshes leaf controls whose value differs from the model.
func syncControls(root *field.Field) {
	field.Walk(root, func(n *field.Field) {
		fc, ok := n.Control().(*forms.FieldControl)
		if !ok || !n.HasKey() {
			return
		}
		v, _ := field.GetFieldValue(n)
		if !modelpath.Equal(fc.Value(), v) {
			fc.SetValue(modelpath.Clone(v), forms.WithoutEvent())
		}
	})
}
