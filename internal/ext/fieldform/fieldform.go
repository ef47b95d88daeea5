// Package fieldform binds nodes to form controls and keeps the model in
// sync with control value changes.
package fieldform

import (
	"fmt"
	"time"

	"github.com/specialistvlad/dynaform/internal/expr"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/modelpath"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Name is the extension name.
const Name = "field-form"

// Module registers the field-form extension.
type Module struct{}

// Register registers the field-form extension with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExtension(registry.Extension{
		Name:         Name,
		OnPopulate:   onPopulate,
		PostPopulate: postPopulate,
	})
}

type updateOnSetter interface {
	SetUpdateOn(u forms.UpdateOn)
}

func onPopulate(f *field.Field) error {
	if f.IsRoot() {
		return nil
	}
	if f.Hide {
		f.Options().MarkHiddenForCheck(f)
	}
	if f.HasKey() {
		return addControl(f)
	}
	if f.IsGroup() && f.FormControl == nil {
		if g := f.ParentGroup(); g != nil {
			f.SetControl(g)
		}
	}
	return nil
}

func postPopulate(f *field.Field) error {
	if f.IsRoot() {
		f.Tree().Form().UpdateTreeValidity(forms.WithoutEvent())
		return nil
	}
	if !f.HasKey() || f.FormControl == nil {
		return nil
	}
	if expr.Truthy(f.TemplateOptions["disabled"]) && f.FormControl.Enabled() {
		f.FormControl.Disable(forms.WithoutEvent())
	}
	UpdateValidators(f)
	return nil
}

// addControl creates or reuses the control at the node's key inside the
// parent group. Nodes sharing a key share one control.
func addControl(f *field.Field) error {
	path, err := f.KeyPath()
	if err != nil {
		return fmt.Errorf("field %q: %w", f.ID, err)
	}
	group := f.ParentGroup()
	if group == nil {
		return fmt.Errorf("field %q: no parent form group", f.ID)
	}
	for _, s := range path[:len(path)-1] {
		group = subGroup(f, group, s.Name)
	}
	name := path[len(path)-1].Name

	value, _ := field.GetFieldValue(f)
	existing := group.Control(name)
	c := f.FormControl

	switch {
	case c != nil:
		if existing != c {
			group.SetControl(name, c)
		}
	case existing != nil:
		c = existing
	case f.IsGroup():
		c = forms.NewGroup()
		group.Register(name, c)
	default:
		var opts []forms.Option
		if u := updateOn(f); u != "" {
			opts = append(opts, forms.WithUpdateOn(u))
		}
		c = forms.NewFieldControl(modelpath.Clone(value), opts...)
		group.Register(name, c)
	}

	if u := updateOn(f); u != "" {
		if s, ok := c.(updateOnSetter); ok {
			s.SetUpdateOn(u)
		}
	}
	f.SetControl(c)

	if fc, ok := c.(*forms.FieldControl); ok {
		if !modelpath.Equal(fc.Value(), value) {
			fc.SetValue(modelpath.Clone(value), forms.WithoutEvent())
		}
		subscribe(f, fc)
	}
	return nil
}

func subGroup(f *field.Field, parent *forms.Group, name string) *forms.Group {
	switch c := parent.Control(name).(type) {
	case *forms.Group:
		return c
	case nil:
	default:
		f.Log().Warn("Replacing control with a group for a nested key.", "id", f.ID, "name", name)
	}
	g := forms.NewGroup()
	parent.SetControl(name, g)
	return g
}

func updateOn(f *field.Field) forms.UpdateOn {
	if f.ModelOptions == nil {
		return ""
	}
	switch u := forms.UpdateOn(f.ModelOptions.UpdateOn); u {
	case forms.UpdateOnChange, forms.UpdateOnBlur, forms.UpdateOnSubmit:
		return u
	}
	return ""
}

// subscribe forwards control value changes through the node's parsers and
// debounce into the model, then emits a valueChanges event.
func subscribe(f *field.Field, c *forms.FieldControl) {
	opts := f.Options()
	last := c.Value()
	var cancel func()

	apply := func(v any) {
		if err := field.AssignFieldValue(f, v); err != nil {
			f.Log().Warn("Control value not written to model.", "id", f.ID, "key", f.KeyString(), "error", err)
			return
		}
		opts.Emit(field.Event{Field: f, Value: v, Type: field.EventValueChanges})
	}

	sub := c.Subscribe(func(v any) {
		current, _ := field.GetFieldValue(f)
		if modelpath.Equal(v, last) && modelpath.Equal(v, current) {
			return
		}
		last = v
		for _, parse := range f.Parsers {
			v = parse(v)
		}

		if d := debounce(f); d > 0 && c.UpdateOn() == forms.UpdateOnChange && opts.Zone != nil {
			if cancel != nil {
				cancel()
			}
			cancel = opts.Zone.After(d, func() {
				cancel = nil
				apply(v)
			})
			return
		}
		apply(v)
	})

	f.OnTeardown(func() {
		sub.Unsubscribe()
		if cancel != nil {
			cancel()
			cancel = nil
		}
	})
}

func debounce(f *field.Field) time.Duration {
	if f.ModelOptions == nil || f.ModelOptions.Debounce == nil || f.ModelOptions.Debounce.Default <= 0 {
		return 0
	}
	return time.Duration(f.ModelOptions.Debounce.Default) * time.Millisecond
}

// UpdateValidators sets the validators of f's control to the union of the
// validators of every visible node bound to it, then re-validates.
func UpdateValidators(f *field.Field) {
	c := f.Control()
	tree := f.Tree()
	if c == nil || tree == nil {
		return
	}
	var syncFns []forms.ValidatorFn
	var asyncFns []forms.AsyncValidatorFn
	var checks []forms.ValidatorFn
	for _, n := range tree.Nodes() {
		if n.FormControl != c || !n.HasKey() || n.Hidden() {
			continue
		}
		rt := n.Runtime()
		syncFns = append(syncFns, rt.Validators...)
		asyncFns = append(asyncFns, rt.AsyncValidators...)
		checks = append(checks, rt.AsyncChecks...)
	}
	c.SetValidators(syncFns...)
	c.SetAsyncValidators(asyncFns...)
	c.SetAsyncChecks(checks...)
	c.UpdateValueAndValidity(forms.WithoutEvent())
}
