// Package core is the extension every build depends on. It wires the root
// options, assigns ids, classifies structural nodes, merges type defaults
// and applies the default-value policy.
package core

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/modelpath"
	"github.com/specialistvlad/dynaform/internal/notify"
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/internal/zone"
)

// Structural type names assigned by classification.
const (
	TypeGroup    = "group"
	TypeTemplate = "template"
	TypeUnknown  = "unknown"
)

// GroupType renders a fieldGroup without a widget of its own.
type GroupType struct{}

// TemplateType renders static template content.
type TemplateType struct{}

// Module registers the core extension and the structural types.
type Module struct{}

var formSeq atomic.Int64

// Register registers the core extension with the registry.
func (m *Module) Register(r *registry.Registry) {
	e := &extension{reg: r}
	r.RegisterType(registry.TypeOption{Name: TypeGroup, Component: &GroupType{}})
	r.RegisterType(registry.TypeOption{Name: TypeTemplate, Component: &TemplateType{}})
	r.RegisterExtension(registry.Extension{
		Name:         registry.CoreExtension,
		PrePopulate:  e.prePopulate,
		OnPopulate:   e.onPopulate,
		PostPopulate: e.postPopulate,
	})
}

type extension struct {
	reg *registry.Registry
}

func (e *extension) prePopulate(f *field.Field) error {
	if f.IsRoot() {
		e.initRootOptions(f)
	}
	if c, ok := e.component(f).(registry.PrePopulater); ok {
		return c.PrePopulate(f)
	}
	return nil
}

func (e *extension) onPopulate(f *field.Field) error {
	if err := e.initFieldOptions(f); err != nil {
		return err
	}
	if c, ok := e.component(f).(registry.OnPopulater); ok {
		if err := c.OnPopulate(f); err != nil {
			return err
		}
	}
	for i, child := range f.FieldGroup {
		if child != nil {
			f.AttachChild(child, i)
		}
	}
	return nil
}

func (e *extension) postPopulate(f *field.Field) error {
	if c, ok := e.component(f).(registry.PostPopulater); ok {
		return c.PostPopulate(f)
	}
	return nil
}

func (e *extension) initRootOptions(root *field.Field) {
	tree := root.Tree()
	opts := tree.Options()
	extras := e.reg.Extras()

	if opts.FormState == nil {
		opts.FormState = make(map[string]any)
	}
	if opts.ShowError == nil {
		opts.ShowError = extras.ShowError
	}
	if opts.FieldChanges == nil {
		opts.FieldChanges = notify.New[field.Event]()
	}
	if opts.Zone == nil {
		opts.Zone = zone.New()
	}
	if opts.FormID == 0 {
		opts.FormID = formSeq.Add(1)
	}
	if root.FormControl == nil {
		root.SetControl(tree.Form())
	}
	tree.Form().SetScheduler(opts.Zone)

	opts.Once("detectChanges", func() {
		opts.DetectChanges = func(f *field.Field) {
			if opts.ChangeDetector == nil {
				return
			}
			field.Walk(f, opts.ChangeDetector)
		}
	})
	opts.Once("resetModel", func() {
		opts.ResetModel = func(model map[string]any) error {
			return resetModel(root, model)
		}
	})
	opts.Once("updateInitialValue", func() {
		opts.UpdateInitialValue = func() {
			if t := root.Tree(); t != nil {
				t.Options().SetInitialModel(t.Model())
			}
		}
	})
	opts.UpdateInitialValue()
}

// resetModel replaces the live model's content in place, rebuilds the tree
// and resets the controls to the new values.
func resetModel(root *field.Field, model map[string]any) error {
	tree := root.Tree()
	if tree == nil {
		return errors.New("core: reset of a detached tree")
	}
	opts := tree.Options()
	if model == nil {
		model = opts.InitialModel()
	}
	next := modelpath.CloneMap(model)

	live := tree.Model()
	for k := range live {
		delete(live, k)
	}
	for k, v := range next {
		live[k] = v
	}

	if opts.Build != nil {
		if err := opts.Build(root); err != nil {
			return fmt.Errorf("core: rebuild after reset: %w", err)
		}
	}
	root.Tree().Form().Reset(modelpath.CloneMap(next), forms.WithoutEvent())
	return nil
}

func (e *extension) initFieldOptions(f *field.Field) error {
	if f.ID == "" {
		f.ID = fieldID(f)
	}
	if f.Hooks == nil {
		f.Hooks = &field.Hooks{}
	}
	if f.ModelOptions == nil {
		f.ModelOptions = &field.ModelOptions{}
	}
	if f.Type != "" && f.HasKey() {
		field.MergeDefaults(f, &field.Field{TemplateOptions: map[string]any{
			"label":       "",
			"placeholder": "",
			"focus":       false,
			"disabled":    false,
		}})
	} else if f.TemplateOptions == nil {
		f.TemplateOptions = make(map[string]any)
	}

	if f.Type != TypeTemplate && (f.Template != "" || f.ExpressionProperties["template"] != nil) {
		f.Type = TypeTemplate
	}
	if f.Type == "" && f.IsGroup() {
		f.Type = TypeGroup
	}

	if f.Type != "" {
		if err := e.reg.GetMergedField(f); err != nil {
			if !errors.Is(err, registry.ErrUnknownType) {
				return fmt.Errorf("field %q: %w", f.ID, err)
			}
			f.Log().Warn("Unknown field type, rendering as empty.", "id", f.ID, "type", f.Type, "error", err)
			f.Runtime().Unknown = true
			f.Type = TypeUnknown
		}
	}

	applyDefault(f, e.reg.Extras().ResetFieldOnHide)
	return nil
}

// applyDefault writes the node's default into the model when no value is
// present. With auto-clear enabled, hidden nodes and nodes under a hidden
// ancestor keep the model empty.
func applyDefault(f *field.Field, autoClear bool) {
	if !f.HasKey() || !f.HasDefaultValue() {
		return
	}
	if _, ok := field.GetFieldValue(f); ok {
		return
	}
	if autoClear && HiddenByPolicy(f) {
		return
	}
	if err := field.AssignFieldValue(f, modelpath.Clone(f.DefaultValue)); err != nil {
		f.Log().Warn("Default value not assigned.", "id", f.ID, "key", f.KeyString(), "error", err)
	}
}

// HiddenByPolicy reports whether f, or the nearest ancestor that declares
// hide control, is hidden or hide-controlled.
func HiddenByPolicy(f *field.Field) bool {
	if f.Hide || f.HideExpression != nil {
		return true
	}
	parent := f.Parent()
	for parent != nil && parent.HideExpression == nil && !parent.Hide {
		parent = parent.Parent()
	}
	return parent != nil
}

func fieldID(f *field.Field) string {
	return fmt.Sprintf("dynaform_%d_%s_%s_%d", f.Options().FormID, f.Type, f.KeyString(), f.Index())
}

func (e *extension) component(f *field.Field) any {
	if f.Type == "" || f.Type == TypeUnknown {
		return nil
	}
	c, err := e.reg.Component(f.Type)
	if err != nil {
		return nil
	}
	return c
}
