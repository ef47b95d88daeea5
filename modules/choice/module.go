// Package choice registers the option-list types: checkbox, multicheckbox,
// radio and select.
package choice

import (
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Checkbox is a single boolean toggle.
type Checkbox struct{}

// DefaultOptions hides the wrapper label; the checkbox renders its own.
func (c *Checkbox) DefaultOptions() *field.Field {
	return &field.Field{TemplateOptions: map[string]any{
		"indeterminate": true,
		"hideLabel":     true,
	}}
}

// Options is a component choosing among templateOptions.options.
type Options struct {
	// Multiple marks components whose value is a list or a set of flags.
	Multiple bool
}

// DefaultOptions provides an empty option list.
func (o *Options) DefaultOptions() *field.Field {
	return &field.Field{TemplateOptions: map[string]any{"options": []any{}}}
}

// PostPopulate normalises the option list to label/value objects.
func (o *Options) PostPopulate(f *field.Field) error {
	raw, ok := f.TemplateOptions["options"].([]any)
	if !ok {
		return nil
	}
	f.TemplateOptions["options"] = NormalizeOptions(raw)
	return nil
}

// NormalizeOptions turns scalar entries into {"label", "value"} objects.
// Objects are kept, gaining a label from their value when missing.
func NormalizeOptions(raw []any) []any {
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[string]any:
			if _, ok := v["label"]; !ok {
				v["label"] = v["value"]
			}
			out = append(out, v)
		default:
			out = append(out, map[string]any{"label": v, "value": v})
		}
	}
	return out
}

// Register registers the option-list types.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(registry.TypeOption{Name: "checkbox", Component: &Checkbox{}, Wrappers: []string{"form-field"}})
	r.RegisterType(registry.TypeOption{Name: "multicheckbox", Component: &Options{Multiple: true}, Wrappers: []string{"form-field"}})
	r.RegisterType(registry.TypeOption{Name: "radio", Component: &Options{}, Wrappers: []string{"form-field"}})
	r.RegisterType(registry.TypeOption{Name: "select", Component: &Options{}, Wrappers: []string{"form-field"}})
}
