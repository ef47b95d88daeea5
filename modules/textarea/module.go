package textarea

import (
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Textarea is the multi-line text component.
type Textarea struct{}

// DefaultOptions sizes the text area to a single cell unless configured.
func (t *Textarea) DefaultOptions() *field.Field {
	return &field.Field{TemplateOptions: map[string]any{"cols": 1, "rows": 1}}
}

// Register registers the "textarea" type.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType(registry.TypeOption{
		Name:      "textarea",
		Component: &Textarea{},
		Wrappers:  []string{"form-field"},
	})
}
