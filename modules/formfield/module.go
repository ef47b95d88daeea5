package formfield

import "github.com/specialistvlad/dynaform/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// FormField renders the label, description and validation messages around a field.
type FormField struct{}

// Register registers the "form-field" wrapper.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWrapper(registry.WrapperOption{Name: "form-field", Component: &FormField{}})
}
