package input

import (
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input is the component of the plain text input and its numeric variants.
type Input struct{}

// Register registers "input" and the "string", "number" and "integer"
// types extending it.
func (m *Module) Register(r *registry.Registry) {
	r.Logger().Debug("Registering input types.")
	r.RegisterType(registry.TypeOption{
		Name:      "input",
		Component: &Input{},
		Wrappers:  []string{"form-field"},
	})
	r.RegisterType(registry.TypeOption{Name: "string", Extends: "input"})
	for _, name := range []string{"number", "integer"} {
		r.RegisterType(registry.TypeOption{
			Name:    name,
			Extends: "input",
			DefaultOptions: &field.Field{
				TemplateOptions: map[string]any{"type": "number"},
			},
		})
	}
}
