package addons

import (
	"slices"

	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Name is both the wrapper and the extension name.
const Name = "addons"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Addons renders addonLeft and addonRight around the wrapped field.
type Addons struct{}

// Register registers the wrapper and the extension that applies it.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterWrapper(registry.WrapperOption{Name: Name, Component: &Addons{}})
	r.RegisterExtension(registry.Extension{
		Name:         Name,
		PostPopulate: postPopulate,
	})
}

// postPopulate appends the addons wrapper to fields declaring an addon.
func postPopulate(f *field.Field) error {
	if f.TemplateOptions == nil || slices.Contains(f.Wrappers, Name) {
		return nil
	}
	if f.TemplateOptions["addonLeft"] != nil || f.TemplateOptions["addonRight"] != nil {
		f.Wrappers = append(f.Wrappers, Name)
	}
	return nil
}
