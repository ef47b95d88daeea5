// Package messages registers the default English texts for the built-in
// validation rules. Registry configuration or field overrides replace them.
package messages

import (
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Defaults maps each built-in rule to its message template.
var Defaults = map[string]string{
	"required":    "This field is required",
	"pattern":     "{label} does not match {requiredPattern}",
	"minLength":   "{label} should have at least {requiredLength} characters",
	"maxLength":   "{label} should have at most {requiredLength} characters",
	"min":         "{label} should be at least {min}",
	"max":         "{label} should be at most {max}",
	"multipleOf":  "{label} should be a multiple of {multipleOf}",
	"minItems":    "{label} should have at least {minItems} items",
	"maxItems":    "{label} should have at most {maxItems} items",
	"uniqueItems": "{label} should not contain duplicates",
	"async":       "{label} could not be validated",
}

// Register registers every default message.
func (m *Module) Register(r *registry.Registry) {
	for name, text := range Defaults {
		r.AddValidationMessage(name, text)
	}
}
