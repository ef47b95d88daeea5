// Package ext lists the built-in extensions in the order they must run.
package ext

import (
	"github.com/specialistvlad/dynaform/internal/ext/core"
	"github.com/specialistvlad/dynaform/internal/ext/expression"
	"github.com/specialistvlad/dynaform/internal/ext/fieldform"
	"github.com/specialistvlad/dynaform/internal/ext/validation"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Modules returns core, field-validation, field-form and field-expression.
func Modules() []registry.Module {
	return []registry.Module{
		&core.Module{},
		&validation.Module{},
		&fieldform.Module{},
		&expression.Module{},
	}
}

// NewRegistry returns a registry with the built-in extensions registered.
func NewRegistry() *registry.Registry {
	return registry.New().Use(Modules()...)
}
