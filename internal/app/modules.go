package app

import (
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/modules/addons"
	"github.com/specialistvlad/dynaform/modules/choice"
	"github.com/specialistvlad/dynaform/modules/formfield"
	"github.com/specialistvlad/dynaform/modules/input"
	"github.com/specialistvlad/dynaform/modules/messages"
	"github.com/specialistvlad/dynaform/modules/textarea"
)

// coreModules is the definitive list of the stock types and wrappers
// compiled into the dynaform binary, on top of the built-in extensions.
var coreModules = []registry.Module{
	&formfield.Module{},
	&addons.Module{},
	&input.Module{},
	&textarea.Module{},
	&choice.Module{},
	&messages.Module{},
}
