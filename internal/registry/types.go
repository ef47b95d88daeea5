package registry

import (
	"context"

	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
)

// PrePopulater, OnPopulater and PostPopulater are optional capabilities of a
// type component. The core extension invokes them during its own phases.
type PrePopulater interface {
	PrePopulate(f *field.Field) error
}

type OnPopulater interface {
	OnPopulate(f *field.Field) error
}

type PostPopulater interface {
	PostPopulate(f *field.Field) error
}

// TypeOption registers a field type.
type TypeOption struct {
	Name           string
	Component      any
	Wrappers       []string
	Extends        string
	DefaultOptions *field.Field
}

// WrapperOption registers a wrapper. Types lists field types the wrapper is
// added to automatically.
type WrapperOption struct {
	Name      string
	Component any
	Types     []string
}

// ValidatorFunc validates a control on behalf of a field.
type ValidatorFunc func(c forms.Control, f *field.Field, options map[string]any) forms.Errors

// AsyncValidatorFunc validates a value snapshot, possibly blocking.
type AsyncValidatorFunc func(ctx context.Context, value any, f *field.Field, options map[string]any) (forms.Errors, error)

// ValidatorOption registers a named validator. Options are defaults merged
// under the options given by a field reference.
type ValidatorOption struct {
	Name            string
	Validation      ValidatorFunc
	AsyncValidation AsyncValidatorFunc
	Options         map[string]any
}

// MessageFunc renders a validation message from the rule's error details.
type MessageFunc func(err any, f *field.Field) string

// ValidationMessageOption registers a message, either a string template or a MessageFunc.
type ValidationMessageOption struct {
	Name    string
	Message any
}

// Extension is a named hook set applied to every node during population.
type Extension struct {
	Name         string
	PrePopulate  func(f *field.Field) error
	OnPopulate   func(f *field.Field) error
	PostPopulate func(f *field.Field) error
}

// CoreExtension is the name of the extension every build requires.
const CoreExtension = "core"

// Check modes for Extras.CheckExpressionOn.
const (
	CheckOnChangeDetection = "changeDetectionCheck"
	CheckOnModelChange     = "modelChange"
)

// Extras holds global behaviour flags. Nil pointers and empty strings leave
// the current value untouched when registered.
type Extras struct {
	Immutable         *bool
	ShowError         func(f *field.Field) bool
	CheckExpressionOn string
	LazyRender        *bool
	ResetFieldOnHide  *bool
}

// ResolvedExtras are the effective flags.
type ResolvedExtras struct {
	Immutable         bool
	ShowError         func(f *field.Field) bool
	CheckExpressionOn string
	LazyRender        bool
	ResetFieldOnHide  bool
}

// ConfigOption is one additive registration.
type ConfigOption struct {
	Types              []TypeOption
	Wrappers           []WrapperOption
	Validators         []ValidatorOption
	ValidationMessages []ValidationMessageOption
	Extensions         []Extension
	Extras             *Extras
}

// Bool returns a pointer to b, for Extras flags.
func Bool(b bool) *bool { return &b }
