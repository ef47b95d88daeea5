package field

import (
	"context"

	"github.com/specialistvlad/dynaform/internal/forms"
)

// Evaluator is the compiled form of an Expression.
type Evaluator func(model any, formState map[string]any, f *Field) any

// Expression is either a source string compiled by the expression extension
// or a Go function used as is.
type Expression struct {
	Source string
	Func   Evaluator
}

// Expr wraps an expression source.
func Expr(src string) *Expression { return &Expression{Source: src} }

// ExprFunc wraps a Go evaluator.
func ExprFunc(fn Evaluator) *Expression { return &Expression{Func: fn} }

// Hooks are lifecycle callbacks fired by the form.
type Hooks struct {
	OnInit        func(f *Field)
	OnChanges     func(f *Field)
	AfterViewInit func(f *Field)
	OnDestroy     func(f *Field)
}

// ValidatorRef names a registered validator, optionally with options.
type ValidatorRef struct {
	Name    string         `json:"name" yaml:"name"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// CustomValidator is a field-local validator. Exactly one of Expression,
// Func or AsyncFunc is expected. Expressions see value, control, field,
// model and formState and pass when truthy.
type CustomValidator struct {
	Expression *Expression `json:"expression,omitempty" yaml:"expression,omitempty"`
	Message    any         `json:"message,omitempty" yaml:"message,omitempty"`

	Func      func(c forms.Control, f *Field) bool
	AsyncFunc func(ctx context.Context, value any, f *Field) (bool, error)
}

// Validators groups named references and custom validators.
type Validators struct {
	Validation []ValidatorRef
	Custom     map[string]*CustomValidator
}

// Validation holds per-field message overrides and display policy.
type Validation struct {
	Messages map[string]any `json:"messages,omitempty" yaml:"messages,omitempty"`
	Show     *bool          `json:"show,omitempty" yaml:"show,omitempty"`
}

// Debounce delays model updates, in milliseconds.
type Debounce struct {
	Default int `json:"default,omitempty" yaml:"default,omitempty"`
}

// ModelOptions tunes how control changes reach the model.
type ModelOptions struct {
	Debounce *Debounce `json:"debounce,omitempty" yaml:"debounce,omitempty"`
	UpdateOn string    `json:"updateOn,omitempty" yaml:"updateOn,omitempty"`
}

// Field is a field descriptor and, once attached to a Tree, a live node.
type Field struct {
	Key                  any                    `json:"key,omitempty"`
	ID                   string                 `json:"id,omitempty"`
	Name                 string                 `json:"name,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	ClassName            string                 `json:"className,omitempty"`
	FieldGroupClassName  string                 `json:"fieldGroupClassName,omitempty"`
	Template             string                 `json:"template,omitempty"`
	TemplateOptions      map[string]any         `json:"templateOptions,omitempty"`
	Validators           *Validators            `json:"validators,omitempty"`
	AsyncValidators      *Validators            `json:"asyncValidators,omitempty"`
	Validation           *Validation            `json:"validation,omitempty"`
	ExpressionProperties map[string]*Expression `json:"expressionProperties,omitempty"`
	HideExpression       *Expression            `json:"hideExpression,omitempty"`
	Hide                 bool                   `json:"hide,omitempty"`
	DefaultValue         any                    `json:"defaultValue,omitempty"`
	FieldGroup           []*Field               `json:"fieldGroup,omitempty"`
	FieldArray           *Field                 `json:"fieldArray,omitempty"`
	Wrappers             []string               `json:"wrappers,omitempty"`
	ModelOptions         *ModelOptions          `json:"modelOptions,omitempty"`
	OptionsTypes         []string               `json:"optionsTypes,omitempty"`
	Focus                bool                   `json:"focus,omitempty"`
	Props                map[string]any         `json:"props,omitempty"`

	Hooks       *Hooks          `json:"-"`
	Parsers     []func(any) any `json:"-"`
	FormControl forms.Control   `json:"-"`

	hasDefault bool

	tree      *Tree
	ref       int
	parentRef int
	index     int
	rt        *Runtime
}

// SetDefaultValue sets DefaultValue and marks it present, so nil is a valid default.
func (f *Field) SetDefaultValue(v any) *Field {
	f.DefaultValue = v
	f.hasDefault = true
	return f
}

// HasDefaultValue reports whether a default was given, including an explicit nil.
func (f *Field) HasDefaultValue() bool {
	return f.hasDefault || f.DefaultValue != nil
}

// TO returns TemplateOptions, allocating it when nil.
func (f *Field) TO() map[string]any {
	if f.TemplateOptions == nil {
		f.TemplateOptions = make(map[string]any)
	}
	return f.TemplateOptions
}

// HasKey reports whether the node binds to a model location.
func (f *Field) HasKey() bool {
	switch k := f.Key.(type) {
	case nil:
		return false
	case string:
		return k != ""
	}
	return true
}

// IsGroup reports whether the node has children.
func (f *Field) IsGroup() bool {
	return len(f.FieldGroup) > 0
}

// SetHide changes the node's visibility and queues it for the next
// expression check, which toggles its control, validators and defaults.
func (f *Field) SetHide(hide bool) {
	if f.Hide == hide {
		return
	}
	f.Hide = hide
	if o := f.Options(); o != nil {
		o.MarkHiddenForCheck(f)
	}
}

// Hidden reports whether f or one of its ancestors is hidden.
func (f *Field) Hidden() bool {
	for cur := f; cur != nil; cur = cur.Parent() {
		if cur.Hide {
			return true
		}
	}
	return false
}

// Runtime holds per-node state maintained by the extensions.
type Runtime struct {
	// Expressions maps a property path, or HideKey, to its evaluator.
	Expressions map[string]Evaluator
	// Cache is the last applied value per expression path.
	Cache map[string]any

	Validators      []forms.ValidatorFn
	AsyncValidators []forms.AsyncValidatorFn
	// AsyncChecks are async-pass validators that read live form state.
	AsyncChecks []forms.ValidatorFn

	// Initialized is set once OnInit fired.
	Initialized bool
	// Unknown is set when the node's type could not be resolved.
	Unknown bool

	teardown []func()
}

// HideKey is the Runtime.Expressions entry for hideExpression.
const HideKey = "hide"

// Runtime returns the node's runtime state, allocating it on first use.
func (f *Field) Runtime() *Runtime {
	if f.rt == nil {
		f.rt = &Runtime{
			Expressions: make(map[string]Evaluator),
			Cache:       make(map[string]any),
		}
	}
	return f.rt
}

// OnTeardown registers fn to run when the node is detached or rebuilt.
func (f *Field) OnTeardown(fn func()) {
	rt := f.Runtime()
	rt.teardown = append(rt.teardown, fn)
}

// Teardown runs and clears the registered teardown functions.
func (f *Field) Teardown() {
	if f.rt == nil {
		return
	}
	fns := f.rt.teardown
	f.rt.teardown = nil
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Walk visits f and its fieldGroup descendants depth-first, pre-order.
// Nil children are skipped.
func Walk(f *Field, fn func(*Field)) {
	if f == nil {
		return
	}
	fn(f)
	for _, child := range f.FieldGroup {
		Walk(child, fn)
	}
}
