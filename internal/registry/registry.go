package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/dynaform/internal/field"
)

var (
	// ErrUnknownType is returned when a descriptor names an unregistered type.
	ErrUnknownType = errors.New("registry: unknown field type")
	// ErrExtendsCycle is returned when an extends chain loops.
	ErrExtendsCycle = errors.New("registry: extends cycle")
	// ErrUnknownWrapper is returned by Validate for dangling wrapper names.
	ErrUnknownWrapper = errors.New("registry: unknown wrapper")
)

// Module is implemented by feature packages that contribute configuration.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered configuration for one application.
type Registry struct {
	types      map[string]*TypeOption
	typeOrder  []string
	wrappers   map[string]*WrapperOption
	validators map[string]*ValidatorOption
	messages   map[string]any
	extensions []Extension
	extras     ResolvedExtras
	logger     *slog.Logger
}

// New creates an empty registry with default extras.
func New() *Registry {
	return &Registry{
		types:      make(map[string]*TypeOption),
		wrappers:   make(map[string]*WrapperOption),
		validators: make(map[string]*ValidatorOption),
		messages:   make(map[string]any),
		extras: ResolvedExtras{
			CheckExpressionOn: CheckOnChangeDetection,
			ShowError:         DefaultShowError,
		},
	}
}

// SetLogger replaces the registration logger, slog.Default() until set.
func (r *Registry) SetLogger(l *slog.Logger) {
	r.logger = l
}

// Logger returns the registration logger.
func (r *Registry) Logger() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}
	return r.logger
}

// Use registers every module in order.
func (r *Registry) Use(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterConfig merges cfg into the registry. Types, wrappers, validators,
// messages and extensions are added or updated by name; extras are
// last-wins per flag.
func (r *Registry) RegisterConfig(cfg ConfigOption) {
	for _, t := range cfg.Types {
		r.RegisterType(t)
	}
	for _, w := range cfg.Wrappers {
		r.RegisterWrapper(w)
	}
	for _, v := range cfg.Validators {
		r.RegisterValidator(v)
	}
	for _, m := range cfg.ValidationMessages {
		r.AddValidationMessage(m.Name, m.Message)
	}
	for _, e := range cfg.Extensions {
		r.RegisterExtension(e)
	}
	if cfg.Extras != nil {
		r.applyExtras(*cfg.Extras)
	}
}

// RegisterType adds a type or merges into an existing one of the same name.
func (r *Registry) RegisterType(t TypeOption) {
	if t.Name == "" {
		panic("registry: type registered without a name")
	}
	existing, ok := r.types[t.Name]
	if !ok {
		r.Logger().Debug("Registering field type.", "name", t.Name, "extends", t.Extends)
		cp := t
		cp.Wrappers = append([]string(nil), t.Wrappers...)
		r.types[t.Name] = &cp
		r.typeOrder = append(r.typeOrder, t.Name)
		return
	}

	r.Logger().Debug("Updating field type.", "name", t.Name)
	if t.Component != nil {
		existing.Component = t.Component
	}
	if t.Extends != "" {
		existing.Extends = t.Extends
	}
	for _, w := range t.Wrappers {
		existing.Wrappers = appendUnique(existing.Wrappers, w)
	}
	if t.DefaultOptions != nil {
		if existing.DefaultOptions == nil {
			existing.DefaultOptions = t.DefaultOptions
		} else {
			merged := t.DefaultOptions.Clone()
			field.MergeDefaults(merged, existing.DefaultOptions)
			existing.DefaultOptions = merged
		}
	}
}

// RegisterWrapper adds a wrapper and attaches it to the types it names.
func (r *Registry) RegisterWrapper(w WrapperOption) {
	if w.Name == "" {
		panic("registry: wrapper registered without a name")
	}
	r.Logger().Debug("Registering wrapper.", "name", w.Name, "types", w.Types)
	cp := w
	r.wrappers[w.Name] = &cp
	for _, typeName := range w.Types {
		r.RegisterType(TypeOption{Name: typeName, Wrappers: []string{w.Name}})
	}
}

// RegisterValidator adds or replaces a named validator.
func (r *Registry) RegisterValidator(v ValidatorOption) {
	if v.Name == "" {
		panic("registry: validator registered without a name")
	}
	if v.Validation == nil && v.AsyncValidation == nil {
		panic(fmt.Sprintf("registry: validator '%s' has no validation function", v.Name))
	}
	r.Logger().Debug("Registering validator.", "name", v.Name)
	cp := v
	r.validators[v.Name] = &cp
}

// AddValidationMessage registers a string template or a MessageFunc.
func (r *Registry) AddValidationMessage(name string, message any) {
	switch message.(type) {
	case string, MessageFunc, func(err any, f *field.Field) string:
	default:
		panic(fmt.Sprintf("registry: validation message '%s' must be a string or MessageFunc, got %T", name, message))
	}
	r.Logger().Debug("Registering validation message.", "name", name)
	r.messages[name] = message
}

// RegisterExtension appends an extension, or replaces one with the same name
// in place so the registration order is kept.
func (r *Registry) RegisterExtension(e Extension) {
	if e.Name == "" {
		panic("registry: extension registered without a name")
	}
	for i, existing := range r.extensions {
		if existing.Name == e.Name {
			r.Logger().Debug("Replacing extension.", "name", e.Name)
			r.extensions[i] = e
			return
		}
	}
	r.Logger().Debug("Registering extension.", "name", e.Name, "position", len(r.extensions))
	r.extensions = append(r.extensions, e)
}

func (r *Registry) applyExtras(e Extras) {
	if e.Immutable != nil {
		r.extras.Immutable = *e.Immutable
	}
	if e.ShowError != nil {
		r.extras.ShowError = e.ShowError
	}
	if e.CheckExpressionOn != "" {
		r.extras.CheckExpressionOn = e.CheckExpressionOn
	}
	if e.LazyRender != nil {
		r.extras.LazyRender = *e.LazyRender
	}
	if e.ResetFieldOnHide != nil {
		r.extras.ResetFieldOnHide = *e.ResetFieldOnHide
	}
}

// Extras returns the effective flags.
func (r *Registry) Extras() ResolvedExtras { return r.extras }

// Type returns the registration for name as registered, without resolving extends.
func (r *Registry) Type(name string) (*TypeOption, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types returns type names in registration order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.typeOrder...)
}

// Wrapper returns the wrapper registered under name.
func (r *Registry) Wrapper(name string) (*WrapperOption, bool) {
	w, ok := r.wrappers[name]
	return w, ok
}

// Validator returns the validator registered under name.
func (r *Registry) Validator(name string) (*ValidatorOption, bool) {
	v, ok := r.validators[name]
	return v, ok
}

// ValidationMessage returns the message registered under name.
func (r *Registry) ValidationMessage(name string) (any, bool) {
	m, ok := r.messages[name]
	return m, ok
}

// Extensions returns the extensions in registration order.
func (r *Registry) Extensions() []Extension {
	return append([]Extension(nil), r.extensions...)
}

// HasExtension reports whether an extension named name is registered.
func (r *Registry) HasExtension(name string) bool {
	for _, e := range r.extensions {
		if e.Name == name {
			return true
		}
	}
	return false
}

// DefaultShowError displays errors of invalid controls once touched, once
// the form was submitted, or when the field forces it.
func DefaultShowError(f *field.Field) bool {
	c := f.Control()
	if c == nil || !c.Invalid() {
		return false
	}
	if f.Validation != nil && f.Validation.Show != nil {
		return *f.Validation.Show
	}
	if c.Touched() {
		return true
	}
	if o := f.Options(); o != nil && o.ParentForm != nil && o.ParentForm.Submitted() {
		return true
	}
	return false
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
