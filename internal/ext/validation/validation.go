// Package validation derives each node's validator set from its
// templateOptions, its named validator references and its custom
// validators.
package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/dynaform/internal/expr"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Name is the extension name.
const Name = "field-validation"

// ErrUnknownValidator is returned when a field references an unregistered validator.
var ErrUnknownValidator = errors.New("validation: unknown validator")

// Module registers the validation extension.
type Module struct{}

// Register registers the validation extension with the registry.
func (m *Module) Register(r *registry.Registry) {
	e := &extension{reg: r}
	r.RegisterExtension(registry.Extension{
		Name:       Name,
		OnPopulate: e.onPopulate,
	})
}

type extension struct {
	reg *registry.Registry
}

func (e *extension) onPopulate(f *field.Field) error {
	syncFns, err := e.syncValidators(f)
	if err != nil {
		return fmt.Errorf("field %q: %w", f.ID, err)
	}
	async, checks, err := e.asyncValidators(f)
	if err != nil {
		return fmt.Errorf("field %q: %w", f.ID, err)
	}
	rt := f.Runtime()
	rt.Validators = syncFns
	rt.AsyncValidators = async
	rt.AsyncChecks = checks
	return nil
}

func (e *extension) syncValidators(f *field.Field) ([]forms.ValidatorFn, error) {
	var out []forms.ValidatorFn
	for _, name := range builtinOrder {
		if HasParam(f, name) {
			out = append(out, builtin(f, name))
		}
	}
	if f.Validators == nil {
		return out, nil
	}

	for _, ref := range f.Validators.Validation {
		opt, ok := e.reg.Validator(ref.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownValidator, ref.Name)
		}
		if opt.Validation == nil {
			continue
		}
		fn, options := opt.Validation, mergeOptions(opt.Options, ref.Options)
		out = append(out, func(c forms.Control) forms.Errors {
			return fn(c, f, options)
		})
	}

	for _, name := range sortedKeys(f.Validators.Custom) {
		v := f.Validators.Custom[name]
		if v == nil {
			continue
		}
		check, err := customCheck(f, name, v)
		if err != nil {
			return nil, err
		}
		if check == nil {
			continue
		}
		out = append(out, func(c forms.Control) forms.Errors {
			if check(c) {
				return nil
			}
			return forms.Errors{name: true}
		})
	}
	return out, nil
}

// asyncValidators splits the async validators of f. Validators that block
// receive a value snapshot off-turn. Everything else reads live form state
// and is returned as checks run on the owning goroutine.
func (e *extension) asyncValidators(f *field.Field) ([]forms.AsyncValidatorFn, []forms.ValidatorFn, error) {
	if f.AsyncValidators == nil {
		return nil, nil, nil
	}
	var out []forms.AsyncValidatorFn
	var checks []forms.ValidatorFn

	for _, ref := range f.AsyncValidators.Validation {
		opt, ok := e.reg.Validator(ref.Name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownValidator, ref.Name)
		}
		options := mergeOptions(opt.Options, ref.Options)
		switch {
		case opt.AsyncValidation != nil:
			fn := opt.AsyncValidation
			out = append(out, func(ctx context.Context, value any) (forms.Errors, error) {
				return fn(ctx, value, f, options)
			})
		case opt.Validation != nil:
			fn := opt.Validation
			checks = append(checks, func(c forms.Control) forms.Errors {
				return fn(c, f, options)
			})
		}
	}

	for _, name := range sortedKeys(f.AsyncValidators.Custom) {
		v := f.AsyncValidators.Custom[name]
		if v == nil {
			continue
		}
		if v.AsyncFunc != nil {
			fn := v.AsyncFunc
			out = append(out, func(ctx context.Context, value any) (forms.Errors, error) {
				ok, err := fn(ctx, value, f)
				if err != nil || ok {
					return nil, err
				}
				return forms.Errors{name: true}, nil
			})
			continue
		}
		check, err := customCheck(f, name, v)
		if err != nil {
			return nil, nil, err
		}
		if check == nil {
			continue
		}
		checks = append(checks, func(c forms.Control) forms.Errors {
			if check(c) {
				return nil
			}
			return forms.Errors{name: true}
		})
	}
	return out, checks, nil
}

// customCheck turns a custom validator into a predicate. Expressions see
// value, control, field, model and formState; evaluation failures count as
// a failed check.
func customCheck(f *field.Field, name string, v *field.CustomValidator) (func(c forms.Control) bool, error) {
	if v.Func != nil {
		fn := v.Func
		return func(c forms.Control) bool { return fn(c, f) }, nil
	}
	if v.Expression == nil {
		return nil, nil
	}
	if v.Expression.Func != nil {
		fn := v.Expression.Func
		return func(c forms.Control) bool {
			return expr.Truthy(fn(f.Model(), formState(f), f))
		}, nil
	}

	prog, err := expr.Compile(v.Expression.Source)
	if err != nil {
		return nil, fmt.Errorf("validator %q: %w", name, err)
	}
	return func(c forms.Control) bool {
		scope := expr.Scope{
			"model":     f.Model(),
			"formState": formState(f),
			"field":     f,
		}
		if c != nil {
			scope["value"] = c.Value()
			scope["control"] = c
		}
		out, err := prog.Eval(scope)
		if err != nil {
			f.Log().Debug("Validator expression failed.", "id", f.ID, "validator", name, "error", err)
			return false
		}
		return expr.Truthy(out)
	}, nil
}

func formState(f *field.Field) map[string]any {
	if o := f.Options(); o != nil {
		return o.FormState
	}
	return nil
}

func mergeOptions(defaults, given map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(given))
	for k, v := range given {
		out[k] = v
	}
	return field.MergeMaps(out, defaults)
}

func sortedKeys(m map[string]*field.CustomValidator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
