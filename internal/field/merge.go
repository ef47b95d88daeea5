package field

import (
	"github.com/specialistvlad/dynaform/internal/modelpath"
)

// Clone deep-copies the descriptor part of f. Runtime state, the tree link
// and the bound control are not copied; functions are shared.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	out := &Field{
		Key:                 cloneKey(f.Key),
		ID:                  f.ID,
		Name:                f.Name,
		Type:                f.Type,
		ClassName:           f.ClassName,
		FieldGroupClassName: f.FieldGroupClassName,
		Template:            f.Template,
		TemplateOptions:     cloneMap(f.TemplateOptions),
		Validators:          f.Validators.clone(),
		AsyncValidators:     f.AsyncValidators.clone(),
		Validation:          f.Validation.clone(),
		HideExpression:      f.HideExpression.clone(),
		Hide:                f.Hide,
		DefaultValue:        modelpath.Clone(f.DefaultValue),
		FieldArray:          f.FieldArray.Clone(),
		Wrappers:            append([]string(nil), f.Wrappers...),
		ModelOptions:        f.ModelOptions.clone(),
		OptionsTypes:        append([]string(nil), f.OptionsTypes...),
		Focus:               f.Focus,
		Props:               cloneMap(f.Props),
		Parsers:             append([]func(any) any(nil), f.Parsers...),
		hasDefault:          f.hasDefault,
	}
	if f.Hooks != nil {
		h := *f.Hooks
		out.Hooks = &h
	}
	if f.ExpressionProperties != nil {
		out.ExpressionProperties = make(map[string]*Expression, len(f.ExpressionProperties))
		for k, e := range f.ExpressionProperties {
			out.ExpressionProperties[k] = e.clone()
		}
	}
	if f.FieldGroup != nil {
		out.FieldGroup = make([]*Field, len(f.FieldGroup))
		for i, child := range f.FieldGroup {
			out.FieldGroup[i] = child.Clone()
		}
	}
	return out
}

// CloneAll clones a list of descriptors.
func CloneAll(fields []*Field) []*Field {
	if fields == nil {
		return nil
	}
	out := make([]*Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

// MergeDefaults fills the gaps of dst from src: values dst already has win,
// maps merge recursively, and nil or blank entries are taken from src.
func MergeDefaults(dst, src *Field) {
	if dst == nil || src == nil {
		return
	}
	if dst.Key == nil {
		dst.Key = cloneKey(src.Key)
	}
	fillString(&dst.ID, src.ID)
	fillString(&dst.Name, src.Name)
	fillString(&dst.Type, src.Type)
	fillString(&dst.ClassName, src.ClassName)
	fillString(&dst.FieldGroupClassName, src.FieldGroupClassName)
	fillString(&dst.Template, src.Template)
	dst.Hide = dst.Hide || src.Hide
	dst.Focus = dst.Focus || src.Focus

	dst.TemplateOptions = mergeMaps(dst.TemplateOptions, src.TemplateOptions)
	dst.Props = mergeMaps(dst.Props, src.Props)

	if !dst.HasDefaultValue() && src.HasDefaultValue() {
		dst.SetDefaultValue(modelpath.Clone(src.DefaultValue))
	}
	if dst.HideExpression == nil {
		dst.HideExpression = src.HideExpression.clone()
	}
	for k, e := range src.ExpressionProperties {
		if dst.ExpressionProperties == nil {
			dst.ExpressionProperties = make(map[string]*Expression)
		}
		if _, ok := dst.ExpressionProperties[k]; !ok {
			dst.ExpressionProperties[k] = e.clone()
		}
	}

	dst.Validators = mergeValidators(dst.Validators, src.Validators)
	dst.AsyncValidators = mergeValidators(dst.AsyncValidators, src.AsyncValidators)

	if src.Validation != nil {
		if dst.Validation == nil {
			dst.Validation = &Validation{}
		}
		dst.Validation.Messages = mergeMaps(dst.Validation.Messages, src.Validation.Messages)
		if dst.Validation.Show == nil && src.Validation.Show != nil {
			show := *src.Validation.Show
			dst.Validation.Show = &show
		}
	}

	if src.ModelOptions != nil {
		if dst.ModelOptions == nil {
			dst.ModelOptions = src.ModelOptions.clone()
		} else {
			if dst.ModelOptions.Debounce == nil && src.ModelOptions.Debounce != nil {
				d := *src.ModelOptions.Debounce
				dst.ModelOptions.Debounce = &d
			}
			fillString(&dst.ModelOptions.UpdateOn, src.ModelOptions.UpdateOn)
		}
	}

	if src.Hooks != nil {
		if dst.Hooks == nil {
			dst.Hooks = &Hooks{}
		}
		if dst.Hooks.OnInit == nil {
			dst.Hooks.OnInit = src.Hooks.OnInit
		}
		if dst.Hooks.OnChanges == nil {
			dst.Hooks.OnChanges = src.Hooks.OnChanges
		}
		if dst.Hooks.AfterViewInit == nil {
			dst.Hooks.AfterViewInit = src.Hooks.AfterViewInit
		}
		if dst.Hooks.OnDestroy == nil {
			dst.Hooks.OnDestroy = src.Hooks.OnDestroy
		}
	}

	if len(dst.Parsers) == 0 && len(src.Parsers) > 0 {
		dst.Parsers = append([]func(any) any(nil), src.Parsers...)
	}
	if len(dst.FieldGroup) == 0 && len(src.FieldGroup) > 0 {
		dst.FieldGroup = CloneAll(src.FieldGroup)
	}
	if dst.FieldArray == nil {
		dst.FieldArray = src.FieldArray.Clone()
	}
	if dst.FormControl == nil {
		dst.FormControl = src.FormControl
	}
}

// MergeMaps reverse-merges src into dst and returns dst. Keys present in dst
// with a non-nil, non-blank value are kept; nested maps merge recursively.
func MergeMaps(dst, src map[string]any) map[string]any {
	return mergeMaps(dst, src)
}

func mergeMaps(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, sv := range src {
		dv, ok := dst[k]
		switch {
		case !ok || dv == nil || dv == "":
			dst[k] = modelpath.Clone(sv)
		default:
			dm, dIsMap := dv.(map[string]any)
			sm, sIsMap := sv.(map[string]any)
			if dIsMap && sIsMap {
				dst[k] = mergeMaps(dm, sm)
			}
		}
	}
	return dst
}

func mergeValidators(dst, src *Validators) *Validators {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src.clone()
	}
	for _, ref := range src.Validation {
		if !dst.hasRef(ref.Name) {
			dst.Validation = append(dst.Validation, ref)
		}
	}
	for k, v := range src.Custom {
		if dst.Custom == nil {
			dst.Custom = make(map[string]*CustomValidator)
		}
		if _, ok := dst.Custom[k]; !ok {
			dst.Custom[k] = v
		}
	}
	return dst
}

func (v *Validators) hasRef(name string) bool {
	for _, ref := range v.Validation {
		if ref.Name == name {
			return true
		}
	}
	return false
}

func (v *Validators) clone() *Validators {
	if v == nil {
		return nil
	}
	out := &Validators{}
	for _, ref := range v.Validation {
		out.Validation = append(out.Validation, ValidatorRef{Name: ref.Name, Options: cloneMap(ref.Options)})
	}
	if v.Custom != nil {
		out.Custom = make(map[string]*CustomValidator, len(v.Custom))
		for k, c := range v.Custom {
			cp := *c
			cp.Expression = c.Expression.clone()
			out.Custom[k] = &cp
		}
	}
	return out
}

func (v *Validation) clone() *Validation {
	if v == nil {
		return nil
	}
	out := &Validation{Messages: cloneMap(v.Messages)}
	if v.Show != nil {
		show := *v.Show
		out.Show = &show
	}
	return out
}

func (m *ModelOptions) clone() *ModelOptions {
	if m == nil {
		return nil
	}
	out := &ModelOptions{UpdateOn: m.UpdateOn}
	if m.Debounce != nil {
		d := *m.Debounce
		out.Debounce = &d
	}
	return out
}

func (e *Expression) clone() *Expression {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return modelpath.CloneMap(m)
}

func cloneKey(k any) any {
	switch v := k.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		return append([]any(nil), v...)
	}
	return k
}

func fillString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
