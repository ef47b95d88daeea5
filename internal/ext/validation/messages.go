package validation

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Message is one rendered validation failure.
type Message struct {
	Rule string `json:"rule"`
	Text string `json:"message"`
}

// ErrorMessages renders the failures of f's control, in rule order, when
// the options' ShowError policy allows it. Messages are looked up on the
// field's validation overrides, then on its custom validators, then in the
// registry. Unknown rules render as their name.
func ErrorMessages(r *registry.Registry, f *field.Field) []Message {
	c := f.Control()
	if c == nil || len(c.Errors()) == 0 {
		return nil
	}
	show := registry.DefaultShowError
	if o := f.Options(); o != nil && o.ShowError != nil {
		show = o.ShowError
	}
	if !show(f) {
		return nil
	}

	errs := c.Errors()
	out := make([]Message, 0, len(errs))
	for _, rule := range errs.Keys() {
		out = append(out, Message{Rule: rule, Text: render(r, f, rule, errs[rule])})
	}
	return out
}

func render(r *registry.Registry, f *field.Field, rule string, details any) string {
	if f.Validation != nil {
		if m, ok := f.Validation.Messages[rule]; ok {
			if text, ok := format(m, details, f); ok {
				return text
			}
		}
	}
	for _, v := range []*field.Validators{f.Validators, f.AsyncValidators} {
		if v == nil || v.Custom[rule] == nil || v.Custom[rule].Message == nil {
			continue
		}
		if text, ok := format(v.Custom[rule].Message, details, f); ok {
			return text
		}
	}
	if r != nil {
		if m, ok := r.ValidationMessage(rule); ok {
			if text, ok := format(m, details, f); ok {
				return text
			}
		}
	}
	return rule
}

func format(m, details any, f *field.Field) (string, bool) {
	switch msg := m.(type) {
	case string:
		return interpolate(msg, details, f), true
	case registry.MessageFunc:
		return msg(details, f), true
	case func(err any, f *field.Field) string:
		return msg(details, f), true
	}
	return "", false
}

// interpolate replaces {label} with the field label and {name} with the
// matching entry of the error details.
func interpolate(msg string, details any, f *field.Field) string {
	if !strings.Contains(msg, "{") {
		return msg
	}
	pairs := []string{"{label}", fmt.Sprint(labelOf(f))}
	if m, ok := details.(map[string]any); ok {
		for k, v := range m {
			pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
		}
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func labelOf(f *field.Field) any {
	if l, ok := f.TemplateOptions["label"]; ok && l != "" && l != nil {
		return l
	}
	return f.KeyString()
}
