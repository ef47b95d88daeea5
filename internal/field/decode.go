package field

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

var nullJSON = []byte("null")

// UnmarshalJSON decodes the descriptor wire format and records whether
// defaultValue was present, so an explicit null is kept as a default.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	if err := json.Unmarshal(data, (*plain)(f)); err != nil {
		return err
	}
	var presence struct {
		DefaultValue json.RawMessage `json:"defaultValue"`
	}
	if err := json.Unmarshal(data, &presence); err != nil {
		return fmt.Errorf("field %v: defaultValue: %w", f.Key, err)
	}
	if len(presence.DefaultValue) > 0 {
		f.SetDefaultValue(f.DefaultValue)
	}
	return nil
}

// UnmarshalJSON accepts a source string or a boolean constant.
func (e *Expression) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		e.Source = x
	case bool:
		e.Source = fmt.Sprint(x)
	default:
		return fmt.Errorf("expression must be a string or boolean, got %T", v)
	}
	return nil
}

// MarshalJSON writes the source; Go evaluators are not serializable.
func (e *Expression) MarshalJSON() ([]byte, error) {
	if e.Func != nil && e.Source == "" {
		return nullJSON, nil
	}
	return json.Marshal(e.Source)
}

// UnmarshalJSON decodes `{"validation": [...], "<name>": {...}}`. Entries
// of "validation" are names or {name, options} objects. Other entries are
// custom validators given as an expression string or {expression, message}.
func (v *Validators) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name, msg := range raw {
		if name == "validation" {
			refs, err := decodeRefs(msg)
			if err != nil {
				return err
			}
			v.Validation = refs
			continue
		}
		custom, err := decodeCustom(msg)
		if err != nil {
			return fmt.Errorf("validator %q: %w", name, err)
		}
		if v.Custom == nil {
			v.Custom = make(map[string]*CustomValidator)
		}
		v.Custom[name] = custom
	}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON for expression-based validators.
func (v *Validators) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(v.Custom)+1)
	if len(v.Validation) > 0 {
		out["validation"] = v.Validation
	}
	for name, c := range v.Custom {
		if c.Expression != nil && c.Expression.Source != "" {
			out[name] = c
		}
	}
	return json.Marshal(out)
}

func decodeRefs(msg json.RawMessage) ([]ValidatorRef, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	refs := make([]ValidatorRef, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return nil, err
			}
			refs = append(refs, ValidatorRef{Name: name})
			continue
		}
		var ref ValidatorRef
		if err := json.Unmarshal(item, &ref); err != nil {
			return nil, fmt.Errorf("validation: %w", err)
		}
		if ref.Name == "" {
			return nil, fmt.Errorf("validation: entry without name")
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func decodeCustom(msg json.RawMessage) (*CustomValidator, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) > 0 && msg[0] == '"' {
		var src string
		if err := json.Unmarshal(msg, &src); err != nil {
			return nil, err
		}
		return &CustomValidator{Expression: Expr(src)}, nil
	}
	var c CustomValidator
	if err := json.Unmarshal(msg, &c); err != nil {
		return nil, err
	}
	if c.Expression == nil {
		return nil, fmt.Errorf("missing expression")
	}
	return &c, nil
}

// DecodeFields decodes a JSON array of descriptors.
func DecodeFields(data []byte) ([]*Field, error) {
	var fields []*Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	return fields, nil
}
