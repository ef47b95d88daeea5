package field

// Attr exposes the node to expressions as `field.<name>`.
func (f *Field) Attr(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	switch name {
	case "key":
		return f.Key, true
	case "id":
		return f.ID, true
	case "name":
		return f.Name, true
	case "type":
		return f.Type, true
	case "index":
		return f.index, true
	case "className":
		return f.ClassName, true
	case "template":
		return f.Template, true
	case "hide":
		return f.Hide, true
	case "focus":
		return f.Focus, true
	case "templateOptions", "to":
		return f.TemplateOptions, true
	case "props":
		return f.Props, true
	case "defaultValue":
		return f.DefaultValue, true
	case "wrappers":
		out := make([]any, len(f.Wrappers))
		for i, w := range f.Wrappers {
			out[i] = w
		}
		return out, true
	case "fieldGroup":
		out := make([]any, 0, len(f.FieldGroup))
		for _, child := range f.FieldGroup {
			if child != nil {
				out = append(out, child)
			}
		}
		return out, true
	case "model":
		return f.Model(), true
	case "value":
		v, _ := GetFieldValue(f)
		return v, true
	case "formState":
		if o := f.Options(); o != nil {
			return o.FormState, true
		}
		return nil, true
	case "options":
		if o := f.Options(); o != nil {
			return o, true
		}
		return nil, true
	case "parent":
		if p := f.Parent(); p != nil {
			return p, true
		}
		return nil, true
	case "formControl":
		if f.FormControl != nil {
			return f.FormControl, true
		}
		return nil, true
	}
	return nil, false
}
