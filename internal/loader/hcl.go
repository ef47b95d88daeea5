package loader

import (
	"context"
	"fmt"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/dynaform/internal/ctxlog"
	"github.com/specialistvlad/dynaform/internal/expr"
	"github.com/specialistvlad/dynaform/internal/ext/validation"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/fsutil"
	"github.com/specialistvlad/dynaform/internal/registry"
)

// Loader reads registry configuration from HCL files.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes every top-level block; unknown blocks are rejected.
type fileRoot struct {
	Extras     []*hclExtras    `hcl:"extras,block"`
	Types      []*hclType      `hcl:"type,block"`
	Wrappers   []*hclWrapper   `hcl:"wrapper,block"`
	Messages   []*hclMessage   `hcl:"validation_message,block"`
	Validators []*hclValidator `hcl:"validator,block"`
}

type hclExtras struct {
	Immutable         *bool   `hcl:"immutable,optional"`
	ResetFieldOnHide  *bool   `hcl:"reset_field_on_hide,optional"`
	LazyRender        *bool   `hcl:"lazy_render,optional"`
	CheckExpressionOn *string `hcl:"check_expression_on,optional"`
}

type hclType struct {
	Name     string         `hcl:"name,label"`
	Extends  *string        `hcl:"extends,optional"`
	Wrappers []string       `hcl:"wrappers,optional"`
	Defaults hcl.Expression `hcl:"defaults,optional"`
}

type hclWrapper struct {
	Name  string   `hcl:"name,label"`
	Types []string `hcl:"types,optional"`
}

type hclMessage struct {
	Name    string `hcl:"name,label"`
	Message string `hcl:"message"`
}

type hclValidator struct {
	Name       string         `hcl:"name,label"`
	Pattern    *string        `hcl:"pattern,optional"`
	Expression *string        `hcl:"expression,optional"`
	Message    *string        `hcl:"message,optional"`
	Options    hcl.Expression `hcl:"options,optional"`
}

// Load parses every .hcl file found under paths into one registry
// configuration per file, in discovery order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]registry.ConfigOption, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	configs := make([]registry.ConfigOption, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		cfg, err := l.translate(&root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		logger.Debug("HCL file translated.", "file", file,
			"types", len(cfg.Types), "wrappers", len(cfg.Wrappers),
			"validators", len(cfg.Validators), "messages", len(cfg.ValidationMessages))
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (l *Loader) translate(root *fileRoot) (registry.ConfigOption, error) {
	var cfg registry.ConfigOption

	for _, e := range root.Extras {
		if cfg.Extras == nil {
			cfg.Extras = &registry.Extras{}
		}
		if e.Immutable != nil {
			cfg.Extras.Immutable = e.Immutable
		}
		if e.ResetFieldOnHide != nil {
			cfg.Extras.ResetFieldOnHide = e.ResetFieldOnHide
		}
		if e.LazyRender != nil {
			cfg.Extras.LazyRender = e.LazyRender
		}
		if e.CheckExpressionOn != nil {
			switch *e.CheckExpressionOn {
			case registry.CheckOnChangeDetection, registry.CheckOnModelChange:
				cfg.Extras.CheckExpressionOn = *e.CheckExpressionOn
			default:
				return cfg, fmt.Errorf("extras: invalid check_expression_on %q", *e.CheckExpressionOn)
			}
		}
	}

	for _, t := range root.Types {
		opt := registry.TypeOption{Name: t.Name, Wrappers: t.Wrappers}
		if t.Extends != nil {
			opt.Extends = *t.Extends
		}
		defaults, err := decodeDefaults(t.Defaults)
		if err != nil {
			return cfg, fmt.Errorf("type %q: %w", t.Name, err)
		}
		opt.DefaultOptions = defaults
		cfg.Types = append(cfg.Types, opt)
	}

	for _, w := range root.Wrappers {
		cfg.Wrappers = append(cfg.Wrappers, registry.WrapperOption{Name: w.Name, Types: w.Types})
	}

	for _, m := range root.Messages {
		cfg.ValidationMessages = append(cfg.ValidationMessages, registry.ValidationMessageOption{Name: m.Name, Message: m.Message})
	}

	for _, v := range root.Validators {
		opt, err := translateValidator(v)
		if err != nil {
			return cfg, fmt.Errorf("validator %q: %w", v.Name, err)
		}
		cfg.Validators = append(cfg.Validators, opt)
		if v.Message != nil {
			cfg.ValidationMessages = append(cfg.ValidationMessages, registry.ValidationMessageOption{Name: v.Name, Message: *v.Message})
		}
	}
	return cfg, nil
}

// ctyValue evaluates a constant attribute. Absent attributes yield null.
func ctyValue(e hcl.Expression) (cty.Value, error) {
	if e == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	val, diags := e.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	return val, nil
}

// decodeDefaults converts a defaults object into a descriptor through the
// JSON wire format.
func decodeDefaults(e hcl.Expression) (*field.Field, error) {
	val, err := ctyValue(e)
	if err != nil {
		return nil, err
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("defaults must be an object, got %s", val.Type().FriendlyName())
	}
	data, err := json.Marshal(expr.FromCty(val))
	if err != nil {
		return nil, err
	}
	var f field.Field
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	return &f, nil
}

func translateValidator(v *hclValidator) (registry.ValidatorOption, error) {
	opt := registry.ValidatorOption{Name: v.Name}

	val, err := ctyValue(v.Options)
	if err != nil {
		return opt, err
	}
	if !val.IsNull() {
		options, ok := expr.FromCty(val).(map[string]any)
		if !ok {
			return opt, fmt.Errorf("options must be an object")
		}
		opt.Options = options
	}

	switch {
	case v.Pattern != nil && v.Expression != nil:
		return opt, fmt.Errorf("pattern and expression are mutually exclusive")
	case v.Pattern != nil:
		re, err := regexp.Compile(validation.AnchorPattern(*v.Pattern))
		if err != nil {
			return opt, err
		}
		opt.Validation = patternValidator(v.Name, re)
	case v.Expression != nil:
		prog, err := expr.Compile(*v.Expression)
		if err != nil {
			return opt, err
		}
		opt.Validation = expressionValidator(v.Name, prog)
	default:
		return opt, fmt.Errorf("one of pattern or expression is required")
	}
	return opt, nil
}

func patternValidator(name string, re *regexp.Regexp) registry.ValidatorFunc {
	return func(c forms.Control, _ *field.Field, _ map[string]any) forms.Errors {
		value := c.Value()
		if validation.IsEmpty(value) {
			return nil
		}
		actual := expr.ToString(value)
		if re.MatchString(actual) {
			return nil
		}
		return forms.Errors{name: map[string]any{"requiredPattern": re.String(), "actualValue": actual}}
	}
}

func expressionValidator(name string, prog *expr.Program) registry.ValidatorFunc {
	return func(c forms.Control, f *field.Field, options map[string]any) forms.Errors {
		value := c.Value()
		if validation.IsEmpty(value) {
			return nil
		}
		scope := expr.Scope{"value": value, "options": options}
		if f != nil {
			scope["model"] = f.Model()
			scope["field"] = f
		}
		out, err := prog.Eval(scope)
		if err == nil && expr.Truthy(out) {
			return nil
		}
		return forms.Errors{name: true}
	}
}
