package core_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dynaform/internal/builder"
	"github.com/specialistvlad/dynaform/internal/ext/core"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/internal/testutil"
)

func build(t *testing.T, r *registry.Registry, src string, model map[string]any) *field.Field {
	t.Helper()
	fields, err := field.DecodeFields([]byte(src))
	require.NoError(t, err)
	root, err := builder.BuildForm(context.Background(), builder.New(r), nil, fields, model, nil)
	require.NoError(t, err)
	return root
}

type recordingComponent struct {
	populated []string
}

func (c *recordingComponent) OnPopulate(f *field.Field) error {
	c.populated = append(c.populated, f.KeyString())
	return nil
}

func (c *recordingComponent) DefaultOptions() *field.Field {
	return &field.Field{TemplateOptions: map[string]any{"rows": 3}}
}

func TestCore_FieldIDs(t *testing.T) {
	// --- Arrange ---
	r := testutil.NewRegistry()

	// --- Act ---
	first := build(t, r, `[{"key":"a","type":"input"},{"key":"b"}]`, nil)
	second := build(t, r, `[{"key":"a","type":"input"}]`, nil)

	// --- Assert ---
	formID := first.Options().FormID
	assert.Equal(t, fmt.Sprintf("dynaform_%d_input_a_0", formID), first.FieldGroup[0].ID)
	assert.Equal(t, fmt.Sprintf("dynaform_%d__b_1", formID), first.FieldGroup[1].ID)
	assert.NotEqual(t, first.FieldGroup[0].ID, second.FieldGroup[0].ID, "ids differ across forms")
}

func TestCore_AuthorIDIsKept(t *testing.T) {
	root := build(t, testutil.NewRegistry(), `[{"key":"a","id":"custom"}]`, nil)

	assert.Equal(t, "custom", root.FieldGroup[0].ID)
}

func TestCore_Classification(t *testing.T) {
	testCases := []struct {
		name     string
		fields   string
		wantType string
	}{
		{name: "static template", fields: `[{"template":"<hr>"}]`, wantType: core.TypeTemplate},
		{name: "template expression", fields: `[{"expressionProperties":{"template":"'x'"}}]`, wantType: core.TypeTemplate},
		{name: "untyped group", fields: `[{"key":"g","fieldGroup":[{"key":"x"}]}]`, wantType: core.TypeGroup},
		{name: "typed group keeps type", fields: `[{"type":"input","fieldGroup":[]}]`, wantType: "input"},
		{name: "plain field", fields: `[{"key":"x"}]`, wantType: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := build(t, testutil.NewRegistry(), tc.fields, nil)

			assert.Equal(t, tc.wantType, root.FieldGroup[0].Type)
		})
	}
}

func TestCore_TemplateOptionsBaseline(t *testing.T) {
	root := build(t, testutil.NewRegistry(), `[
		{"key":"a","type":"input","templateOptions":{"label":"A"}},
		{"key":"b"},
		{"type":"input"}
	]`, nil)

	assert.Equal(t, map[string]any{"label": "A", "placeholder": "", "focus": false, "disabled": false}, root.FieldGroup[0].TemplateOptions)
	assert.Empty(t, root.FieldGroup[1].TemplateOptions)
	assert.NotNil(t, root.FieldGroup[1].TemplateOptions)
	assert.Empty(t, root.FieldGroup[2].TemplateOptions)
}

func TestCore_ComponentHooks(t *testing.T) {
	// --- Arrange ---
	comp := &recordingComponent{}
	r := testutil.NewRegistry(registry.ConfigOption{Types: []registry.TypeOption{{Name: "textarea", Component: comp}}})

	// --- Act ---
	root := build(t, r, `[{"key":"bio","type":"textarea"},{"key":"other","type":"input"}]`, nil)

	// --- Assert ---
	assert.Equal(t, []string{"bio"}, comp.populated)
	assert.Equal(t, 3, root.FieldGroup[0].TemplateOptions["rows"])
	assert.NotContains(t, root.FieldGroup[1].TemplateOptions, "rows")
}

func TestCore_RootOptions(t *testing.T) {
	root := build(t, testutil.NewRegistry(), `[{"key":"a"}]`, map[string]any{"a": 1})
	opts := root.Options()

	assert.NotNil(t, opts.FormState)
	assert.NotNil(t, opts.FieldChanges)
	assert.NotNil(t, opts.Zone)
	assert.NotNil(t, opts.Build)
	assert.NotNil(t, opts.ResetModel)
	assert.NotNil(t, opts.CheckExpressions)
	assert.Same(t, root.Tree().Form(), root.Control())
	assert.Equal(t, map[string]any{"a": 1}, opts.InitialModel())
}

func TestCore_ResetModel(t *testing.T) {
	// --- Arrange ---
	model := map[string]any{"a": "initial"}
	root := build(t, testutil.NewRegistry(), `[{"key":"a"}]`, model)
	root.Tree().Form().Get("a").SetValue("changed")
	require.Equal(t, "changed", model["a"])

	// --- Act ---
	err := root.Options().ResetModel(nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "initial", model["a"])
	assert.Equal(t, "initial", root.Tree().Form().Get("a").Value())

	require.NoError(t, root.Options().ResetModel(map[string]any{"a": "next"}))
	assert.Equal(t, "next", model["a"])
	assert.Equal(t, "next", root.Tree().Form().Get("a").Value())
}

func TestHiddenByPolicy(t *testing.T) {
	root := build(t, testutil.NewRegistry(), `[
		{"key":"plain"},
		{"key":"hidden","hide":true},
		{"key":"expr","hideExpression":"false"},
		{"key":"group","hideExpression":"false","fieldGroup":[{"key":"inner"}]},
		{"key":"open","fieldGroup":[{"key":"inner"}]}
	]`, nil)

	testCases := []struct {
		name string
		f    *field.Field
		want bool
	}{
		{name: "plain", f: root.FieldGroup[0], want: false},
		{name: "hide flag", f: root.FieldGroup[1], want: true},
		{name: "hide expression", f: root.FieldGroup[2], want: true},
		{name: "hide-controlled ancestor", f: root.FieldGroup[3].FieldGroup[0], want: true},
		{name: "plain ancestor", f: root.FieldGroup[4].FieldGroup[0], want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, core.HiddenByPolicy(tc.f))
		})
	}
}
