package expression_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dynaform/internal/builder"
	"github.com/specialistvlad/dynaform/internal/ext/expression"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/internal/testutil"
)

type fixture struct {
	root     *field.Field
	model    map[string]any
	detected map[string]int
}

func (fx *fixture) check() {
	fx.root.Options().CheckExpressions(fx.root, false)
}

func (fx *fixture) node(i int) *field.Field { return fx.root.FieldGroup[i] }

func newFixture(t *testing.T, r *registry.Registry, src string, model map[string]any) *fixture {
	t.Helper()
	fields, err := field.DecodeFields([]byte(src))
	require.NoError(t, err)
	fx := &fixture{model: model, detected: make(map[string]int)}
	opts := field.NewOptions()
	opts.ChangeDetector = func(f *field.Field) { fx.detected[f.KeyString()]++ }
	fx.root, err = builder.BuildForm(context.Background(), builder.New(r), nil, fields, model, opts)
	require.NoError(t, err)
	return fx
}

func autoClear() registry.ConfigOption {
	return registry.ConfigOption{Extras: &registry.Extras{ResetFieldOnHide: registry.Bool(true)}}
}

func TestCheckExpressions_CacheSkipsUnchanged(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"name"},
		{"key":"greeting","expressionProperties":{"templateOptions.label":"'Hello ' + model.name"}}
	]`, map[string]any{"name": "Ada"})
	require.Equal(t, "Hello Ada", fx.node(1).TemplateOptions["label"])
	clear(fx.detected)

	// --- Act ---
	fx.check()
	fx.check()

	// --- Assert ---
	assert.Empty(t, fx.detected, "nothing changed, nothing re-rendered")

	fx.node(0).Control().SetValue("Grace")
	fx.check()
	assert.Equal(t, "Hello Grace", fx.node(1).TemplateOptions["label"])
	assert.Equal(t, 1, fx.detected["greeting"])
}

func TestCheckExpressions_TargetPaths(t *testing.T) {
	fx := newFixture(t, testutil.NewRegistry(), `[{
		"key":"a",
		"expressionProperties":{
			"to.placeholder":"'typed'",
			"templateOptions.attributes.rows":"2 + 1",
			"className":"model.a ? 'filled' : 'empty'",
			"props.tone":"'loud'",
			"focus":"true",
			"custom":"formState.mode"
		}
	}]`, map[string]any{"a": "x"})
	fx.root.Options().FormState["mode"] = "edit"
	fx.root.Options().CheckExpressions(fx.root, true)

	f := fx.node(0)
	assert.Equal(t, "typed", f.TemplateOptions["placeholder"])
	assert.Equal(t, map[string]any{"rows": float64(3)}, f.TemplateOptions["attributes"])
	assert.Equal(t, "filled", f.ClassName)
	assert.Equal(t, "loud", f.Props["tone"])
	assert.True(t, f.Focus)
	assert.Equal(t, "edit", f.Props["custom"])
}

func TestCheckExpressions_ValidatorParams(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"strict"},
		{"key":"reason","expressionProperties":{"templateOptions.required":"model.strict === true"}}
	]`, map[string]any{})
	reason := fx.root.Tree().Form().Get("reason")
	require.True(t, reason.Valid())

	// --- Act ---
	fx.node(0).Control().SetValue(true)
	fx.check()

	// --- Assert ---
	assert.True(t, reason.Invalid())
	assert.Contains(t, reason.Errors(), "required")
}

func TestCheckExpressions_DisabledParam(t *testing.T) {
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"locked"},
		{"key":"b","expressionProperties":{"templateOptions.disabled":"model.locked"}}
	]`, map[string]any{"locked": true})
	b := fx.root.Tree().Form().Get("b")
	require.True(t, b.Disabled())

	fx.node(0).Control().SetValue(false)
	fx.check()

	assert.True(t, b.Enabled())
}

func TestCheckExpressions_ModelWritesSyncControls(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"first"},
		{"key":"upper"},
		{"key":"mirror","expressionProperties":{"model.upper":"model.first + '!'"}}
	]`, map[string]any{"first": "a"})

	// --- Assert ---
	assert.Equal(t, "a!", fx.model["upper"])
	assert.Equal(t, "a!", fx.root.Tree().Form().Get("upper").Value())

	fx.node(0).Control().SetValue("b")
	fx.check()
	assert.Equal(t, "b!", fx.model["upper"])
	assert.Equal(t, "b!", fx.root.Tree().Form().Get("upper").Value())
}

func TestCheckExpressions_HideToggles(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"married"},
		{"key":"spouse","templateOptions":{"required":true},"hideExpression":"!model.married"}
	]`, map[string]any{})
	spouse := fx.node(1)
	form := fx.root.Tree().Form()

	// --- Assert: hidden at build ---
	assert.True(t, spouse.Hide)
	assert.True(t, spouse.Control().Disabled())
	assert.True(t, form.Valid(), "hidden required fields do not block the form")
	clear(fx.detected)

	// --- Act: show ---
	fx.node(0).Control().SetValue(true)
	fx.check()

	// --- Assert ---
	assert.False(t, spouse.Hide)
	assert.True(t, spouse.Control().Invalid())
	assert.True(t, form.Invalid())
	assert.Equal(t, 1, fx.detected["spouse"])
}

func TestCheckExpressions_AutoClear(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t, testutil.NewRegistry(autoClear()), `[
		{"key":"kind"},
		{"key":"detail","defaultValue":"none","hideExpression":"model.kind !== 'other'"}
	]`, map[string]any{"kind": "other"})
	require.Equal(t, "none", fx.model["detail"])
	detail := fx.root.Tree().Form().Get("detail")

	// --- Act: hide ---
	fx.node(0).Control().SetValue("basic")
	fx.check()

	// --- Assert ---
	assert.NotContains(t, fx.model, "detail")
	assert.Nil(t, detail.Value())

	// --- Act: show again ---
	fx.node(0).Control().SetValue("other")
	fx.check()

	// --- Assert ---
	assert.Equal(t, "none", fx.model["detail"])
	assert.Equal(t, "none", detail.Value())
}

func TestCheckExpressions_GroupHideCascades(t *testing.T) {
	// A keyless group shares the parent model, so its expression sees toggle.
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"toggle"},
		{"hideExpression":"!model.toggle","fieldGroup":[
			{"key":"city","templateOptions":{"required":true}}
		]}
	]`, map[string]any{})
	city := fx.root.Tree().Form().Get("city")
	require.True(t, city.Disabled())

	fx.node(0).Control().SetValue(true)
	fx.check()

	assert.True(t, city.Invalid())

	fx.node(0).Control().SetValue(false)
	fx.check()

	assert.True(t, city.Disabled())
}

func TestCheckExpressions_KeyedGroupSeesOwnModel(t *testing.T) {
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"address","hideExpression":"!model.visible","fieldGroup":[
			{"key":"visible"},
			{"key":"city","templateOptions":{"required":true}}
		]}
	]`, map[string]any{"address": map[string]any{"visible": true}})

	assert.False(t, fx.node(0).Hide)
	assert.True(t, fx.root.Tree().Form().Get("address.city").Invalid())
}

func TestCheckExpressions_SetHide(t *testing.T) {
	// --- Arrange ---
	fx := newFixture(t, testutil.NewRegistry(), `[{"key":"a","templateOptions":{"required":true}}]`, map[string]any{})
	f := fx.node(0)
	require.True(t, f.Control().Invalid())

	// --- Act & Assert ---
	f.SetHide(true)
	fx.check()
	assert.True(t, f.Control().Disabled())

	f.SetHide(false)
	fx.check()
	assert.True(t, f.Control().Invalid())
}

func TestCheckExpressions_DuplicateKeyVisibility(t *testing.T) {
	fx := newFixture(t, testutil.NewRegistry(), `[
		{"key":"x","hide":true,"templateOptions":{"required":true}},
		{"key":"x"}
	]`, map[string]any{})
	c := fx.root.Tree().Form().Get("x")

	assert.True(t, c.Enabled(), "a visible node keeps the shared control enabled")
	assert.True(t, c.Valid(), "validators of the hidden node are dropped")

	fx.node(1).SetHide(true)
	fx.check()
	assert.True(t, c.Disabled())
}

func TestCheckExpressions_LazyRender(t *testing.T) {
	// --- Arrange ---
	r := testutil.NewRegistry(registry.ConfigOption{Extras: &registry.Extras{LazyRender: registry.Bool(true)}})
	var inits int
	fields := []*field.Field{
		{Key: "show"},
		{Key: "late", HideExpression: field.Expr("!model.show"), Hooks: &field.Hooks{OnInit: func(*field.Field) { inits++ }}},
	}
	root, err := builder.BuildForm(context.Background(), builder.New(r), nil, fields, map[string]any{}, nil)
	require.NoError(t, err)
	require.Zero(t, inits)

	// --- Act ---
	root.FieldGroup[0].Control().SetValue(true)
	root.Options().CheckExpressions(root, false)
	root.FieldGroup[0].Control().SetValue(false)
	root.Options().CheckExpressions(root, false)
	root.FieldGroup[0].Control().SetValue(true)
	root.Options().CheckExpressions(root, false)

	// --- Assert ---
	assert.Equal(t, 1, inits)
}

func TestCompile(t *testing.T) {
	testCases := []struct {
		name string
		e    *field.Expression
		want any
	}{
		{name: "source", e: field.Expr("model.a * 2"), want: float64(4)},
		{name: "func", e: field.ExprFunc(func(model any, _ map[string]any, _ *field.Field) any {
			return model.(map[string]any)["a"]
		}), want: 2},
		{name: "panicking func", e: field.ExprFunc(func(any, map[string]any, *field.Field) any { panic("boom") }), want: nil},
		{name: "failing eval", e: field.Expr("model.a.b.c()"), want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := expression.Compile(tc.e)
			if err != nil {
				// Sources outside the supported syntax fail at compile time.
				assert.Nil(t, tc.want)
				return
			}
			assert.Equal(t, tc.want, ev(map[string]any{"a": 2}, nil, nil))
		})
	}
}

func TestCompile_InvalidSourceFailsBuild(t *testing.T) {
	fields, err := field.DecodeFields([]byte(`[{"key":"a","hideExpression":"model.a ==="}]`))
	require.NoError(t, err)

	_, err = builder.BuildForm(context.Background(), builder.New(testutil.NewRegistry()), nil, fields, nil, nil)

	require.Error(t, err)
}
