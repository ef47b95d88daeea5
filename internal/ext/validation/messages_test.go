package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dynaform/internal/ext/validation"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/registry"
	"github.com/specialistvlad/dynaform/internal/testutil"
)

func TestErrorMessages(t *testing.T) {
	// --- Arrange ---
	r := testutil.NewRegistry(registry.ConfigOption{ValidationMessages: []registry.ValidationMessageOption{
		{Name: "required", Message: "{label} is required"},
		{Name: "minLength", Message: registry.MessageFunc(func(err any, f *field.Field) string {
			return "too short for " + f.KeyString()
		})},
	}})
	root, err := buildRoot(t, r, `[
		{"key":"name","type":"input","templateOptions":{"label":"Name","required":true}},
		{"key":"code","templateOptions":{"minLength":3,"maxLength":1}},
		{"key":"nick","templateOptions":{"required":true},"validation":{"messages":{"required":"Pick a nickname"}}},
		{"key":"pin","validators":{"digits":{"expression":"false","message":"Digits only"}}}
	]`, map[string]any{"code": "ab"})
	require.NoError(t, err)
	for _, f := range root.FieldGroup {
		f.Control().MarkAsTouched()
	}

	testCases := []struct {
		name string
		f    *field.Field
		want []validation.Message
	}{
		{name: "label interpolation", f: root.FieldGroup[0], want: []validation.Message{{Rule: "required", Text: "Name is required"}}},
		{name: "message func and unknown rule", f: root.FieldGroup[1], want: []validation.Message{
			{Rule: "maxLength", Text: "maxLength"},
			{Rule: "minLength", Text: "too short for code"},
		}},
		{name: "field override", f: root.FieldGroup[2], want: []validation.Message{{Rule: "required", Text: "Pick a nickname"}}},
		{name: "custom validator message", f: root.FieldGroup[3], want: []validation.Message{{Rule: "digits", Text: "Digits only"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, validation.ErrorMessages(r, tc.f))
		})
	}
}

func TestErrorMessages_DetailInterpolation(t *testing.T) {
	r := testutil.NewRegistry(registry.ConfigOption{ValidationMessages: []registry.ValidationMessageOption{
		{Name: "maxLength", Message: "at most {requiredLength} characters, got {actualLength}"},
	}})
	f := buildOne(t, r, `{"key":"c","templateOptions":{"maxLength":2},"validation":{"show":true}}`)
	f.Control().SetValue("abcd")

	got := validation.ErrorMessages(r, f)

	assert.Equal(t, []validation.Message{{Rule: "maxLength", Text: "at most 2 characters, got 4"}}, got)
}

func TestErrorMessages_HiddenUntilTouched(t *testing.T) {
	// --- Arrange ---
	r := testutil.NewRegistry()
	f := buildOne(t, r, `{"key":"a","templateOptions":{"required":true}}`)

	// --- Act & Assert ---
	assert.Empty(t, validation.ErrorMessages(r, f))

	f.Options().ParentForm.Submit()
	assert.Len(t, validation.ErrorMessages(r, f), 1)
}

func TestErrorMessages_ShowOverride(t *testing.T) {
	r := testutil.NewRegistry()
	f := buildOne(t, r, `{"key":"a","templateOptions":{"required":true},"validation":{"show":false}}`)
	f.Control().MarkAsTouched()

	assert.Empty(t, validation.ErrorMessages(r, f))
}
