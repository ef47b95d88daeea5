package field

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFields(t *testing.T) {
	// --- Arrange ---
	data := []byte(`[
		{
			"key": "email",
			"type": "input",
			"templateOptions": {"label": "Email", "required": true},
			"hideExpression": "!model.subscribe",
			"expressionProperties": {"templateOptions.disabled": "formState.readOnly"},
			"validators": {
				"validation": ["email", {"name": "maxWords", "options": {"max": 3}}],
				"corporate": {"expression": "value && value.length > 3", "message": "too short"},
				"inline": "value != 'x'"
			},
			"modelOptions": {"debounce": {"default": 200}, "updateOn": "blur"},
			"defaultValue": null
		},
		{"key": 1, "hideExpression": true, "fieldGroup": [{"key": ["a:b:1.0"]}]}
	]`)

	// --- Act ---
	fields, err := DecodeFields(data)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, fields, 2)

	email := fields[0]
	assert.Equal(t, "email", email.Key)
	assert.Equal(t, "input", email.Type)
	assert.Equal(t, map[string]any{"label": "Email", "required": true}, email.TemplateOptions)
	assert.Equal(t, "!model.subscribe", email.HideExpression.Source)
	assert.Equal(t, "formState.readOnly", email.ExpressionProperties["templateOptions.disabled"].Source)
	assert.True(t, email.HasDefaultValue(), "explicit null is a default")
	assert.Nil(t, email.DefaultValue)

	require.NotNil(t, email.Validators)
	assert.Equal(t, []ValidatorRef{{Name: "email"}, {Name: "maxWords", Options: map[string]any{"max": float64(3)}}}, email.Validators.Validation)
	assert.Equal(t, "value && value.length > 3", email.Validators.Custom["corporate"].Expression.Source)
	assert.Equal(t, "too short", email.Validators.Custom["corporate"].Message)
	assert.Equal(t, "value != 'x'", email.Validators.Custom["inline"].Expression.Source)

	require.NotNil(t, email.ModelOptions)
	assert.Equal(t, 200, email.ModelOptions.Debounce.Default)
	assert.Equal(t, "blur", email.ModelOptions.UpdateOn)

	second := fields[1]
	assert.Equal(t, float64(1), second.Key)
	assert.Equal(t, "true", second.HideExpression.Source)
	assert.False(t, second.HasDefaultValue())
	require.Len(t, second.FieldGroup, 1)
	assert.Equal(t, []any{"a:b:1.0"}, second.FieldGroup[0].Key)
}

func TestDecodeFields_Errors(t *testing.T) {
	testCases := map[string]string{
		"not an array":          `{"key": "a"}`,
		"bad expression":        `[{"hideExpression": 1}]`,
		"custom without expr":   `[{"validators": {"x": {"message": "m"}}}]`,
		"validation ref noname": `[{"validators": {"validation": [{"options": {}}]}}]`,
	}
	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFields([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeFields_DefaultValuePresence(t *testing.T) {
	testCases := []struct {
		name        string
		data        string
		wantPresent bool
		wantValue   any
	}{
		{name: "absent", data: `[{"key":"age","type":"input","templateOptions":{"required":true}}]`},
		{name: "explicit null", data: `[{"key":"age","defaultValue":null}]`, wantPresent: true},
		{name: "number", data: `[{"key":"age","defaultValue":18}]`, wantPresent: true, wantValue: float64(18)},
		{name: "object", data: `[{"key":"addr","defaultValue":{"city":"Oslo"}}]`, wantPresent: true, wantValue: map[string]any{"city": "Oslo"}},
		{name: "false", data: `[{"key":"agree","defaultValue":false}]`, wantPresent: true, wantValue: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			fields, err := DecodeFields([]byte(tc.data))

			// --- Assert ---
			require.NoError(t, err)
			require.Len(t, fields, 1)
			assert.Equal(t, tc.wantPresent, fields[0].HasDefaultValue())
			assert.Equal(t, tc.wantValue, fields[0].DefaultValue)
		})
	}
}

func TestField_UnmarshalJSON_Single(t *testing.T) {
	// --- Arrange ---
	var f Field

	// --- Act ---
	err := json.Unmarshal([]byte(`{"key":"age","type":"input","defaultValue":"x"}`), &f)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "age", f.Key)
	assert.Equal(t, "input", f.Type)
	assert.True(t, f.HasDefaultValue())
	assert.Equal(t, "x", f.DefaultValue)
}
