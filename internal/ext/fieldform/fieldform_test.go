package fieldform_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dynaform/internal/builder"
	"github.com/specialistvlad/dynaform/internal/field"
	"github.com/specialistvlad/dynaform/internal/forms"
	"github.com/specialistvlad/dynaform/internal/testutil"
)

func buildRoot(t *testing.T, src string, model map[string]any) *field.Field {
	t.Helper()
	fields, err := field.DecodeFields([]byte(src))
	require.NoError(t, err)
	root, err := builder.BuildForm(context.Background(), builder.New(testutil.NewRegistry()), nil, fields, model, nil)
	require.NoError(t, err)
	return root
}

func TestControls_NestedKeys(t *testing.T) {
	// --- Arrange ---
	model := map[string]any{"user": map[string]any{"name": "Ada"}}

	// --- Act ---
	root := buildRoot(t, `[
		{"key":"user.name"},
		{"key":"user.email"}
	]`, model)

	// --- Assert ---
	form := root.Tree().Form()
	user, ok := form.Control("user").(*forms.Group)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "email"}, user.Names())
	assert.Equal(t, "Ada", form.Get("user.name").Value())

	form.Get("user.email").SetValue("ada@example.com")
	assert.Equal(t, map[string]any{"name": "Ada", "email": "ada@example.com"}, model["user"])
}

func TestControls_GroupKeyBindsGroup(t *testing.T) {
	root := buildRoot(t, `[
		{"key":"address","fieldGroup":[{"key":"city"}]},
		{"fieldGroup":[{"key":"flat"}]}
	]`, map[string]any{})

	address := root.FieldGroup[0]
	_, isGroup := address.Control().(*forms.Group)
	assert.True(t, isGroup)
	assert.Same(t, address.Control(), root.Tree().Form().Get("address"))
	assert.Same(t, root.Tree().Form(), root.FieldGroup[1].Control(), "keyless groups share the parent group")
	assert.NotNil(t, root.Tree().Form().Get("flat"))
}

func TestControls_AuthorSuppliedControl(t *testing.T) {
	// --- Arrange ---
	own := forms.NewFieldControl(nil)
	fields := []*field.Field{{Key: "a", FormControl: own}}
	model := map[string]any{"a": "seed"}

	// --- Act ---
	root, err := builder.BuildForm(context.Background(), builder.New(testutil.NewRegistry()), nil, fields, model, nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Same(t, own, root.Tree().Form().Get("a"))
	assert.Equal(t, "seed", own.Value(), "the control is seeded from the model")
}

func TestControls_DisabledOption(t *testing.T) {
	root := buildRoot(t, `[{"key":"a","type":"input","templateOptions":{"disabled":true,"required":true}}]`, nil)

	c := root.Tree().Form().Get("a")
	assert.True(t, c.Disabled())
	assert.False(t, root.Tree().Form().Invalid(), "disabled required fields do not block the form")
	assert.Equal(t, forms.StatusDisabled, root.Tree().Form().Status(), "a group of disabled controls is disabled")
}

func TestControls_Parsers(t *testing.T) {
	// --- Arrange ---
	fields := []*field.Field{{Key: "code", Parsers: []func(any) any{
		func(v any) any { s, _ := v.(string); return strings.TrimSpace(s) },
		func(v any) any { s, _ := v.(string); return strings.ToUpper(s) },
	}}}
	model := map[string]any{}
	root, err := builder.BuildForm(context.Background(), builder.New(testutil.NewRegistry()), nil, fields, model, nil)
	require.NoError(t, err)

	// --- Act ---
	root.Tree().Form().Get("code").SetValue("  ab ")

	// --- Assert ---
	assert.Equal(t, "AB", model["code"])
}

func TestControls_UnchangedValueIsNotWritten(t *testing.T) {
	model := map[string]any{"a": "same"}
	root := buildRoot(t, `[{"key":"a"}]`, model)
	var events int
	root.Options().FieldChanges.Subscribe(func(e field.Event) {
		if e.Type == field.EventValueChanges {
			events++
		}
	})

	root.Tree().Form().Get("a").SetValue("same")

	assert.Zero(t, events)
}

func TestControls_Debounce(t *testing.T) {
	// --- Arrange ---
	h := testutil.Build(t, testutil.NewRegistry(), `[{"key":"q","modelOptions":{"debounce":{"default":300}}}]`, map[string]any{})
	var emitted []map[string]any
	h.Form.OnModelChange(func(m map[string]any) { emitted = append(emitted, m) })

	// --- Act ---
	require.NoError(t, h.Form.Input("q", "a"))
	h.Clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.Form.Input("q", "ab"))

	// --- Assert ---
	assert.NotContains(t, h.Model(), "q")
	assert.Equal(t, 1, h.Clock.Active(), "the first timer was cancelled")

	h.Clock.Advance(300 * time.Millisecond)
	h.Zone.Flush()

	assert.Equal(t, "ab", h.Model()["q"])
	require.Len(t, emitted, 1)
	assert.Equal(t, "ab", emitted[0]["q"])
}

func TestControls_DebounceCancelledOnDestroy(t *testing.T) {
	h := testutil.Build(t, testutil.NewRegistry(), `[{"key":"q","modelOptions":{"debounce":{"default":50}}}]`, map[string]any{})
	require.NoError(t, h.Form.Input("q", "a"))
	require.Equal(t, 1, h.Clock.Active())

	h.Form.Destroy()

	assert.Zero(t, h.Clock.Active())
	assert.Zero(t, h.Zone.Pending())
}

func TestControls_UpdateOn(t *testing.T) {
	testCases := []struct {
		name     string
		updateOn string
		commit   func(h *testutil.Harness, c *forms.FieldControl)
	}{
		{name: "blur", updateOn: "blur", commit: func(_ *testutil.Harness, c *forms.FieldControl) { c.Blur() }},
		{name: "submit", updateOn: "submit", commit: func(h *testutil.Harness, _ *forms.FieldControl) { h.Form.Submit() }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			h := testutil.Build(t, testutil.NewRegistry(), `[{"key":"a","modelOptions":{"updateOn":"`+tc.updateOn+`"}}]`, map[string]any{})
			c, ok := h.Form.Control("a").(*forms.FieldControl)
			require.True(t, ok)
			assert.Equal(t, forms.UpdateOn(tc.updateOn), c.UpdateOn())

			// --- Act ---
			require.NoError(t, h.Form.Input("a", "typed"))
			assert.NotContains(t, h.Model(), "a")
			h.Form.Run(func() { tc.commit(h, c) })

			// --- Assert ---
			assert.Equal(t, "typed", h.Model()["a"])
		})
	}
}
