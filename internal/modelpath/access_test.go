// internal/modelpath/access_test.go
package modelpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet_RoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		key      any
		value    any
		expected map[string]any
	}{
		{name: "plain key", key: "a", value: 1, expected: map[string]any{"a": 1}},
		{name: "nested object", key: "a.b", value: "x", expected: map[string]any{"a": map[string]any{"b": "x"}}},
		{name: "array index", key: "a[0]", value: "x", expected: map[string]any{"a": []any{"x"}}},
		{name: "object inside array", key: "a[0].b", value: "x", expected: map[string]any{"a": []any{map[string]any{"b": "x"}}}},
		{name: "nested arrays", key: "o[0].0.name", value: "n", expected: map[string]any{"o": []any{[]any{map[string]any{"name": "n"}}}}},
		{name: "numeric root key on a map", key: 1, value: "one", expected: map[string]any{"1": "one"}},
		{name: "literal segment", key: []string{"a:b:1.0"}, value: true, expected: map[string]any{"a:b:1.0": true}},
		{name: "array grows", key: "a[2]", value: "z", expected: map[string]any{"a": []any{nil, nil, "z"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			model := map[string]any{}
			p := MustParse(tc.key)

			// --- Act ---
			err := Set(model, p, tc.value)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.expected, model)
			got, ok := Get(model, p)
			assert.True(t, ok)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestGet_MissingIntermediate(t *testing.T) {
	model := map[string]any{"a": map[string]any{"b": nil}}

	_, ok := Get(model, MustParse("x.y.z"))
	assert.False(t, ok)

	_, ok = Get(model, MustParse("a[3]"))
	assert.False(t, ok)

	v, ok := Get(model, MustParse("a.b"))
	assert.True(t, ok, "explicit nil counts as present")
	assert.Nil(t, v)
}

func TestSet_ExistingContainerWins(t *testing.T) {
	// A map already at "o" keeps numeric segments as string keys.
	model := map[string]any{"o": map[string]any{}}

	require.NoError(t, Set(model, MustParse("o.0.name"), "n"))

	assert.Equal(t, map[string]any{"o": map[string]any{"0": map[string]any{"name": "n"}}}, model)
}

func TestSet_ConflictLeavesModelUntouched(t *testing.T) {
	model := map[string]any{"o": []any{map[string]any{"name": "a"}}}
	before := Clone(model)

	err := Set(model, MustParse("o.name"), "b")

	require.ErrorIs(t, err, ErrPathConflict)
	assert.Equal(t, before, model)
}

func TestSet_ReplacesScalarIntermediate(t *testing.T) {
	model := map[string]any{"a": "scalar"}

	require.NoError(t, Set(model, MustParse("a.b"), 1))

	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}}, model)
}

func TestSet_Errors(t *testing.T) {
	assert.ErrorIs(t, Set(nil, MustParse("a"), 1), ErrNoModel)
	assert.ErrorIs(t, Set(map[string]any{}, nil, 1), ErrEmptyKey)
}

func TestDelete(t *testing.T) {
	model := map[string]any{
		"a": map[string]any{"b": 1, "c": 2},
		"l": []any{"x", "y"},
	}

	assert.True(t, Delete(model, MustParse("a.b")))
	assert.False(t, Delete(model, MustParse("a.b")))
	assert.True(t, Delete(model, MustParse("l[0]")))
	assert.False(t, Delete(model, MustParse("missing.deep")))

	assert.Equal(t, map[string]any{
		"a": map[string]any{"c": 2},
		"l": []any{nil, "y"},
	}, model)
}

func TestClone_IsDeep(t *testing.T) {
	src := map[string]any{"a": []any{map[string]any{"b": 1}}}

	cp := CloneMap(src)
	cp["a"].([]any)[0].(map[string]any)["b"] = 2

	assert.Equal(t, 1, src["a"].([]any)[0].(map[string]any)["b"])
	assert.NotNil(t, CloneMap(nil))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(1, float64(1)))
	assert.True(t, Equal(map[string]any{"a": []any{1}}, map[string]any{"a": []any{float64(1)}}))
	assert.False(t, Equal(map[string]any{"a": 1}, map[string]any{"a": 2}))
	assert.False(t, Equal([]any{1}, []any{1, 2}))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, false))
	assert.True(t, Equal("x", "x"))
	f := func() {}
	assert.False(t, Equal(f, f), "funcs never compare equal")
}

func TestSet_IndexGrowthIsBounded(t *testing.T) {
	testCases := []struct {
		name    string
		model   map[string]any
		key     string
		wantErr bool
	}{
		{name: "huge index on missing array", model: map[string]any{}, key: "a[999999999]", wantErr: true},
		{name: "huge nested index", model: map[string]any{}, key: "a.b[0].c[5000]", wantErr: true},
		{name: "huge index past existing array", model: map[string]any{"a": []any{1}}, key: "a[999999999]", wantErr: true},
		{name: "huge index on scalar", model: map[string]any{"a": "x"}, key: "a[999999999].b", wantErr: true},
		{name: "within bound", model: map[string]any{}, key: "a[1023]"},
		{name: "growth is relative to length", model: map[string]any{"a": make([]any, 10)}, key: "a[1033]"},
		{name: "numeric root key is a map key", model: map[string]any{}, key: "999999999"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			p, err := Parse(tc.key)
			require.NoError(t, err)
			before := Clone(tc.model)

			// --- Act ---
			err = Set(tc.model, p, "v")

			// --- Assert ---
			if tc.wantErr {
				require.ErrorIs(t, err, ErrIndexOutOfRange)
				assert.Equal(t, before, tc.model, "the model is left untouched")
				return
			}
			require.NoError(t, err)
			got, ok := Get(tc.model, p)
			assert.True(t, ok)
			assert.Equal(t, "v", got)
		})
	}
}
