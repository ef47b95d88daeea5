// internal/modelpath/parser_test.go
package modelpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(name string) Segment { return NewSegment(name) }

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		key       any
		expectErr bool
		expected  Path
	}{
		{name: "simple key", key: "a", expected: Path{seg("a")}},
		{name: "dotted key", key: "a.b", expected: Path{seg("a"), seg("b")}},
		{name: "bracket index", key: "a[0]", expected: Path{seg("a"), {Name: "0", Index: 0}}},
		{name: "bracket then property", key: "a[0].b", expected: Path{seg("a"), seg("0"), seg("b")}},
		{name: "mixed bracket and dotted index", key: "o[0].0.name", expected: Path{seg("o"), seg("0"), seg("0"), seg("name")}},
		{name: "consecutive brackets", key: "m[1][2]", expected: Path{seg("m"), seg("1"), seg("2")}},
		{name: "integer key", key: 1, expected: Path{{Name: "1", Index: 1}}},
		{name: "integral float key", key: float64(3), expected: Path{seg("3")}},
		{name: "literal segment list", key: []string{"a:b:1.0"}, expected: Path{{Name: "a:b:1.0", Index: -1}}},
		{name: "literal any list", key: []any{"a.b", 2}, expected: Path{{Name: "a.b", Index: -1}, {Name: "2", Index: 2}}},
		{name: "error - nil key", key: nil, expectErr: true},
		{name: "error - empty string", key: "", expectErr: true},
		{name: "error - fractional number", key: 1.5, expectErr: true},
		{name: "error - unsupported type", key: true, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.key)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p)
		})
	}
}

func TestPath_StringRoundTrip(t *testing.T) {
	for _, key := range []string{"a", "a.b", "a[0]", "a[0].b", "o[0][0].name"} {
		t.Run(key, func(t *testing.T) {
			p := MustParse(key)
			assert.Equal(t, key, p.String())

			again, err := Parse(p.String())
			require.NoError(t, err)
			assert.True(t, p.Equal(again))
		})
	}
}

func TestPath_Join(t *testing.T) {
	base := MustParse("a")
	joined := base.Join(MustParse("b[0]"))

	assert.Equal(t, "a.b[0]", joined.String())
	assert.Len(t, base, 1)
}
