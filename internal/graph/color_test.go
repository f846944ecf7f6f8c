package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{in: "#ae0225", want: RGB{R: 0xae, G: 0x02, B: 0x25}},
		{in: "00ff00", want: RGB{G: 0xff}},
		{in: " #abc ", want: RGB{R: 0xaa, G: 0xbb, B: 0xcc}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, mustParse(t, got.Hex()))
	}
}

func mustParse(t *testing.T, s string) RGB {
	t.Helper()
	c, err := ParseHex(s)
	require.NoError(t, err)
	return c
}

func TestResolveColor(t *testing.T) {
	t.Parallel()

	lane := Color{RGB: RGB{R: 1}, Source: ColorFallback}
	assert.Equal(t, Color{RGB: RGB{R: 1}, Source: ColorInherited}, resolveColor(nil, "main", lane))

	resolver := ResolverFunc(func(string) (RGB, bool) { return RGB{B: 9}, true })
	assert.Equal(t, Color{RGB: RGB{B: 9}, Source: ColorAssigned}, resolveColor(resolver, "main", lane))
	assert.Equal(t, ColorInherited, resolveColor(resolver, "", lane).Source)
}

func TestColorSourceString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fallback", ColorFallback.String())
	assert.Equal(t, "assigned", ColorAssigned.String())
	assert.Equal(t, "inherited", ColorInherited.String())
	assert.Equal(t, "merge", KindMergeCurve.String())
}
