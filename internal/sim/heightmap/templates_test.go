package heightmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpan(t *testing.T) {
	cases := map[string]Span{
		"7":     Fixed(7),
		"0.5":   Fixed(0.5),
		"5-10":  {Lo: 5, Hi: 10},
		"15-30": {Lo: 15, Hi: 30},
		"-2":    Fixed(-2),
		" 1-2 ": {Lo: 1, Hi: 2},
	}
	for in, want := range cases {
		got, err := ParseSpan(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "a", "5-", "10-5"} {
		_, err := ParseSpan(bad)
		assert.ErrorIs(t, err, ErrBadSpan, bad)
	}
}

func TestParseBand(t *testing.T) {
	b, err := ParseBand("land")
	require.NoError(t, err)
	assert.Equal(t, BandLand, b)

	b, err = ParseBand("25-100")
	require.NoError(t, err)
	assert.Equal(t, Band{Lo: 25, Hi: 100}, b)

	_, err = ParseBand("50-10")
	assert.ErrorIs(t, err, ErrBadBand)
}

func TestCatalog(t *testing.T) {
	names := Templates()
	require.Len(t, names, 10)
	assert.Equal(t, Volcano, names[0])
	assert.Equal(t, Isthmus, names[9])

	tpl, err := ParseTemplate("High Island")
	require.NoError(t, err)
	assert.Equal(t, HighIsland, tpl.Name)

	_, err = ParseTemplate("moon")
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	c := NewCatalog()
	require.NoError(t, c.Register(Template{Name: "Ridge Line", Steps: []Step{Range("1", "40-50", "10-90", "45-55")}}))
	got, err := c.Lookup("ridge-line")
	require.NoError(t, err)
	assert.Len(t, got.Steps, 1)
	assert.Equal(t, "ridge_line", c.Names()[10])

	assert.Error(t, c.Register(Template{Name: "empty"}))
}

func TestIsthmusSteps(t *testing.T) {
	tpl, err := ParseTemplate(Isthmus)
	require.NoError(t, err)
	require.Len(t, tpl.Steps, 11)
	assert.Equal(t, OpHill, tpl.Steps[0].Op)
	assert.Equal(t, Span{Lo: 5, Hi: 10}, tpl.Steps[0].Count)
	assert.Equal(t, Span{Lo: 70, Hi: 100}, tpl.Steps[4].X)
	assert.Equal(t, Smooth(2), tpl.Steps[5])
	assert.Equal(t, OpTrough, tpl.Steps[10].Op)
	assert.Equal(t, Span{Lo: 4, Hi: 8}, tpl.Steps[10].Count)
}
